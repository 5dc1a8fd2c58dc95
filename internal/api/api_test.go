package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/testutil"
	"github.com/starford/inkwell/internal/vault"
)

func newTestServer(t *testing.T) (*httptest.Server, *vault.Vault) {
	t.Helper()
	_, v := testutil.TestVault(t)
	srv := httptest.NewServer(NewServerMux(v, false, "", nil, nil))
	t.Cleanup(srv.Close)
	return srv, v
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, v := testutil.TestVault(t)
	srv := httptest.NewServer(NewServerMux(v, true, "secret", nil, nil))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/pages")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/pages", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", resp.StatusCode)
	}

	// Health stays open without auth.
	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: status = %d, want 200", resp.StatusCode)
	}
}

func TestPageLifecycle(t *testing.T) {
	srv, v := newTestServer(t)

	// Create a category, then a page inside it.
	var cat vault.Category
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/categories", CreateCategoryRequest{Name: "Work"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: status = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &cat)

	var page models.Page
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pages", CreatePageRequest{Title: "Draft", CategoryID: cat.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create page: status = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &page)

	// Read it back.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pages/"+page.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get page: status = %d", resp.StatusCode)
	}
	var got models.Page
	decodeBody(t, resp, &got)
	if got.Title != "Draft" {
		t.Errorf("title = %q", got.Title)
	}

	// Rename through a full save.
	page.Title = "Final Draft"
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/pages/"+page.ID, page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save page: status = %d", resp.StatusCode)
	}
	var saveResp struct {
		Renamed bool        `json:"renamed"`
		Page    models.Page `json:"page"`
	}
	decodeBody(t, resp, &saveResp)
	if !saveResp.Renamed {
		t.Error("expected rename on title change")
	}

	idx, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(idx.FolderMap[page.ID], "Final_Draft_") {
		t.Errorf("folderMap = %q", idx.FolderMap[page.ID])
	}

	// Delete.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/pages/"+page.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pages/"+page.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestInvalidIDsRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, p := range []string{
		"/api/pages/not-a-uuid",
		"/api/categories/also-bad",
	} {
		resp := doJSON(t, http.MethodDelete, srv.URL+p, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", p, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Encoded traversal disguised as an ID never reaches the filesystem.
	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/pages/..%2F..%2Fetc", nil)
	if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		t.Errorf("traversal id: status = %d, want 400 or 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUploadAndServeStatic(t *testing.T) {
	srv, v := newTestServer(t)
	page, err := v.CreatePage("Gallery", "", "")
	if err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "photo.PNG")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("fake-png-bytes"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/pages/"+page.ID+"/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload: status = %d", resp.StatusCode)
	}
	var up struct {
		URL string `json:"url"`
	}
	decodeBody(t, resp, &up)
	if !strings.HasSuffix(up.URL, ".png") || !strings.Contains(up.URL, "/images/") {
		t.Errorf("url = %q", up.URL)
	}

	// The returned URL is directly fetchable.
	resp, err = http.Get(srv.URL + up.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("serve static: status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "fake-png-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestUploadWrongExtension(t *testing.T) {
	srv, v := newTestServer(t)
	page, _ := v.CreatePage("Docs", "", "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "tool.exe")
	fw.Write([]byte("nope"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/pages/"+page.ID+"/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestStaticTraversalBlocked(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, p := range []string{
		"/static/..%2F..%2Fetc%2Fpasswd",
		"/static/%2e%2e/%2e%2e/secret",
	} {
		resp, err := http.Get(srv.URL + p)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 400 or 404", p, resp.StatusCode)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, v := newTestServer(t)
	page, _ := v.CreatePage("Recipes", "", "")
	page.Blocks[0].Content = "<p>lemon drizzle cake</p>"
	if _, _, err := v.SavePage(*page); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/search?q=drizzle", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Results []struct {
			PageID    string `json:"pageId"`
			MatchType string `json:"matchType"`
		} `json:"results"`
		Total int `json:"total"`
	}
	decodeBody(t, resp, &out)
	if out.Total != 1 || out.Results[0].PageID != page.ID || out.Results[0].MatchType != "content" {
		t.Errorf("out = %+v", out)
	}
}

func TestExportImportRoundTripHTTP(t *testing.T) {
	srv, v := newTestServer(t)
	page, _ := v.CreatePage("Survivor", "", "")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/vault/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status = %d", resp.StatusCode)
	}
	var snap vault.Snapshot
	decodeBody(t, resp, &snap)
	if snap.Version != vault.SnapshotVersion || len(snap.Pages) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	srv2, _ := newTestServer(t)
	resp = doJSON(t, http.MethodPost, srv2.URL+"/api/vault/import", ImportRequest{Index: snap.Index, Pages: snap.Pages})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: status = %d", resp.StatusCode)
	}
	var imported struct {
		OK       bool `json:"ok"`
		Imported int  `json:"imported"`
	}
	decodeBody(t, resp, &imported)
	if !imported.OK || imported.Imported != 1 {
		t.Errorf("imported = %+v", imported)
	}

	resp = doJSON(t, http.MethodGet, srv2.URL+"/api/pages/"+page.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get imported page: status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteCategoryRefusalHTTP(t *testing.T) {
	srv, v := newTestServer(t)
	cat, _ := v.CreateCategory("Busy", "")
	if _, err := v.CreatePage("Occupant", "", cat.ID); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/categories/"+cat.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res vault.DeleteCategoryResult
	decodeBody(t, resp, &res)
	if res.OK || !res.HasPages {
		t.Errorf("res = %+v, want structured refusal", res)
	}
}

func TestMoveCategoryCycleHTTP(t *testing.T) {
	srv, v := newTestServer(t)
	a, _ := v.CreateCategory("A", "")
	b, _ := v.CreateCategory("B", a.ID)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/categories/"+a.ID+"/move", MoveCategoryRequest{ParentID: b.ID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTemplatesEndpoint(t *testing.T) {
	srv, v := newTestServer(t)
	if err := v.EnsureTemplates(); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/templates", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Templates []models.Template `json:"templates"`
	}
	decodeBody(t, resp, &out)
	if len(out.Templates) != 5 {
		t.Errorf("templates = %d, want 5", len(out.Templates))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/templates", TemplateRequest{Name: "Retro"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d", resp.StatusCode)
	}
	var created models.Template
	decodeBody(t, resp, &created)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/templates/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStatsEndpoint(t *testing.T) {
	srv, v := newTestServer(t)
	v.CreatePage("One", "", "")
	v.CreateCategory("C", "")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/vault/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var stats vault.Stats
	decodeBody(t, resp, &stats)
	if stats.Pages != 1 || stats.Categories != 1 || stats.SizeBytes == 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReorderPagesEndpoint(t *testing.T) {
	srv, v := newTestServer(t)
	p1, _ := v.CreatePage("One", "", "")
	p2, _ := v.CreatePage("Two", "", "")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/pages/order", ReorderRequest{Order: []string{p2.ID, p1.ID}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	idx, _ := v.LoadIndex()
	if idx.PageOrder[0] != p2.ID || idx.PageOrder[1] != p1.ID {
		t.Errorf("pageOrder = %v", idx.PageOrder)
	}
}

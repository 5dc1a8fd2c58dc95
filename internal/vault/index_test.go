package vault

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(t.TempDir(), "/static", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestLoadIndexMissingFile(t *testing.T) {
	v := newTestVault(t)
	idx, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if idx.PageOrder == nil || idx.FolderMap == nil || idx.Categories == nil ||
		idx.CategoryMap == nil || idx.CategoryOrder == nil || idx.CategoryChildOrder == nil {
		t.Error("expected all collections initialized on missing index")
	}
	if len(idx.PageOrder) != 0 || idx.CurrentPageID != "" {
		t.Error("expected empty index")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	v := newTestVault(t)
	idx := &Index{
		PageOrder:     []string{"p1", "p2"},
		CurrentPageID: "p1",
		FolderMap:     map[string]string{"p1": "One_x", "p2": "Two_y"},
		Categories: []Category{
			{ID: "c1", Name: "Work", FolderName: "Work"},
			{ID: "c2", Name: "Sub", FolderName: "Sub", ParentID: "c1"},
		},
		CategoryMap:        map[string]string{"p2": "c1"},
		CategoryOrder:      []string{"c1"},
		CategoryChildOrder: map[string][]string{"c1": {"c2"}},
	}
	if err := v.SaveIndex(idx); err != nil {
		t.Fatal(err)
	}

	got, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentPageID != "p1" || len(got.PageOrder) != 2 || got.PageOrder[1] != "p2" {
		t.Errorf("page order/current mismatch: %+v", got)
	}
	if got.FolderMap["p2"] != "Two_y" || got.CategoryMap["p2"] != "c1" {
		t.Errorf("map mismatch: %+v", got)
	}
	if len(got.Categories) != 2 || got.Categories[1].ParentID != "c1" {
		t.Errorf("categories mismatch: %+v", got.Categories)
	}
	if len(got.CategoryChildOrder["c1"]) != 1 || got.CategoryChildOrder["c1"][0] != "c2" {
		t.Errorf("child order mismatch: %+v", got.CategoryChildOrder)
	}
}

func TestLoadIndexNormalizesPartialFile(t *testing.T) {
	v := newTestVault(t)
	partial := []byte(`{"pageOrder":["p1"],"currentPageId":"p1"}`)
	if err := os.WriteFile(filepath.Join(v.Root(), indexFile), partial, 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if idx.FolderMap == nil || idx.CategoryChildOrder == nil {
		t.Error("expected missing collections back-filled")
	}
	if len(idx.PageOrder) != 1 || idx.CurrentPageID != "p1" {
		t.Errorf("existing fields lost: %+v", idx)
	}
}

// Two loaded snapshots saved one after another: the later save wins
// wholesale. Documents the intended behavior for a single-user app.
func TestSaveIndexLastWriterWins(t *testing.T) {
	v := newTestVault(t)
	if err := v.SaveIndex(&Index{PageOrder: []string{"base"}}); err != nil {
		t.Fatal(err)
	}

	a, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}

	a.PageOrder = append(a.PageOrder, "from-a")
	if err := v.SaveIndex(a); err != nil {
		t.Fatal(err)
	}
	b.CurrentPageID = "from-b"
	if err := v.SaveIndex(b); err != nil {
		t.Fatal(err)
	}

	got, err := v.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentPageID != "from-b" {
		t.Errorf("currentPageId = %q, want from-b", got.CurrentPageID)
	}
	if len(got.PageOrder) != 1 || got.PageOrder[0] != "base" {
		t.Errorf("expected writer a's change overwritten, got %v", got.PageOrder)
	}
}

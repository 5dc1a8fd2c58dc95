package search

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/starford/inkwell/internal/models"
)

func page(id, title string, blocks ...models.Block) models.Page {
	return models.Page{ID: id, Title: title, Blocks: blocks}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML(`<p>Hello <b>world</b></p>`)
	if got != "Hello world" {
		t.Errorf("got %q", got)
	}
	if StripHTML("plain") != "plain" {
		t.Error("plain text altered")
	}
}

func TestSearchTitleMatch(t *testing.T) {
	pages := []models.Page{
		page("p1", "Shopping List"),
		page("p2", "Work Notes"),
	}
	results := Search(pages, "shopping", 0)
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].PageID != "p1" || results[0].MatchType != "title" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestSearchContentMatch(t *testing.T) {
	pages := []models.Page{
		page("p1", "Journal", models.Block{
			ID: "b1", Type: models.BlockParagraph,
			Content: "<p>Remembered to buy <b>oat milk</b> today</p>",
		}),
	}
	results := Search(pages, "OAT MILK", 0)
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	r := results[0]
	if r.BlockID != "b1" || r.MatchType != "content" {
		t.Errorf("result = %+v", r)
	}
	if strings.Contains(r.Snippet, "<") {
		t.Errorf("snippet carries markup: %q", r.Snippet)
	}
	if !strings.Contains(strings.ToLower(r.Snippet), "oat milk") {
		t.Errorf("snippet missing keyword: %q", r.Snippet)
	}
}

func TestSearchNestedChildren(t *testing.T) {
	pages := []models.Page{
		page("p1", "Outline", models.Block{
			ID: "parent", Type: models.BlockBulletList, Content: "outer",
			Children: []models.Block{
				{ID: "child", Type: models.BlockBulletList, Content: "needle here"},
			},
		}),
	}
	results := Search(pages, "needle", 0)
	if len(results) != 1 || results[0].BlockID != "child" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchLayoutSlots(t *testing.T) {
	layout, err := json.Marshal(models.LayoutContent{Slots: map[string][]models.Block{
		"b": {{ID: "inner", Type: models.BlockParagraph, Content: "hidden treasure"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	pages := []models.Page{
		page("p1", "Columns", models.Block{ID: "l1", Type: models.BlockLayout, Content: string(layout)}),
	}
	results := Search(pages, "treasure", 0)
	if len(results) != 1 || results[0].BlockID != "inner" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	pages := []models.Page{page("p1", "Anything")}
	if got := Search(pages, "   ", 0); len(got) != 0 {
		t.Errorf("results = %+v", got)
	}
}

func TestSearchLimit(t *testing.T) {
	var pages []models.Page
	for i := 0; i < 30; i++ {
		pages = append(pages, page("p", "match me"))
	}
	if got := Search(pages, "match", 0); len(got) != DefaultLimit {
		t.Errorf("len = %d, want %d", len(got), DefaultLimit)
	}
	if got := Search(pages, "match", 3); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestSnippetCaseFoldChangesByteLength(t *testing.T) {
	// Lowercasing "Ⱥ" (U+023A, 2 bytes) yields "ⱥ" (U+2C65, 3 bytes), so
	// byte offsets into the lowered text do not line up with the original.
	text := strings.Repeat("Ⱥ", 10) + " target tail"
	s := Snippet(text, "target")
	if !strings.Contains(s, "target") {
		t.Fatalf("snippet missing keyword: %q", s)
	}
	if !strings.Contains(s, "Ⱥ") {
		t.Errorf("snippet lost surrounding text: %q", s)
	}

	pages := []models.Page{
		page("p1", "Fold", models.Block{
			ID: "b1", Type: models.BlockParagraph,
			Content: strings.Repeat("Ⱥ", 10) + " target",
		}),
	}
	results := Search(pages, "target", 10)
	if len(results) != 1 || results[0].BlockID != "b1" {
		t.Fatalf("results = %+v", results)
	}
	if got := Snippet("xⱠy", "ⱡ"); !strings.Contains(got, "Ⱡ") {
		t.Errorf("case-insensitive unicode match lost: %q", got)
	}
}

func TestSnippetWindow(t *testing.T) {
	long := strings.Repeat("a", 200) + " keyword " + strings.Repeat("b", 200)
	s := Snippet(long, "keyword")
	if !strings.Contains(s, "keyword") {
		t.Fatalf("snippet missing keyword: %q", s)
	}
	if !strings.HasPrefix(s, "...") || !strings.HasSuffix(s, "...") {
		t.Errorf("snippet not elided: %q", s)
	}
	if len([]rune(s)) > 140 {
		t.Errorf("snippet too long: %d runes", len([]rune(s)))
	}
}

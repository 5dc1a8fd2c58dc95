// Package search implements case-insensitive substring search over page
// titles and block contents. The vault is small enough that a linear scan
// per query beats maintaining an index.
package search

import (
	"regexp"
	"strings"

	"github.com/starford/inkwell/internal/models"
)

// DefaultLimit caps the number of results per query.
const DefaultLimit = 20

// snippetRadius is how many runes of context surround a keyword hit.
const snippetRadius = 60

// Result is one search hit. MatchType is "title" or "content".
type Result struct {
	PageID    string `json:"pageId"`
	PageTitle string `json:"pageTitle"`
	PageIcon  string `json:"pageIcon"`
	BlockID   string `json:"blockId,omitempty"`
	BlockType string `json:"blockType,omitempty"`
	Snippet   string `json:"snippet"`
	MatchType string `json:"matchType"`
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup tags so snippets show readable text. Block
// contents may carry inline HTML from the editor.
func StripHTML(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// Snippet extracts a context window around the first case-insensitive
// occurrence of keyword, adding ellipses where text was cut.
func Snippet(text, keyword string) string {
	runes := []rune(text)
	lowText := strings.ToLower(text)
	idx := strings.Index(lowText, strings.ToLower(keyword))
	if idx < 0 {
		if len(runes) > 2*snippetRadius {
			return string(runes[:2*snippetRadius]) + "..."
		}
		return text
	}
	// idx is a byte offset into lowText; lowering can change byte lengths
	// but not rune counts, so convert within lowText before slicing runes.
	pos := len([]rune(lowText[:idx]))
	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	end := pos + len([]rune(keyword)) + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}

// Search scans the given pages for query, matching titles first and then
// every block (including list children and layout columns). An empty or
// whitespace query yields no results.
func Search(pages []models.Page, query string, limit int) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := strings.ToLower(query)

	results := make([]Result, 0, limit)
	for i := range pages {
		p := &pages[i]
		if len(results) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(p.Title), needle) {
			results = append(results, Result{
				PageID:    p.ID,
				PageTitle: p.Title,
				PageIcon:  p.Icon,
				Snippet:   p.Title,
				MatchType: "title",
			})
		}
		searchBlocks(p, p.Blocks, needle, query, limit, &results)
	}
	return results
}

func searchBlocks(p *models.Page, blocks []models.Block, needle, query string, limit int, results *[]Result) {
	for _, blk := range blocks {
		if len(*results) >= limit {
			return
		}
		if blk.Type == models.BlockLayout {
			if layout, ok := models.DecodeLayout(blk.Content); ok {
				for _, slot := range []string{"a", "b", "c"} {
					searchBlocks(p, layout.Slots[slot], needle, query, limit, results)
				}
				continue
			}
		}
		text := StripHTML(blk.Content)
		if text != "" && strings.Contains(strings.ToLower(text), needle) {
			*results = append(*results, Result{
				PageID:    p.ID,
				PageTitle: p.Title,
				PageIcon:  p.Icon,
				BlockID:   blk.ID,
				BlockType: blk.Type,
				Snippet:   Snippet(text, query),
				MatchType: "content",
			})
		}
		searchBlocks(p, blk.Children, needle, query, limit, results)
	}
}

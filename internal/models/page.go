// Package models defines the document types persisted in the vault.
package models

import "encoding/json"

// Block types understood by the editor. Content is HTML-ish text for the
// simple types and embedded JSON for composite types (layout).
const (
	BlockParagraph   = "paragraph"
	BlockHeading1    = "heading1"
	BlockHeading2    = "heading2"
	BlockHeading3    = "heading3"
	BlockBulletList  = "bulletList"
	BlockOrderedList = "orderedList"
	BlockTaskList    = "taskList"
	BlockQuote       = "quote"
	BlockCode        = "code"
	BlockDivider     = "divider"
	BlockKanban      = "kanban"
	BlockLayout      = "layout"
)

// Block is one content block inside a page. Toggle/callout blocks may carry
// nested children.
type Block struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Content   string  `json:"content"`
	Checked   bool    `json:"checked,omitempty"`
	Children  []Block `json:"children,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Page is the full document stored as content.json inside the page's folder.
// Saves are whole-document replacements; there is no partial update.
type Page struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Icon          string   `json:"icon"`
	Cover         string   `json:"cover,omitempty"`
	CoverPosition int      `json:"coverPosition"`
	Tags          []string `json:"tags"`
	Starred       bool     `json:"starred"`
	Blocks        []Block  `json:"blocks"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

// LayoutContent is the decoded form of a layout block's content field.
// Slot keys are "a", "b", "c"; each slot holds an ordered block list.
type LayoutContent struct {
	Slots map[string][]Block `json:"slots"`
}

// DecodeLayout parses the embedded JSON of a layout block. It returns
// ok=false for empty or malformed content so callers can fall back to a
// placeholder instead of failing the whole operation.
func DecodeLayout(content string) (LayoutContent, bool) {
	if content == "" {
		return LayoutContent{}, false
	}
	var lc LayoutContent
	if err := json.Unmarshal([]byte(content), &lc); err != nil {
		return LayoutContent{}, false
	}
	if len(lc.Slots) == 0 {
		return LayoutContent{}, false
	}
	return lc, true
}

// Template is a reusable page skeleton stored under _templates/. Content
// holds the blocks copied into a new page created from the template.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Content     []Block `json:"content"`
}

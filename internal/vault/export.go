package vault

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/starford/inkwell/internal/models"
)

// SnapshotVersion marks the export schema. Bump only on incompatible
// changes; Import accepts any snapshot carrying an index and pages.
const SnapshotVersion = "2.0"

// Snapshot is the full-vault JSON export: the index document plus every
// page document in display order.
type Snapshot struct {
	ExportedAt string        `json:"exportedAt"`
	Version    string        `json:"version"`
	Index      *Index        `json:"index"`
	Pages      []models.Page `json:"pages"`
}

// ExportJSON assembles a snapshot of the entire vault. Pages missing on
// disk are skipped, mirroring ListPages.
func (v *Vault) ExportJSON() (*Snapshot, error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return nil, err
	}
	pages := make([]models.Page, 0, len(idx.PageOrder))
	for _, id := range idx.PageOrder {
		p, err := v.loadPage(id, idx)
		if err != nil {
			continue
		}
		pages = append(pages, *p)
	}
	return &Snapshot{
		ExportedAt: NowISO(),
		Version:    SnapshotVersion,
		Index:      idx,
		Pages:      pages,
	}, nil
}

// ExportMarkdown streams a zip archive with one Markdown file per page.
// Entries are placed under the page's category folder when it has one,
// matching the on-disk layout.
func (v *Vault) ExportMarkdown(w io.Writer) error {
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	for _, id := range idx.PageOrder {
		p, err := v.loadPage(id, idx)
		if err != nil {
			continue
		}
		pageFolder := v.folderNameForPage(id, idx)
		name := pageFolder + ".md"
		if catFolder := idx.folderNameForCategory(idx.CategoryMap[id]); catFolder != "" {
			name = catFolder + "/" + name
		}
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("vault: zip entry %s: %w", name, err)
		}
		if _, err := io.WriteString(f, pageToMarkdown(p)); err != nil {
			return fmt.Errorf("vault: zip entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("vault: close zip: %w", err)
	}
	return nil
}

func pageToMarkdown(p *models.Page) string {
	var b strings.Builder
	b.WriteString("# " + p.Title + "\n\n")
	b.WriteString(blocksToMarkdown(p.Blocks))
	return b.String()
}

// blocksToMarkdown renders blocks top to bottom. Unknown or presentational
// block types degrade to a bracketed placeholder rather than dropping
// content silently.
func blocksToMarkdown(blocks []models.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		switch blk.Type {
		case models.BlockHeading1:
			parts = append(parts, "# "+blk.Content)
		case models.BlockHeading2:
			parts = append(parts, "## "+blk.Content)
		case models.BlockHeading3:
			parts = append(parts, "### "+blk.Content)
		case models.BlockBulletList:
			parts = append(parts, "- "+blk.Content)
		case models.BlockOrderedList:
			parts = append(parts, "1. "+blk.Content)
		case models.BlockTaskList:
			box := "[ ]"
			if blk.Checked {
				box = "[x]"
			}
			parts = append(parts, "- "+box+" "+blk.Content)
		case models.BlockQuote:
			parts = append(parts, "> "+blk.Content)
		case models.BlockCode:
			parts = append(parts, "```\n"+blk.Content+"\n```")
		case models.BlockDivider:
			parts = append(parts, "---")
		case models.BlockKanban:
			parts = append(parts, "[kanban board]")
		case models.BlockLayout:
			if layout, ok := models.DecodeLayout(blk.Content); ok {
				cols := make([]string, 0, 3)
				for _, slot := range []string{"a", "b", "c"} {
					if len(layout.Slots[slot]) > 0 {
						cols = append(cols, blocksToMarkdown(layout.Slots[slot]))
					}
				}
				parts = append(parts, strings.Join(cols, "\n\n---\n\n"))
			} else {
				parts = append(parts, "[layout block]")
			}
		default:
			parts = append(parts, blk.Content)
		}
		if len(blk.Children) > 0 {
			parts = append(parts, blocksToMarkdown(blk.Children))
		}
	}
	return strings.Join(parts, "\n\n")
}

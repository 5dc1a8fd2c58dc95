package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Category is one folder in the logical category tree. Nesting is recorded
// in ParentID and Index.CategoryChildOrder only; the physical directory is
// always a direct child of the vault root.
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FolderName string `json:"folderName"`
	ParentID   string `json:"parentId,omitempty"`
}

// Index is the single _index.json document recording page order, the
// current-page pointer, page→folder and page→category mappings, and the
// category tree. It is a derived cache over the directory tree; mutators
// must keep the two in sync or fail cleanly.
type Index struct {
	PageOrder          []string            `json:"pageOrder"`
	CurrentPageID      string              `json:"currentPageId"`
	FolderMap          map[string]string   `json:"folderMap"`
	Categories         []Category          `json:"categories"`
	CategoryMap        map[string]string   `json:"categoryMap"`
	CategoryOrder      []string            `json:"categoryOrder"`
	CategoryChildOrder map[string][]string `json:"categoryChildOrder"`
}

// normalize back-fills collections missing from older on-disk formats.
// The index file carries no version field, so this is applied on every
// load and again before every save; it is the sole schema-migration point.
func (idx *Index) normalize() {
	if idx.PageOrder == nil {
		idx.PageOrder = []string{}
	}
	if idx.FolderMap == nil {
		idx.FolderMap = map[string]string{}
	}
	if idx.Categories == nil {
		idx.Categories = []Category{}
	}
	if idx.CategoryMap == nil {
		idx.CategoryMap = map[string]string{}
	}
	if idx.CategoryOrder == nil {
		idx.CategoryOrder = []string{}
	}
	if idx.CategoryChildOrder == nil {
		idx.CategoryChildOrder = map[string][]string{}
	}
}

// category returns a pointer into Categories for in-place mutation, or nil.
func (idx *Index) category(id string) *Category {
	for i := range idx.Categories {
		if idx.Categories[i].ID == id {
			return &idx.Categories[i]
		}
	}
	return nil
}

// folderNameForCategory returns the category's folder name, or "" when
// catID is empty or unknown.
func (idx *Index) folderNameForCategory(catID string) string {
	if catID == "" {
		return ""
	}
	if c := idx.category(catID); c != nil {
		return c.FolderName
	}
	return ""
}

func (v *Vault) indexPath() string {
	return filepath.Join(v.root, indexFile)
}

// LoadIndex reads _index.json. A missing file yields a zero-value Index
// with all collections empty, never an error.
func (v *Vault) LoadIndex() (*Index, error) {
	idx := &Index{}
	data, err := os.ReadFile(v.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			idx.normalize()
			return idx, nil
		}
		return nil, fmt.Errorf("vault: read index: %w", err)
	}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("vault: parse index: %w", err)
	}
	idx.normalize()
	return idx, nil
}

// SaveIndex writes the whole index back. Saves are whole-file overwrites:
// concurrent writers race and the last save silently wins (accepted for a
// single-user local application).
func (v *Vault) SaveIndex(idx *Index) error {
	idx.normalize()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode index: %w", err)
	}
	return v.writeFileAtomic(v.indexPath(), data)
}

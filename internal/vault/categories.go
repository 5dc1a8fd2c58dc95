package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// ErrCategoryCycle is returned when a category move would make a category
// its own descendant.
var ErrCategoryCycle = errors.New("category cannot become its own descendant")

// DeleteCategoryResult is the structured refusal returned when deletion is
// blocked by content. Not an error: callers must branch on it.
type DeleteCategoryResult struct {
	OK          bool `json:"ok"`
	HasChildren bool `json:"hasChildren,omitempty"`
	HasPages    bool `json:"hasPages,omitempty"`
	Count       int  `json:"count,omitempty"`
}

// disambiguateFolder appends _2, _3, ... to base until it collides with no
// other category's folder name. excludeID skips the category being renamed.
func disambiguateFolder(base string, idx *Index, excludeID string) string {
	existing := make(map[string]bool, len(idx.Categories))
	for _, c := range idx.Categories {
		if c.ID != excludeID {
			existing[c.FolderName] = true
		}
	}
	name := base
	for counter := 2; existing[name]; counter++ {
		name = fmt.Sprintf("%s_%d", base, counter)
	}
	return name
}

// CreateCategory creates the physical directory (always directly under the
// vault root, even for nested categories) and registers the category under
// parentID's child order, or at the top level when parentID is empty.
func (v *Vault) CreateCategory(name, parentID string) (*Category, error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return nil, err
	}
	if parentID != "" && idx.category(parentID) == nil {
		return nil, fmt.Errorf("vault: parent category %s: %w", parentID, apperr.ErrNotFound)
	}

	folderName := disambiguateFolder(Sanitize(name, FallbackCategoryName), idx, "")
	dir := filepath.Join(v.root, folderName)
	if err := v.assertInside(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create category dir: %w", err)
	}

	cat := Category{
		ID:         uuid.NewString(),
		Name:       name,
		FolderName: folderName,
		ParentID:   parentID,
	}
	idx.Categories = append(idx.Categories, cat)
	if parentID != "" {
		idx.CategoryChildOrder[parentID] = append(idx.CategoryChildOrder[parentID], cat.ID)
	} else {
		idx.CategoryOrder = append(idx.CategoryOrder, cat.ID)
	}
	if err := v.SaveIndex(idx); err != nil {
		return nil, err
	}
	return &cat, nil
}

// RenameCategory changes the display name and, when the sanitized folder
// name changes, physically renames the directory and rewrites the stored
// asset URLs of every page mapped to this category.
func (v *Vault) RenameCategory(id, name string) (renamed bool, out *Category, err error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return false, nil, err
	}
	cat := idx.category(id)
	if cat == nil {
		return false, nil, fmt.Errorf("vault: category %s: %w", id, apperr.ErrNotFound)
	}

	oldFolder := cat.FolderName
	newFolder := disambiguateFolder(Sanitize(name, FallbackCategoryName), idx, id)
	renamed = oldFolder != newFolder

	if renamed {
		oldPath := filepath.Join(v.root, oldFolder)
		newPath := filepath.Join(v.root, newFolder)
		if err := v.assertInside(oldPath); err != nil {
			return false, nil, err
		}
		if err := v.assertInside(newPath); err != nil {
			return false, nil, err
		}
		if _, statErr := os.Stat(oldPath); statErr == nil {
			if err := os.Rename(oldPath, newPath); err != nil {
				return false, nil, fmt.Errorf("vault: rename category dir: %w", err)
			}
		}

		for pageID, catID := range idx.CategoryMap {
			if catID != id {
				continue
			}
			pageFolder := v.folderNameForPage(pageID, idx)
			contentPath := filepath.Join(v.root, newFolder, pageFolder, contentFile)
			data, readErr := os.ReadFile(contentPath)
			if readErr != nil {
				continue
			}
			var p models.Page
			if err := json.Unmarshal(data, &p); err != nil {
				continue
			}
			rewriteAssetURLs(&p,
				v.AssetURLPrefix(pageFolder, oldFolder),
				v.AssetURLPrefix(pageFolder, newFolder))
			if err := v.writePage(&p, filepath.Join(v.root, newFolder, pageFolder)); err != nil {
				return false, nil, err
			}
		}
		cat.FolderName = newFolder
	}

	cat.Name = name
	if err := v.SaveIndex(idx); err != nil {
		return false, nil, err
	}
	copied := *cat
	return renamed, &copied, nil
}

// DeleteCategory removes an empty category. A category with child
// categories or mapped pages yields a structured refusal instead of an
// error; the caller must first detach them.
func (v *Vault) DeleteCategory(id string) (DeleteCategoryResult, error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return DeleteCategoryResult{}, err
	}
	cat := idx.category(id)
	if cat == nil {
		return DeleteCategoryResult{}, fmt.Errorf("vault: category %s: %w", id, apperr.ErrNotFound)
	}

	children := 0
	for _, c := range idx.Categories {
		if c.ParentID == id {
			children++
		}
	}
	if children == 0 {
		children = len(idx.CategoryChildOrder[id])
	}
	if children > 0 {
		return DeleteCategoryResult{OK: false, HasChildren: true, Count: children}, nil
	}

	pages := 0
	for _, catID := range idx.CategoryMap {
		if catID == id {
			pages++
		}
	}
	if pages > 0 {
		return DeleteCategoryResult{OK: false, HasPages: true, Count: pages}, nil
	}

	dir := filepath.Join(v.root, cat.FolderName)
	if err := v.assertInside(dir); err != nil {
		return DeleteCategoryResult{}, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return DeleteCategoryResult{}, fmt.Errorf("vault: delete category dir: %w", err)
	}

	parentID := cat.ParentID
	kept := idx.Categories[:0]
	for _, c := range idx.Categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	idx.Categories = kept
	idx.CategoryOrder = removeID(idx.CategoryOrder, id)
	if parentID != "" {
		idx.CategoryChildOrder[parentID] = removeID(idx.CategoryChildOrder[parentID], id)
		if len(idx.CategoryChildOrder[parentID]) == 0 {
			delete(idx.CategoryChildOrder, parentID)
		}
	}
	delete(idx.CategoryChildOrder, id)

	if err := v.SaveIndex(idx); err != nil {
		return DeleteCategoryResult{}, err
	}
	return DeleteCategoryResult{OK: true}, nil
}

// MoveCategory reparents a category in the logical tree. The physical
// directory does not move (categories are flat on disk). Rejects moving a
// category into itself or into any of its own descendants.
func (v *Vault) MoveCategory(id, newParentID string) error {
	if id == newParentID {
		return fmt.Errorf("vault: category %s: %w", id, ErrCategoryCycle)
	}
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	cat := idx.category(id)
	if cat == nil {
		return fmt.Errorf("vault: category %s: %w", id, apperr.ErrNotFound)
	}
	if newParentID != "" {
		if idx.category(newParentID) == nil {
			return fmt.Errorf("vault: parent category %s: %w", newParentID, apperr.ErrNotFound)
		}
		// Walk the ancestor chain from the proposed parent toward the
		// root; finding the moved category means it would become its
		// own descendant.
		seen := map[string]bool{}
		for cur := newParentID; cur != "" && !seen[cur]; {
			seen[cur] = true
			if cur == id {
				return fmt.Errorf("vault: category %s: %w", id, ErrCategoryCycle)
			}
			parent := idx.category(cur)
			if parent == nil {
				break
			}
			cur = parent.ParentID
		}
	}

	if cat.ParentID == newParentID {
		return nil
	}

	if cat.ParentID != "" {
		idx.CategoryChildOrder[cat.ParentID] = removeID(idx.CategoryChildOrder[cat.ParentID], id)
		if len(idx.CategoryChildOrder[cat.ParentID]) == 0 {
			delete(idx.CategoryChildOrder, cat.ParentID)
		}
	} else {
		idx.CategoryOrder = removeID(idx.CategoryOrder, id)
	}

	if newParentID != "" {
		idx.CategoryChildOrder[newParentID] = append(idx.CategoryChildOrder[newParentID], id)
	} else {
		idx.CategoryOrder = append(idx.CategoryOrder, id)
	}
	cat.ParentID = newParentID
	return v.SaveIndex(idx)
}

// ReorderCategories replaces the top-level category order wholesale.
func (v *Vault) ReorderCategories(order []string) error {
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	idx.CategoryOrder = order
	return v.SaveIndex(idx)
}

// ReorderCategoryChildren replaces a parent's child order wholesale.
// Unlike page reorder there is no filter/append safety net; the client
// owns the full child list for one parent at a time.
func (v *Vault) ReorderCategoryChildren(parentID string, order []string) error {
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	if idx.category(parentID) == nil {
		return fmt.Errorf("vault: category %s: %w", parentID, apperr.ErrNotFound)
	}
	idx.CategoryChildOrder[parentID] = order
	return v.SaveIndex(idx)
}

func removeID(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// loadPage reads a page document using an already-loaded index.
// Returns apperr.ErrNotFound when the document is missing.
func (v *Vault) loadPage(id string, idx *Index) (*models.Page, error) {
	path := filepath.Join(v.pageDir(id, idx), contentFile)
	if err := v.assertInside(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("vault: page %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("vault: read page: %w", err)
	}
	var p models.Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("vault: parse page %s: %w", id, err)
	}
	return &p, nil
}

// writePage persists a page document to dir/content.json.
func (v *Vault) writePage(p *models.Page, dir string) error {
	if err := v.assertInside(dir); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode page: %w", err)
	}
	return v.writeFileAtomic(filepath.Join(dir, contentFile), data)
}

// Page returns a single page document.
func (v *Vault) Page(id string) (*models.Page, error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return nil, err
	}
	return v.loadPage(id, idx)
}

// ListPages returns every page in display order together with the index
// snapshot used to resolve them. Pages whose documents are missing on disk
// are skipped rather than failing the whole listing.
func (v *Vault) ListPages() ([]models.Page, *Index, error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return nil, nil, err
	}
	pages := make([]models.Page, 0, len(idx.PageOrder))
	for _, id := range idx.PageOrder {
		p, err := v.loadPage(id, idx)
		if err != nil {
			continue
		}
		pages = append(pages, *p)
	}
	return pages, idx, nil
}

// CreatePage generates a new page with one empty paragraph block and writes
// it under the optionally supplied category. The new ID is appended to the
// page order and becomes the current page if none was set.
func (v *Vault) CreatePage(title, icon, categoryID string) (*models.Page, error) {
	now := NowISO()
	page := &models.Page{
		ID:            uuid.NewString(),
		Title:         title,
		Icon:          icon,
		CoverPosition: 50,
		Tags:          []string{},
		Starred:       false,
		Blocks: []models.Block{{
			ID:        uuid.NewString(),
			Type:      models.BlockParagraph,
			Content:   "",
			CreatedAt: now,
			UpdatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	idx, err := v.LoadIndex()
	if err != nil {
		return nil, err
	}

	folderName := MakeFolderName(title, now, page.ID)
	catFolder := idx.folderNameForCategory(categoryID)
	dir := filepath.Join(v.root, folderName)
	if catFolder != "" {
		dir = filepath.Join(v.root, catFolder, folderName)
	}
	if err := v.writePage(page, dir); err != nil {
		return nil, err
	}

	idx.PageOrder = append(idx.PageOrder, page.ID)
	idx.FolderMap[page.ID] = folderName
	if categoryID != "" {
		idx.CategoryMap[page.ID] = categoryID
	}
	if idx.CurrentPageID == "" {
		idx.CurrentPageID = page.ID
	}
	if err := v.SaveIndex(idx); err != nil {
		return nil, err
	}
	return page, nil
}

// SavePage upserts a full page document. The folder name is recomputed from
// (title, createdAt, id) on every save; when it differs from the recorded
// one the directory is renamed in place, embedded asset URLs are rewritten
// from the old prefix to the new one, and folderMap is updated. Once the
// physical move has succeeded the operation does not roll it back on a
// later failure; only import has full rollback.
func (v *Vault) SavePage(page models.Page) (renamed bool, out *models.Page, err error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return false, nil, err
	}

	oldFolder := v.folderNameForPage(page.ID, idx)
	newFolder := MakeFolderName(page.Title, page.CreatedAt, page.ID)
	catFolder := idx.folderNameForCategory(idx.CategoryMap[page.ID])

	if oldFolder != newFolder {
		oldPath := filepath.Join(v.root, oldFolder)
		newPath := filepath.Join(v.root, newFolder)
		if catFolder != "" {
			oldPath = filepath.Join(v.root, catFolder, oldFolder)
			newPath = filepath.Join(v.root, catFolder, newFolder)
		}
		if err := v.assertInside(oldPath); err != nil {
			return false, nil, err
		}
		if err := v.assertInside(newPath); err != nil {
			return false, nil, err
		}
		if _, statErr := os.Stat(oldPath); statErr == nil {
			if err := os.Rename(oldPath, newPath); err != nil {
				return false, nil, fmt.Errorf("vault: rename page dir: %w", err)
			}
		}
		rewriteAssetURLs(&page,
			v.AssetURLPrefix(oldFolder, catFolder),
			v.AssetURLPrefix(newFolder, catFolder))
		idx.FolderMap[page.ID] = newFolder
		renamed = true
	}

	dir := filepath.Join(v.root, newFolder)
	if catFolder != "" {
		dir = filepath.Join(v.root, catFolder, newFolder)
	}
	if err := v.writePage(&page, dir); err != nil {
		return renamed, nil, err
	}

	// Upsert of a page the index has never seen.
	inOrder := false
	for _, id := range idx.PageOrder {
		if id == page.ID {
			inOrder = true
			break
		}
	}
	if !inOrder {
		idx.PageOrder = append(idx.PageOrder, page.ID)
		if idx.FolderMap[page.ID] == "" {
			idx.FolderMap[page.ID] = newFolder
		}
	}
	if err := v.SaveIndex(idx); err != nil {
		return renamed, nil, err
	}
	return renamed, &page, nil
}

// DeletePage removes the page's directory recursively and strips the ID
// from every index collection. If it was the current page, the pointer
// moves to the new first entry of the order, or clears.
func (v *Vault) DeletePage(id string) error {
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	dir := v.pageDir(id, idx)
	if err := v.assertInside(dir); err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("vault: delete page dir: %w", err)
	}

	order := idx.PageOrder[:0]
	for _, pid := range idx.PageOrder {
		if pid != id {
			order = append(order, pid)
		}
	}
	idx.PageOrder = order
	delete(idx.FolderMap, id)
	delete(idx.CategoryMap, id)

	if idx.CurrentPageID == id {
		idx.CurrentPageID = ""
		if len(idx.PageOrder) > 0 {
			idx.CurrentPageID = idx.PageOrder[0]
		}
	}
	return v.SaveIndex(idx)
}

// MovePageToCategory moves a page's directory into another category folder
// (or back to the vault root for "uncategorized") and rewrites its asset
// URLs for the new prefix. A no-op when the target equals the current
// category.
func (v *Vault) MovePageToCategory(id, categoryID string) (moved bool, out *models.Page, err error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return false, nil, err
	}
	if _, err := v.loadPage(id, idx); err != nil {
		return false, nil, err
	}

	oldCatID := idx.CategoryMap[id]
	if oldCatID == categoryID {
		return false, nil, nil
	}

	pageFolder := v.folderNameForPage(id, idx)
	oldCatFolder := idx.folderNameForCategory(oldCatID)
	newCatFolder := idx.folderNameForCategory(categoryID)

	oldPath := filepath.Join(v.root, pageFolder)
	if oldCatFolder != "" {
		oldPath = filepath.Join(v.root, oldCatFolder, pageFolder)
	}
	newPath := filepath.Join(v.root, pageFolder)
	if newCatFolder != "" {
		newPath = filepath.Join(v.root, newCatFolder, pageFolder)
	}
	if err := v.assertInside(oldPath); err != nil {
		return false, nil, err
	}
	if err := v.assertInside(newPath); err != nil {
		return false, nil, err
	}

	if newCatFolder != "" {
		if err := os.MkdirAll(filepath.Join(v.root, newCatFolder), 0o755); err != nil {
			return false, nil, fmt.Errorf("vault: create category dir: %w", err)
		}
	}
	if _, statErr := os.Stat(oldPath); statErr == nil {
		if err := os.Rename(oldPath, newPath); err != nil {
			return false, nil, fmt.Errorf("vault: move page dir: %w", err)
		}
	}

	var updated *models.Page
	contentPath := filepath.Join(newPath, contentFile)
	if data, readErr := os.ReadFile(contentPath); readErr == nil {
		var p models.Page
		if err := json.Unmarshal(data, &p); err != nil {
			return false, nil, fmt.Errorf("vault: parse page %s: %w", id, err)
		}
		rewriteAssetURLs(&p,
			v.AssetURLPrefix(pageFolder, oldCatFolder),
			v.AssetURLPrefix(pageFolder, newCatFolder))
		if err := v.writePage(&p, newPath); err != nil {
			return false, nil, err
		}
		updated = &p
	}

	if categoryID != "" {
		idx.CategoryMap[id] = categoryID
	} else {
		delete(idx.CategoryMap, id)
	}
	if err := v.SaveIndex(idx); err != nil {
		return false, nil, err
	}
	return true, updated, nil
}

// ReorderPages applies a requested display order. Unknown IDs are dropped
// silently and existing IDs missing from the request are appended at the
// end, so a stale client-side order cannot lose pages.
func (v *Vault) ReorderPages(order []string) error {
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	valid := make(map[string]bool, len(idx.PageOrder))
	for _, id := range idx.PageOrder {
		valid[id] = true
	}

	newOrder := make([]string, 0, len(idx.PageOrder))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if valid[id] && !seen[id] {
			newOrder = append(newOrder, id)
			seen[id] = true
		}
	}
	for _, id := range idx.PageOrder {
		if !seen[id] {
			newOrder = append(newOrder, id)
		}
	}
	idx.PageOrder = newOrder
	return v.SaveIndex(idx)
}

// SetCurrentPage records the last-selected page. An empty id clears it.
func (v *Vault) SetCurrentPage(id string) error {
	idx, err := v.LoadIndex()
	if err != nil {
		return err
	}
	idx.CurrentPageID = id
	return v.SaveIndex(idx)
}

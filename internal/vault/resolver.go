package vault

import (
	"os"
	"path/filepath"
)

// folderNameForPage returns the authoritative folder name for a page.
// folderMap wins when present. For index-less legacy data a directory
// literally named after the ID is honored; otherwise the ID itself is
// returned as a best-effort guess (typically surfacing as not-found
// further up the stack).
func (v *Vault) folderNameForPage(id string, idx *Index) string {
	if name := idx.FolderMap[id]; name != "" {
		return name
	}
	if info, err := os.Stat(filepath.Join(v.root, id)); err == nil && info.IsDir() {
		return id
	}
	return id
}

// pageDir computes the page's on-disk directory. A page's physical location
// has at most one category segment regardless of how deep its category sits
// in the logical tree; nesting is recorded in the index only. This keeps
// renames shallow: moving a category never cascades through child paths.
func (v *Vault) pageDir(id string, idx *Index) string {
	pageFolder := v.folderNameForPage(id, idx)
	catFolder := idx.folderNameForCategory(idx.CategoryMap[id])
	if catFolder != "" {
		return filepath.Join(v.root, catFolder, pageFolder)
	}
	return filepath.Join(v.root, pageFolder)
}

// AssetURLPrefix builds the externally served base URL for a page's assets.
// This exact prefix is used both to serve static files and as the literal
// search-and-replace target inside stored block content, so every rewrite
// site must construct it here and nowhere else.
func (v *Vault) AssetURLPrefix(pageFolder, categoryFolder string) string {
	if categoryFolder != "" {
		return v.staticBase + "/" + categoryFolder + "/" + pageFolder + "/"
	}
	return v.staticBase + "/" + pageFolder + "/"
}

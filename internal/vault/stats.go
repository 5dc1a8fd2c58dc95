package vault

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// Stats summarizes the vault for the introspection endpoint.
type Stats struct {
	Path       string `json:"path"`
	Pages      int    `json:"pages"`
	Categories int    `json:"categories"`
	SizeBytes  int64  `json:"sizeBytes"`
}

// Stats walks the vault directory and reports counts from the index plus
// the total on-disk size.
func (v *Vault) Stats() (*Stats, error) {
	idx, err := v.LoadIndex()
	if err != nil {
		return nil, err
	}
	var size int64
	err = filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: walk: %w", err)
	}
	return &Stats{
		Path:       v.root,
		Pages:      len(idx.PageOrder),
		Categories: len(idx.Categories),
		SizeBytes:  size,
	}, nil
}

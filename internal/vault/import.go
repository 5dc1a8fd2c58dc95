package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/inkwell/internal/models"
)

// Import replaces the entire vault with a snapshot. The current contents
// are copied to a sibling backup directory first; any failure during the
// replacement restores the backup so the vault is never left half-imported.
// This is the only operation with rollback. Returns the number of page
// documents written.
func (v *Vault) Import(idx *Index, pages []models.Page) (int, error) {
	if idx == nil {
		idx = &Index{}
	}
	idx.normalize()

	backup := v.root + "_bak_" + time.Now().Format("20060102_150405")
	if err := copyTree(v.root, backup); err != nil {
		return 0, fmt.Errorf("vault: backup before import: %w", err)
	}

	written, err := v.applySnapshot(idx, pages)
	if err != nil {
		v.log.Error("vault: import failed, restoring backup", "error", err)
		if rbErr := v.restoreBackup(backup); rbErr != nil {
			return 0, fmt.Errorf("vault: import failed (%v) and rollback failed: %w", err, rbErr)
		}
		return 0, fmt.Errorf("vault: import rolled back: %w", err)
	}

	if err := os.RemoveAll(backup); err != nil {
		v.log.Warn("vault: could not remove import backup", "path", backup, "error", err)
	}
	return written, nil
}

func (v *Vault) applySnapshot(idx *Index, pages []models.Page) (int, error) {
	if err := v.clearVault(); err != nil {
		return 0, err
	}
	if err := v.SaveIndex(idx); err != nil {
		return 0, err
	}

	written := 0
	for i := range pages {
		page := &pages[i]
		folderName := idx.FolderMap[page.ID]
		if folderName == "" {
			continue
		}
		dir := filepath.Join(v.root, folderName)
		if catFolder := idx.folderNameForCategory(idx.CategoryMap[page.ID]); catFolder != "" {
			dir = filepath.Join(v.root, catFolder, folderName)
		}
		if err := v.writePage(page, dir); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// clearVault removes every entry under the root except the index file,
// which the subsequent SaveIndex overwrites anyway.
func (v *Vault) clearVault() error {
	entries, err := os.ReadDir(v.root)
	if err != nil {
		return fmt.Errorf("vault: read root: %w", err)
	}
	for _, e := range entries {
		if e.Name() == indexFile {
			continue
		}
		if err := os.RemoveAll(filepath.Join(v.root, e.Name())); err != nil {
			return fmt.Errorf("vault: clear %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (v *Vault) restoreBackup(backup string) error {
	if err := os.RemoveAll(v.root); err != nil {
		return err
	}
	if err := os.Rename(backup, v.root); err != nil {
		// Rename across devices can fail; fall back to a copy.
		if cpErr := copyTree(backup, v.root); cpErr != nil {
			return cpErr
		}
		return os.RemoveAll(backup)
	}
	return nil
}

// copyTree copies src into dst recursively. dst must not exist yet.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Package vault implements the persistence and path-safety layer: it maps
// page and category IDs to on-disk folders, keeps the single _index.json
// consistent with the folder tree, rewrites embedded asset URLs when folders
// move, and guards every filesystem operation against escaping the vault
// root. The directory tree is the durable representation; the index is a
// derived cache with a defined fallback when the two disagree.
package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	indexFile    = "_index.json"
	templatesDir = "_templates"
	contentFile  = "content.json"
)

// Vault is rooted at a single directory and owns all filesystem access to
// it. No other component issues raw filesystem calls against the vault.
type Vault struct {
	root       string // absolute, symlink-resolved
	staticBase string // external base URL under which vault files are served
	log        *slog.Logger
}

// New creates a Vault rooted at dir, creating it if needed. staticBase is
// the URL prefix for served assets (e.g. "http://localhost:8000/static").
func New(dir, staticBase string, log *slog.Logger) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create root: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Vault{
		root:       abs,
		staticBase: strings.TrimRight(staticBase, "/"),
		log:        log,
	}, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// writeFileAtomic writes content via tmp file → fsync → rename so readers
// never observe a partial file.
func (v *Vault) writeFileAtomic(path string, content []byte) error {
	if err := v.assertInside(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".inkwell-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true
	return nil
}

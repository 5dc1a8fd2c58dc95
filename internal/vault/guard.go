package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/inkwell/internal/apperr"
)

var uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidateID rejects any identifier that is not a 36-character UUID. Every
// route parameter that flows into a filesystem path must pass this check
// before it is used to look up a folder; it is the primary defense against
// traversal payloads disguised as IDs.
func ValidateID(value, label string) error {
	if !uuidRe.MatchString(value) {
		return fmt.Errorf("vault: %s: %w", label, apperr.ErrInvalidID)
	}
	return nil
}

// resolveExisting resolves symlinks in the deepest existing ancestor of path
// and rejoins the non-existent remainder, so traversal checks see the real
// location even for paths about to be created.
func resolveExisting(path string) (string, error) {
	remainder := ""
	cur := path
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(resolved, remainder), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		remainder = filepath.Join(filepath.Base(cur), remainder)
		cur = parent
	}
}

// assertInside resolves a candidate path and fails with ErrPathEscape unless
// it is equal to or nested under the vault root. Invoked before every
// filesystem mutation, not only on user-supplied paths: folder names derived
// from user titles could still resolve somewhere unexpected.
func (v *Vault) assertInside(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("vault: resolve path: %w", err)
	}
	abs, err = resolveExisting(abs)
	if err != nil {
		return fmt.Errorf("vault: resolve path: %w", err)
	}
	if abs != v.root && !strings.HasPrefix(abs, v.root+string(os.PathSeparator)) {
		// Security event: logged distinctly from ordinary not-found errors.
		v.log.Warn("vault: blocked path escape", slog.String("path", path))
		return fmt.Errorf("vault: %q: %w", path, apperr.ErrPathEscape)
	}
	return nil
}

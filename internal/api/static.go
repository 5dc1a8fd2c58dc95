package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticHandler serves page assets from the vault directory. Every request
// path is cleaned and re-checked against the root before touching disk, so
// encoded traversal sequences cannot reach files outside the vault.
func StaticHandler(vaultRoot string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if rel == "" {
			http.NotFound(w, r)
			return
		}
		cleaned := filepath.Clean(filepath.FromSlash(rel))
		if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
			return
		}
		abs := filepath.Join(vaultRoot, cleaned)
		if !strings.HasPrefix(abs, vaultRoot+string(os.PathSeparator)) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
			return
		}
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, abs)
	}
}

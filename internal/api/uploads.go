package api

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/vault"
)

// Upload handles POST /api/pages/{id}/images and /videos
// (multipart/form-data, field "file"). Extension and size are checked
// before the body is stored; the whole file is buffered in memory, which
// is acceptable at the enforced limits.
//
//	@Summary	Upload an image or video for a page
//	@Tags		uploads
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		string	true	"Page ID"
//	@Param		file	formData	file	true	"File to upload"
//	@Success	201		{object}	map[string]string
//	@Failure	400		{object}	errResponse
//	@Failure	413		{object}	errResponse
//	@Failure	415		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages/{id}/images [post]
func (h *Handler) Upload(kind vault.AssetKind) http.HandlerFunc {
	limit := vault.MaxImageSize
	if kind == vault.AssetVideo {
		limit = vault.MaxVideoSize
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := vault.ValidateID(id, "page id"); err != nil {
			writeError(w, "upload", err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, int64(limit)+1<<20)
		if err := r.ParseMultipartForm(int64(limit)); err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file too large or invalid multipart"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
			return
		}
		defer file.Close()

		ext := filepath.Ext(header.Filename)
		if err := vault.CheckAsset(kind, ext, header.Size); err != nil {
			writeError(w, "upload", err)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, "upload", err)
			return
		}

		url, err := h.vault.SaveAsset(id, kind, ext, data)
		if err != nil {
			writeError(w, "upload", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"url":      url,
			"filename": header.Filename,
		})
	}
}

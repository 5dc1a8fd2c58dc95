package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/logbuf"
	"github.com/starford/inkwell/internal/search"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/vault"
)

// Search handles GET /api/search?q=...&limit=...
//
//	@Summary	Search pages by title and content
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Query string"
//	@Param		limit	query		int		false	"Maximum results"
//	@Success	200		{object}	map[string]any
//	@Security	BearerAuth
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pages, _, err := h.vault.ListPages()
	if err != nil {
		writeError(w, "search", err)
		return
	}
	results := search.Search(pages, q, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": results,
		"total":   len(results),
	})
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.vault.Templates()
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// CreateTemplate handles POST /api/templates.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	t, err := h.vault.CreateTemplate(req.Name, req.Icon, req.Description, req.Content)
	if err != nil {
		writeError(w, "create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTemplate handles PUT /api/templates/{id}.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "template id"); err != nil {
		writeError(w, "update template", err)
		return
	}
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	t, err := h.vault.UpdateTemplate(id, req.Name, req.Icon, req.Description, req.Content)
	if err != nil {
		writeError(w, "update template", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate handles DELETE /api/templates/{id}.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "template id"); err != nil {
		writeError(w, "delete template", err)
		return
	}
	if err := h.vault.DeleteTemplate(id); err != nil {
		writeError(w, "delete template", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ExportJSON handles GET /api/vault/export.
//
//	@Summary	Export the whole vault as a JSON snapshot
//	@Tags		vault
//	@Produce	json
//	@Success	200	{object}	vault.Snapshot
//	@Security	BearerAuth
//	@Router		/vault/export [get]
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := h.vault.ExportJSON()
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="vault-export.json"`)
	writeJSON(w, http.StatusOK, snap)
}

// ExportMarkdown handles GET /api/vault/export/markdown.
//
//	@Summary	Export every page as Markdown in a zip archive
//	@Tags		vault
//	@Produce	application/zip
//	@Success	200
//	@Security	BearerAuth
//	@Router		/vault/export/markdown [get]
func (h *Handler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="vault-export.zip"`)
	if err := h.vault.ExportMarkdown(w); err != nil {
		// Headers are already out; all we can do is log.
		writeError(w, "export markdown", err)
	}
}

// Import handles POST /api/vault/import.
//
//	@Summary	Replace the vault with an uploaded snapshot
//	@Tags		vault
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ImportRequest	true	"Snapshot produced by export"
//	@Success	200		{object}	map[string]any
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/vault/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	written, err := h.vault.Import(req.Index, req.Pages)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	h.publish(sse.EventVaultImported, map[string]int{"imported": written})
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"imported": written,
	})
}

// Stats handles GET /api/vault/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vault.Stats()
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Logs returns the most recent in-memory log records.
func Logs(buf *logbuf.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"logs": buf.Recent()})
	}
}

// Events streams broker events as server-sent events until the client
// disconnects.
func Events(broker *sse.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, errorBody("streaming unsupported"))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		events, cancel := broker.Subscribe()
		defer cancel()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if _, err := w.Write([]byte("event: " + ev.Name + "\ndata: " + string(ev.Encode()) + "\n\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

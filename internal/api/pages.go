package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/vault"
)

// Handler holds API route handlers.
type Handler struct {
	vault  *vault.Vault
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil in tests.
func NewHandler(v *vault.Vault, broker *sse.Broker) *Handler {
	return &Handler{vault: v, broker: broker}
}

func (h *Handler) publish(name string, data any) {
	if h.broker != nil {
		h.broker.Publish(name, data)
	}
}

// ListPages handles GET /api/pages.
//
//	@Summary		List all pages in display order
//	@Tags			pages
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, idx, err := h.vault.ListPages()
	if err != nil {
		writeError(w, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages":         pages,
		"pageOrder":     idx.PageOrder,
		"currentPageId": idx.CurrentPageID,
	})
}

// GetPage handles GET /api/pages/{id}.
//
//	@Summary	Get a single page
//	@Tags		pages
//	@Produce	json
//	@Param		id	path		string	true	"Page ID"
//	@Success	200	{object}	models.Page
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages/{id} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "page id"); err != nil {
		writeError(w, "get page", err)
		return
	}
	page, err := h.vault.Page(id)
	if err != nil {
		writeError(w, "get page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreatePage handles POST /api/pages.
//
//	@Summary	Create a new page
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreatePageRequest	true	"Page to create"
//	@Success	201		{object}	models.Page
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages [post]
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.CategoryID != "" {
		if err := vault.ValidateID(req.CategoryID, "category id"); err != nil {
			writeError(w, "create page", err)
			return
		}
	}
	page, err := h.vault.CreatePage(req.Title, req.Icon, req.CategoryID)
	if err != nil {
		writeError(w, "create page", err)
		return
	}
	h.publish(sse.EventPageCreated, map[string]string{"pageId": page.ID})
	writeJSON(w, http.StatusCreated, page)
}

// SavePage handles PUT /api/pages/{id}.
//
//	@Summary	Save a full page document
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Page ID"
//	@Param		body	body		models.Page	true	"Full page document"
//	@Success	200		{object}	map[string]any
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages/{id} [put]
func (h *Handler) SavePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "page id"); err != nil {
		writeError(w, "save page", err)
		return
	}
	var page models.Page
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	page.ID = id
	renamed, saved, err := h.vault.SavePage(page)
	if err != nil {
		writeError(w, "save page", err)
		return
	}
	h.publish(sse.EventPageUpdated, map[string]string{"pageId": id})
	writeJSON(w, http.StatusOK, map[string]any{
		"page":    saved,
		"renamed": renamed,
	})
}

// DeletePage handles DELETE /api/pages/{id}.
//
//	@Summary	Delete a page and its assets
//	@Tags		pages
//	@Produce	json
//	@Param		id	path		string	true	"Page ID"
//	@Success	200	{object}	map[string]bool
//	@Failure	400	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages/{id} [delete]
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "page id"); err != nil {
		writeError(w, "delete page", err)
		return
	}
	if err := h.vault.DeletePage(id); err != nil {
		writeError(w, "delete page", err)
		return
	}
	h.publish(sse.EventPageDeleted, map[string]string{"pageId": id})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MovePage handles PUT /api/pages/{id}/category.
//
//	@Summary	Move a page to another category
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Page ID"
//	@Param		body	body		MovePageRequest	true	"Target category"
//	@Success	200		{object}	map[string]any
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages/{id}/category [put]
func (h *Handler) MovePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "page id"); err != nil {
		writeError(w, "move page", err)
		return
	}
	var req MovePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.CategoryID != "" {
		if err := vault.ValidateID(req.CategoryID, "category id"); err != nil {
			writeError(w, "move page", err)
			return
		}
	}
	moved, page, err := h.vault.MovePageToCategory(id, req.CategoryID)
	if err != nil {
		writeError(w, "move page", err)
		return
	}
	if moved {
		h.publish(sse.EventPageMoved, map[string]string{"pageId": id, "categoryId": req.CategoryID})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moved": moved,
		"page":  page,
	})
}

// ReorderPages handles PUT /api/pages/order.
//
//	@Summary	Reorder pages
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ReorderRequest	true	"Desired page order"
//	@Success	200		{object}	map[string]bool
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/pages/order [put]
func (h *Handler) ReorderPages(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.vault.ReorderPages(req.Order); err != nil {
		writeError(w, "reorder pages", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SetCurrentPage handles PUT /api/pages/current.
//
//	@Summary	Remember the last-selected page
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CurrentPageRequest	true	"Current page, empty to clear"
//	@Success	200		{object}	map[string]bool
//	@Security	BearerAuth
//	@Router		/pages/current [put]
func (h *Handler) SetCurrentPage(w http.ResponseWriter, r *http.Request) {
	var req CurrentPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.PageID != "" {
		if err := vault.ValidateID(req.PageID, "page id"); err != nil {
			writeError(w, "set current page", err)
			return
		}
	}
	if err := h.vault.SetCurrentPage(req.PageID); err != nil {
		writeError(w, "set current page", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

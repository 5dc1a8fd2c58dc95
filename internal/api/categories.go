package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/vault"
)

// ListCategories handles GET /api/categories.
//
//	@Summary	List categories with their ordering
//	@Tags		categories
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Security	BearerAuth
//	@Router		/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	idx, err := h.vault.LoadIndex()
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":         idx.Categories,
		"categoryOrder":      idx.CategoryOrder,
		"categoryChildOrder": idx.CategoryChildOrder,
		"categoryMap":        idx.CategoryMap,
	})
}

// CreateCategory handles POST /api/categories.
//
//	@Summary	Create a category, optionally nested
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateCategoryRequest	true	"Category to create"
//	@Success	201		{object}	vault.Category
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.ParentID != "" {
		if err := vault.ValidateID(req.ParentID, "parent id"); err != nil {
			writeError(w, "create category", err)
			return
		}
	}
	cat, err := h.vault.CreateCategory(req.Name, req.ParentID)
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	h.publish(sse.EventCategoryCreated, map[string]string{"categoryId": cat.ID})
	writeJSON(w, http.StatusCreated, cat)
}

// RenameCategory handles PUT /api/categories/{id}.
//
//	@Summary	Rename a category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Category ID"
//	@Param		body	body		RenameCategoryRequest	true	"New name"
//	@Success	200		{object}	map[string]any
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories/{id} [put]
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "category id"); err != nil {
		writeError(w, "rename category", err)
		return
	}
	var req RenameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	renamed, cat, err := h.vault.RenameCategory(id, req.Name)
	if err != nil {
		writeError(w, "rename category", err)
		return
	}
	h.publish(sse.EventCategoryUpdated, map[string]string{"categoryId": id})
	writeJSON(w, http.StatusOK, map[string]any{
		"category": cat,
		"renamed":  renamed,
	})
}

// DeleteCategory handles DELETE /api/categories/{id}.
//
//	@Summary	Delete an empty category
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"Category ID"
//	@Success	200	{object}	vault.DeleteCategoryResult
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories/{id} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "category id"); err != nil {
		writeError(w, "delete category", err)
		return
	}
	result, err := h.vault.DeleteCategory(id)
	if err != nil {
		writeError(w, "delete category", err)
		return
	}
	if result.OK {
		h.publish(sse.EventCategoryDeleted, map[string]string{"categoryId": id})
	}
	writeJSON(w, http.StatusOK, result)
}

// MoveCategory handles PUT /api/categories/{id}/move.
//
//	@Summary	Reparent a category in the logical tree
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Category ID"
//	@Param		body	body		MoveCategoryRequest	true	"New parent, empty for top level"
//	@Success	200		{object}	map[string]bool
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories/{id}/move [put]
func (h *Handler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "category id"); err != nil {
		writeError(w, "move category", err)
		return
	}
	var req MoveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ParentID != "" {
		if err := vault.ValidateID(req.ParentID, "parent id"); err != nil {
			writeError(w, "move category", err)
			return
		}
	}
	if err := h.vault.MoveCategory(id, req.ParentID); err != nil {
		writeError(w, "move category", err)
		return
	}
	h.publish(sse.EventCategoryMoved, map[string]string{"categoryId": id, "parentId": req.ParentID})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ReorderCategories handles PUT /api/categories/order.
//
//	@Summary	Reorder top-level categories
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ReorderRequest	true	"Desired category order"
//	@Success	200		{object}	map[string]bool
//	@Security	BearerAuth
//	@Router		/categories/order [put]
func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.vault.ReorderCategories(req.Order); err != nil {
		writeError(w, "reorder categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ReorderCategoryChildren handles PUT /api/categories/{id}/children/order.
//
//	@Summary	Reorder one category's direct children
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Parent category ID"
//	@Param		body	body		ReorderRequest	true	"Desired child order"
//	@Success	200		{object}	map[string]bool
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/categories/{id}/children/order [put]
func (h *Handler) ReorderCategoryChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := vault.ValidateID(id, "category id"); err != nil {
		writeError(w, "reorder category children", err)
		return
	}
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.vault.ReorderCategoryChildren(id, req.Order); err != nil {
		writeError(w, "reorder category children", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

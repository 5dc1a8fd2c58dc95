package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/vault"
)

// CreatePageRequest is the body of POST /api/pages.
type CreatePageRequest struct {
	Title      string `json:"title"`
	Icon       string `json:"icon"`
	CategoryID string `json:"categoryId"`
}

func (r CreatePageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 500)),
	)
}

// CreateCategoryRequest is the body of POST /api/categories.
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// RenameCategoryRequest is the body of PUT /api/categories/{id}.
type RenameCategoryRequest struct {
	Name string `json:"name"`
}

func (r RenameCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// MoveCategoryRequest is the body of PUT /api/categories/{id}/move.
// An empty parentId moves the category to the top level.
type MoveCategoryRequest struct {
	ParentID string `json:"parentId"`
}

// MovePageRequest is the body of PUT /api/pages/{id}/category.
// An empty categoryId makes the page uncategorized.
type MovePageRequest struct {
	CategoryID string `json:"categoryId"`
}

// ReorderRequest carries an ID list for the reorder endpoints.
type ReorderRequest struct {
	Order []string `json:"order"`
}

func (r ReorderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Order, validation.NotNil),
	)
}

// CurrentPageRequest is the body of PUT /api/pages/current.
type CurrentPageRequest struct {
	PageID string `json:"pageId"`
}

// TemplateRequest is the body of template create and update.
type TemplateRequest struct {
	Name        string         `json:"name"`
	Icon        string         `json:"icon"`
	Description string         `json:"description"`
	Content     []models.Block `json:"content"`
}

// ImportRequest is the body of POST /api/vault/import. It accepts the
// exact shape ExportJSON produces.
type ImportRequest struct {
	Index *vault.Index  `json:"index"`
	Pages []models.Page `json:"pages"`
}

func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Index, validation.NotNil),
	)
}

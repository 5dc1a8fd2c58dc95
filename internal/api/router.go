package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/inkwell/internal/logbuf"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/vault"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker and buf may be nil; the corresponding endpoints are then omitted.
func NewRouter(v *vault.Vault, authEnabled bool, token string, broker *sse.Broker, buf *logbuf.Handler) chi.Router {
	h := NewHandler(v, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pages CRUD and ordering. Literal routes before the {id} wildcard.
	r.Get("/pages", h.ListPages)
	r.Post("/pages", h.CreatePage)
	r.Put("/pages/order", h.ReorderPages)
	r.Put("/pages/current", h.SetCurrentPage)
	r.Get("/pages/{id}", h.GetPage)
	r.Put("/pages/{id}", h.SavePage)
	r.Delete("/pages/{id}", h.DeletePage)
	r.Put("/pages/{id}/category", h.MovePage)

	// Uploads.
	r.Post("/pages/{id}/images", h.Upload(vault.AssetImage))
	r.Post("/pages/{id}/videos", h.Upload(vault.AssetVideo))

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/order", h.ReorderCategories)
	r.Put("/categories/{id}", h.RenameCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
	r.Put("/categories/{id}/move", h.MoveCategory)
	r.Put("/categories/{id}/children/order", h.ReorderCategoryChildren)

	// Search.
	r.Get("/search", h.Search)

	// Templates.
	r.Get("/templates", h.ListTemplates)
	r.Post("/templates", h.CreateTemplate)
	r.Put("/templates/{id}", h.UpdateTemplate)
	r.Delete("/templates/{id}", h.DeleteTemplate)

	// Vault lifecycle and introspection.
	r.Get("/vault/export", h.ExportJSON)
	r.Get("/vault/export/markdown", h.ExportMarkdown)
	r.Post("/vault/import", h.Import)
	r.Get("/vault/stats", h.Stats)

	if buf != nil {
		r.Get("/logs", Logs(buf))
	}
	if broker != nil {
		r.Get("/events", Events(broker))
	}

	return r
}

// NewServerMux assembles the full HTTP surface: the API under /api, page
// assets under /static, and an unauthenticated health probe.
func NewServerMux(v *vault.Vault, authEnabled bool, token string, broker *sse.Broker, buf *logbuf.Handler) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(middleware.Recoverer)
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Mount("/api", NewRouter(v, authEnabled, token, broker, buf))
	root.Get("/static/*", StaticHandler(v.Root()))
	return root
}

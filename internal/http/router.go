// Package http wires the API routes and request middleware.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docpane/internal/handlers"
	"docpane/internal/search"
	"docpane/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB        *sql.DB
	Documents *service.DocumentService
	Search    search.Service
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	docHandler := handlers.NewDocumentHandler(deps.Documents)
	searchHandler := handlers.NewSearchHandler(deps.Documents, deps.Search)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docHandler.Create)
			r.Get("/", docHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", docHandler.Get)
				r.Delete("/", docHandler.Delete)
				r.Get("/chunks", docHandler.Chunks)
				r.Put("/chunks/{index}", docHandler.SaveEdit)
				r.Method(http.MethodGet, "/search", searchHandler)
			})
		})
	})

	return r
}

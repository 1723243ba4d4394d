package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"docpane/internal/search"
	"docpane/internal/service"
)

// SearchHandler handles HTTP requests for in-document search.
type SearchHandler struct {
	docs     *service.DocumentService
	searcher search.Service
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(docs *service.DocumentService, searcher search.Service) *SearchHandler {
	return &SearchHandler{docs: docs, searcher: searcher}
}

// SearchResponse represents a search result list.
type SearchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

// ServeHTTP searches one document's chunks for the q query parameter.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	// Resolve the document first so an unknown ID is a 404, not an empty list.
	if _, err := h.docs.Get(ctx, id); err != nil {
		handleServiceError(w, ctx, err, "Failed to get document")
		return
	}

	hits, err := h.searcher.Search(ctx, id, query)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search document")
		return
	}

	writeJSON(w, ctx, http.StatusOK, SearchResponse{Query: query, Hits: hits})
}

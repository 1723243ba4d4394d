package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"docpane/internal/contextutil"
	"docpane/internal/service"
	"docpane/internal/storage"
)

// DocumentHandler handles HTTP requests for documents and their chunks.
type DocumentHandler struct {
	docs *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(docs *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// CreateRequest represents the upload payload for a new document.
type CreateRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// DocumentResponse represents a document in HTTP responses.
type DocumentResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	WordCount  int    `json:"wordCount"`
	ChunkCount int    `json:"chunkCount"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// ChunkResponse represents one chunk in HTTP responses.
type ChunkResponse struct {
	ID         string `json:"id"`
	ChunkIndex int    `json:"chunkIndex"`
	Content    string `json:"content"`
	WordCount  int    `json:"wordCount"`
	StartWord  int    `json:"startWord"`
	EndWord    int    `json:"endWord"`
}

// EditRequest represents a single chunk content edit.
type EditRequest struct {
	Content string `json:"content"`
}

func toDocumentResponse(d *storage.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID,
		Title:      d.Title,
		WordCount:  d.WordCount,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toChunkResponses(records []storage.ChunkRecord) []ChunkResponse {
	out := make([]ChunkResponse, len(records))
	for i, r := range records {
		out[i] = ChunkResponse{
			ID:         r.ID,
			ChunkIndex: r.ChunkIndex,
			Content:    r.Content,
			WordCount:  r.WordCount,
			StartWord:  r.StartWord,
			EndWord:    r.EndWord,
		}
	}
	return out
}

// Create ingests an uploaded document.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docs.Ingest(ctx, req.Filename, []byte(req.Content))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to ingest document")
		return
	}

	writeJSON(w, ctx, http.StatusCreated, toDocumentResponse(doc))
}

// List returns all documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.docs.List(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list documents")
		return
	}

	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i])
	}
	writeJSON(w, ctx, http.StatusOK, out)
}

// Get returns one document by ID.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.docs.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get document")
		return
	}

	writeJSON(w, ctx, http.StatusOK, toDocumentResponse(doc))
}

// Delete removes a document and its chunks.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.docs.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Chunks returns a document's chunks, optionally limited to an inclusive
// index range with the start and end query parameters.
func (h *DocumentHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	startStr := strings.TrimSpace(r.URL.Query().Get("start"))
	endStr := strings.TrimSpace(r.URL.Query().Get("end"))

	var records []storage.ChunkRecord
	var err error
	if startStr == "" && endStr == "" {
		records, err = h.docs.Chunks(ctx, id)
	} else {
		start, perr := strconv.Atoi(startStr)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "start must be an integer")
			return
		}
		end, perr := strconv.Atoi(endStr)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "end must be an integer")
			return
		}
		records, err = h.docs.ChunkRange(ctx, id, start, end)
	}
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load chunks")
		return
	}

	writeJSON(w, ctx, http.StatusOK, toChunkResponses(records))
}

// SaveEdit persists one chunk content edit.
func (h *DocumentHandler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "chunk index must be an integer")
		return
	}

	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.docs.SaveEdit(ctx, chi.URLParam(r, "id"), index, req.Content); err != nil {
		handleServiceError(w, ctx, err, "Failed to save edit")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

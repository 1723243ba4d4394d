// Package service orchestrates document ingestion, chunk access and edit
// persistence on top of the storage layer.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"docpane/internal/chunker"
	"docpane/internal/ingest"
	"docpane/internal/storage"
	"docpane/internal/viewer"
)

// DocumentService ingests documents into size-bounded chunk sets and serves
// them back to viewers. Chunk sets are replaced wholesale on ingest; the only
// incremental write is the per-chunk edit delta coming from the viewer's edit
// router.
type DocumentService struct {
	docs        storage.DocumentStore
	chunks      storage.ChunkStore
	extractor   *ingest.Extractor
	targetWords int
	minWords    int
	logger      *slog.Logger
}

// NewDocumentService creates a DocumentService with the given chunking
// bounds.
func NewDocumentService(docs storage.DocumentStore, chunks storage.ChunkStore, targetWords, minWords int) *DocumentService {
	return &DocumentService{
		docs:        docs,
		chunks:      chunks,
		extractor:   ingest.NewExtractor(),
		targetWords: targetWords,
		minWords:    minWords,
		logger:      slog.Default(),
	}
}

// Ingest chunks and stores uploaded content as a new document.
func (s *DocumentService) Ingest(ctx context.Context, filename string, content []byte) (*storage.Document, error) {
	if len(content) == 0 {
		return nil, &ValidationError{Field: "content", Message: "cannot be empty"}
	}
	if strings.TrimSpace(filename) == "" {
		return nil, &ValidationError{Field: "filename", Message: "cannot be empty"}
	}
	return s.ingest(ctx, "", filename, content, nil)
}

// IngestFile ingests one library file, keyed by its source path. Unchanged
// content (same hash) is skipped; changed content replaces the document's
// chunk set wholesale.
func (s *DocumentService) IngestFile(ctx context.Context, sourcePath, filename string, content []byte) (doc *storage.Document, changed bool, err error) {
	hash := contentHash(content)

	existing, err := s.docs.GetBySourcePath(ctx, sourcePath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup by source path: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return existing, false, nil
	}

	doc, err = s.ingest(ctx, sourcePath, filename, content, existing)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// ingest extracts, chunks and persists content, reusing an existing document
// row when replacing.
func (s *DocumentService) ingest(ctx context.Context, sourcePath, filename string, content []byte, existing *storage.Document) (*storage.Document, error) {
	title, plain := s.extractor.Extract(content, filename)
	parts := chunker.Split(plain, s.targetWords, s.minWords)

	doc := &storage.Document{
		Title:      title,
		SourcePath: sourcePath,
		Hash:       contentHash(content),
		ChunkCount: len(parts),
	}
	records := make([]storage.ChunkRecord, len(parts))
	for i, p := range parts {
		doc.WordCount += p.WordCount
		records[i] = storage.ChunkRecord{
			ID:         uuid.New().String(),
			ChunkIndex: p.Index,
			Content:    p.Content,
			WordCount:  p.WordCount,
			StartWord:  p.StartWord,
			EndWord:    p.EndWord,
		}
	}

	if existing != nil {
		doc.ID = existing.ID
		if err := s.docs.Update(ctx, doc); err != nil {
			return nil, fmt.Errorf("update document: %w", err)
		}
	} else {
		doc.ID = uuid.New().String()
		if err := s.docs.Insert(ctx, doc); err != nil {
			return nil, fmt.Errorf("insert document: %w", err)
		}
	}

	for i := range records {
		records[i].DocumentID = doc.ID
	}
	if err := s.chunks.ReplaceForDocument(ctx, doc.ID, records); err != nil {
		return nil, fmt.Errorf("replace chunks: %w", err)
	}

	s.logger.InfoContext(ctx, "document ingested",
		"document_id", doc.ID, "title", doc.Title,
		"chunks", doc.ChunkCount, "words", doc.WordCount)
	return doc, nil
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]storage.Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get returns one document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*storage.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "get document")
	}
	return doc, nil
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		return s.translate(err, "delete document")
	}
	return nil
}

// Chunks returns the full ordered chunk set of a document.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]storage.ChunkRecord, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, s.translate(err, "get document")
	}
	chunks, err := s.chunks.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return chunks, nil
}

// ChunkRange returns the chunks with indices in [start, end], inclusive,
// clamped to the document's bounds.
func (s *DocumentService) ChunkRange(ctx context.Context, documentID string, start, end int) ([]storage.ChunkRecord, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, s.translate(err, "get document")
	}
	if end < start {
		return nil, &ValidationError{Field: "end", Message: "must not be less than start"}
	}
	chunks, err := s.chunks.GetRange(ctx, documentID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get chunk range: %w", err)
	}
	return chunks, nil
}

// SaveEdit commits one (chunkIndex, content) delta from the viewer's edit
// router. It touches exactly the addressed chunk; word-count bookkeeping is
// refreshed on the next full ingest, never recomputed piecemeal here.
func (s *DocumentService) SaveEdit(ctx context.Context, documentID string, chunkIndex int, content string) error {
	if chunkIndex < 0 {
		return &ValidationError{Field: "chunkIndex", Message: "must not be negative"}
	}
	if err := s.chunks.UpdateContent(ctx, documentID, chunkIndex, content); err != nil {
		return s.translate(err, "save chunk edit")
	}
	s.logger.DebugContext(ctx, "chunk edit saved", "document_id", documentID, "chunk_index", chunkIndex)
	return nil
}

// OpenChunks loads a document's chunk set in the form the viewer engine
// consumes.
func (s *DocumentService) OpenChunks(ctx context.Context, documentID string) ([]viewer.Chunk, error) {
	records, err := s.Chunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	chunks := make([]viewer.Chunk, len(records))
	for i, r := range records {
		chunks[i] = viewer.Chunk{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			Index:      r.ChunkIndex,
			Content:    r.Content,
			WordCount:  r.WordCount,
			StartWord:  r.StartWord,
			EndWord:    r.EndWord,
		}
	}
	return chunks, nil
}

// translate maps storage errors onto the service error taxonomy.
func (s *DocumentService) translate(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

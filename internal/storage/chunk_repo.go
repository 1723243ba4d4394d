package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docpane/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations. The chunk
// set for a document is only ever replaced wholesale, never patched
// incrementally, except for UpdateContent which commits a single edit delta.
type ChunkStore interface {
	// ReplaceForDocument atomically swaps the chunk set for a document.
	// Each chunk.ID must be set (UUID) before calling this method.
	ReplaceForDocument(ctx context.Context, documentID string, chunks []ChunkRecord) error
	// ListByDocument returns all chunks for a document, ordered by chunk_index.
	ListByDocument(ctx context.Context, documentID string) ([]ChunkRecord, error)
	// GetRange returns chunks with chunk_index in [start, end], inclusive,
	// ordered by chunk_index. Returns an empty slice when nothing is in range.
	GetRange(ctx context.Context, documentID string, start, end int) ([]ChunkRecord, error)
	// Get gets one chunk by document and index. Returns ErrNotFound if not found.
	Get(ctx context.Context, documentID string, index int) (*ChunkRecord, error)
	// UpdateContent commits an edit delta to a single chunk's content.
	// Returns ErrNotFound if the chunk does not exist.
	UpdateContent(ctx context.Context, documentID string, index int, content string) error
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceForDocument atomically swaps the chunk set for a document. Old
// chunks are deleted and the new set inserted in one transaction so readers
// never see a torn set.
func (r *ChunkRepo) ReplaceForDocument(ctx context.Context, documentID string, chunks []ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, document_id, chunk_index, content, word_count, start_word, end_word) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, documentID, chunk.ChunkIndex, chunk.Content,
			chunk.WordCount, chunk.StartWord, chunk.EndWord,
		); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk replace: %w", err)
	}
	return nil
}

// ListByDocument returns all chunks for a document, ordered by chunk_index.
func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]ChunkRecord, error) {
	return r.query(ctx,
		"SELECT id, document_id, chunk_index, content, word_count, start_word, end_word FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
}

// GetRange returns chunks with chunk_index in [start, end], inclusive.
func (r *ChunkRepo) GetRange(ctx context.Context, documentID string, start, end int) ([]ChunkRecord, error) {
	if start < 0 {
		start = 0
	}
	return r.query(ctx,
		"SELECT id, document_id, chunk_index, content, word_count, start_word, end_word FROM chunks WHERE document_id = ? AND chunk_index BETWEEN ? AND ? ORDER BY chunk_index",
		documentID, start, end,
	)
}

func (r *ChunkRepo) query(ctx context.Context, query string, args ...any) ([]ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []ChunkRecord{}
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.WordCount, &c.StartWord, &c.EndWord); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// Get gets one chunk by document and index. Returns ErrNotFound if not found.
func (r *ChunkRepo) Get(ctx context.Context, documentID string, index int) (*ChunkRecord, error) {
	var c ChunkRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, document_id, chunk_index, content, word_count, start_word, end_word FROM chunks WHERE document_id = ? AND chunk_index = ?",
		documentID, index,
	).Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.WordCount, &c.StartWord, &c.EndWord)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &c, nil
}

// UpdateContent commits an edit delta to a single chunk's content.
func (r *ChunkRepo) UpdateContent(ctx context.Context, documentID string, index int, content string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE chunks SET content = ? WHERE document_id = ? AND chunk_index = ?",
		content, documentID, index,
	)
	if err != nil {
		return fmt.Errorf("failed to update chunk content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

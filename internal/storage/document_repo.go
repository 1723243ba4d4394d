package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docpane/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Insert inserts a document. The document.ID must be set (UUID).
	Insert(ctx context.Context, doc *Document) error
	// Update updates a document's title, hash and counters.
	Update(ctx context.Context, doc *Document) error
	// GetByID gets a document by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Document, error)
	// GetBySourcePath gets a document by its library source path.
	// Returns ErrNotFound if not found.
	GetBySourcePath(ctx context.Context, path string) (*Document, error)
	// List returns all documents ordered by title.
	List(ctx context.Context) ([]Document, error)
	// Delete removes a document; its chunks cascade.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert inserts a document. The document.ID must be set (UUID).
func (r *DocumentRepo) Insert(ctx context.Context, doc *Document) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, title, source_path, hash, word_count, chunk_count) VALUES (?, ?, ?, ?, ?, ?)",
		doc.ID, doc.Title, doc.SourcePath, doc.Hash, doc.WordCount, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Update updates a document's title, hash and counters.
func (r *DocumentRepo) Update(ctx context.Context, doc *Document) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET title = ?, hash = ?, word_count = ?, chunk_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		doc.Title, doc.Hash, doc.WordCount, doc.ChunkCount, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
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

// GetByID gets a document by ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*Document, error) {
	return r.getOne(ctx,
		"SELECT id, title, source_path, hash, word_count, chunk_count, created_at, updated_at FROM documents WHERE id = ?",
		id,
	)
}

// GetBySourcePath gets a document by its library source path.
func (r *DocumentRepo) GetBySourcePath(ctx context.Context, path string) (*Document, error) {
	return r.getOne(ctx,
		"SELECT id, title, source_path, hash, word_count, chunk_count, created_at, updated_at FROM documents WHERE source_path = ?",
		path,
	)
}

func (r *DocumentRepo) getOne(ctx context.Context, query string, arg any) (*Document, error) {
	var doc Document
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&doc.ID, &doc.Title, &doc.SourcePath, &doc.Hash,
		&doc.WordCount, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// List returns all documents ordered by title.
func (r *DocumentRepo) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, source_path, hash, word_count, chunk_count, created_at, updated_at FROM documents ORDER BY title",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(
			&doc.ID, &doc.Title, &doc.SourcePath, &doc.Hash,
			&doc.WordCount, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// Delete removes a document; its chunks cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

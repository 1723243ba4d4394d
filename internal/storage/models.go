package storage

import "time"

// Document represents one ingested document in the database.
type Document struct {
	ID         string // UUID
	Title      string // Extracted from markdown or filename
	SourcePath string // Library file path; empty for uploads
	Hash       string // SHA256 hex string of the raw source content
	WordCount  int
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChunkRecord is one persisted chunk of a document. Word indices are global
// to the document and contiguous across the ordered chunk sequence.
type ChunkRecord struct {
	ID         string // UUID
	DocumentID string // Foreign key to documents.id
	ChunkIndex int    // 0-based, unique per document
	Content    string
	WordCount  int
	StartWord  int // Inclusive global word index of first word
	EndWord    int // Inclusive global word index of last word
}

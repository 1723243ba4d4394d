// Package search finds chunks matching a query within one document. The
// indexing strategy stays behind the Service interface; the navigation layer
// only consumes (chunkIndex, excerpt) hits.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Hit is one search result: the chunk to jump to and a short excerpt around
// the first match for display in the result list.
type Hit struct {
	ChunkIndex int    `json:"chunkIndex"`
	Excerpt    string `json:"excerpt"`
}

// Service defines the search contract consumed by the viewer's navigation.
type Service interface {
	Search(ctx context.Context, documentID, query string) ([]Hit, error)
}

const (
	maxHits        = 50
	excerptRadius  = 60 // runes kept on each side of the match
	excerptEllipse = "…"
)

// SQLiteSearch is a keyword implementation of Service over the chunks table.
type SQLiteSearch struct {
	db *sql.DB
}

// NewSQLiteSearch creates a SQLiteSearch.
func NewSQLiteSearch(db *sql.DB) *SQLiteSearch {
	return &SQLiteSearch{db: db}
}

// Search returns chunks of the document whose content contains query,
// case-insensitively, ordered by chunk index.
func (s *SQLiteSearch) Search(ctx context.Context, documentID, query string) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_index, content FROM chunks
		 WHERE document_id = ? AND content LIKE ? ESCAPE '\'
		 ORDER BY chunk_index LIMIT ?`,
		documentID, pattern, maxHits,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query search hits: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	hits := []Hit{}
	for rows.Next() {
		var index int
		var content string
		if err := rows.Scan(&index, &content); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hits = append(hits, Hit{ChunkIndex: index, Excerpt: excerpt(content, query)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return hits, nil
}

// escapeLike escapes LIKE wildcards in a user query.
func escapeLike(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, "%", `\%`)
	q = strings.ReplaceAll(q, "_", `\_`)
	return q
}

// excerpt cuts a window of runes around the first case-insensitive occurrence
// of query in content, with ellipses on trimmed sides.
func excerpt(content, query string) string {
	lower := strings.ToLower(content)
	pos := strings.Index(lower, strings.ToLower(query))
	if pos < 0 {
		// SQLite matched but our fold differs (e.g. non-ASCII case rules);
		// fall back to the head of the chunk.
		pos = 0
	}

	runes := []rune(content)
	matchStart := utf8.RuneCountInString(content[:pos])
	matchLen := utf8.RuneCountInString(query)

	start := matchStart - excerptRadius
	if start < 0 {
		start = 0
	}
	end := matchStart + matchLen + excerptRadius
	if end > len(runes) {
		end = len(runes)
	}

	out := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		out = excerptEllipse + out
	}
	if end < len(runes) {
		out += excerptEllipse
	}
	return out
}

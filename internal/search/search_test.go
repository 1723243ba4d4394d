package search

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"docpane/internal/storage"
)

func setupSearchTest(t *testing.T) (*sql.DB, *SQLiteSearch) {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := storage.New(tmpDir + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ctx := context.Background()
	docs := storage.NewDocumentRepo(db)
	if err := docs.Insert(ctx, &storage.Document{ID: "doc-1", Title: "Whale Book", Hash: "h"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	chunks := storage.NewChunkRepo(db)
	err = chunks.ReplaceForDocument(ctx, "doc-1", []storage.ChunkRecord{
		{ID: "c-0", DocumentID: "doc-1", ChunkIndex: 0, Content: "Call me Ishmael. Some years ago.", WordCount: 6, StartWord: 0, EndWord: 5},
		{ID: "c-1", DocumentID: "doc-1", ChunkIndex: 1, Content: "The White Whale swam before him.", WordCount: 6, StartWord: 6, EndWord: 11},
		{ID: "c-2", DocumentID: "doc-1", ChunkIndex: 2, Content: "A whale of 100% pure_muscle.", WordCount: 5, StartWord: 12, EndWord: 16},
	})
	if err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	return db, NewSQLiteSearch(db)
}

func TestSQLiteSearch_Search(t *testing.T) {
	_, s := setupSearchTest(t)
	ctx := context.Background()

	hits, err := s.Search(ctx, "doc-1", "whale")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	if hits[0].ChunkIndex != 1 || hits[1].ChunkIndex != 2 {
		t.Errorf("hit order = [%d %d], want [1 2]", hits[0].ChunkIndex, hits[1].ChunkIndex)
	}
	for _, h := range hits {
		if !strings.Contains(strings.ToLower(h.Excerpt), "whale") {
			t.Errorf("excerpt %q does not contain the match", h.Excerpt)
		}
	}
}

func TestSQLiteSearch_CaseInsensitive(t *testing.T) {
	_, s := setupSearchTest(t)

	hits, err := s.Search(context.Background(), "doc-1", "ISHMAEL")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkIndex != 0 {
		t.Errorf("Search() hits = %+v, want one hit in chunk 0", hits)
	}
}

func TestSQLiteSearch_NoHits(t *testing.T) {
	_, s := setupSearchTest(t)

	hits, err := s.Search(context.Background(), "doc-1", "submarine")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if hits == nil {
		t.Fatal("Search() returned nil, want empty slice")
	}
	if len(hits) != 0 {
		t.Errorf("Search() returned %d hits, want 0", len(hits))
	}
}

func TestSQLiteSearch_EmptyQuery(t *testing.T) {
	_, s := setupSearchTest(t)

	if _, err := s.Search(context.Background(), "doc-1", "   "); err == nil {
		t.Error("Search() with blank query succeeded, want error")
	}
}

func TestSQLiteSearch_WildcardsAreLiteral(t *testing.T) {
	_, s := setupSearchTest(t)
	ctx := context.Background()

	// "%" and "_" in the query must match literally, not as LIKE wildcards.
	hits, err := s.Search(ctx, "doc-1", "100%")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkIndex != 2 {
		t.Errorf("Search(100%%) hits = %+v, want chunk 2 only", hits)
	}

	hits, err = s.Search(ctx, "doc-1", "pure_muscle")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkIndex != 2 {
		t.Errorf("Search(pure_muscle) hits = %+v, want chunk 2 only", hits)
	}

	// A wildcard-only query must not match everything.
	hits, err = s.Search(ctx, "doc-1", "%")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("Search(%%) hits = %+v, want only the literal %% chunk", hits)
	}
}

func TestSQLiteSearch_ScopedToDocument(t *testing.T) {
	db, s := setupSearchTest(t)
	ctx := context.Background()

	docs := storage.NewDocumentRepo(db)
	if err := docs.Insert(ctx, &storage.Document{ID: "doc-2", Title: "Other", Hash: "h"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	chunks := storage.NewChunkRepo(db)
	err := chunks.ReplaceForDocument(ctx, "doc-2", []storage.ChunkRecord{
		{ID: "x-0", DocumentID: "doc-2", ChunkIndex: 0, Content: "Another whale entirely.", WordCount: 3, StartWord: 0, EndWord: 2},
	})
	if err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	hits, err := s.Search(ctx, "doc-2", "whale")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkIndex != 0 {
		t.Errorf("Search() hits = %+v, want one hit from doc-2 only", hits)
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("a ", 100) + "needle" + strings.Repeat(" b", 100)

	got := excerpt(long, "needle")
	if !strings.Contains(got, "needle") {
		t.Fatalf("excerpt %q lost the match", got)
	}
	if !strings.HasPrefix(got, "…") || !strings.HasSuffix(got, "…") {
		t.Errorf("excerpt %q missing ellipses on trimmed sides", got)
	}

	short := "tiny needle text"
	if got := excerpt(short, "needle"); got != short {
		t.Errorf("excerpt(%q) = %q, want unchanged", short, got)
	}
}

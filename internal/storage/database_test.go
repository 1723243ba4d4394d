package storage

import (
	"context"
	"testing"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Idempotent
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	for _, table := range []string{"documents", "chunks"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestMigrate_ForeignKeyCascade(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ctx := context.Background()
	docs := NewDocumentRepo(db)
	chunks := NewChunkRepo(db)

	doc := &Document{ID: "doc-1", Title: "Test", Hash: "h"}
	if err := docs.Insert(ctx, doc); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	err = chunks.ReplaceForDocument(ctx, "doc-1", []ChunkRecord{
		{ID: "c-1", DocumentID: "doc-1", ChunkIndex: 0, Content: "text", WordCount: 1, StartWord: 0, EndWord: 0},
	})
	if err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	if err := docs.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	remaining, err := chunks.ListByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListByDocument() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("chunks not cascaded on document delete: %d left", len(remaining))
	}
}

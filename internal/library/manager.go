// Package library keeps a directory of document files in sync with the
// document store. Files are keyed by their path relative to the library root;
// changed files are re-ingested, unchanged ones skipped by content hash.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"docpane/internal/service"
)

// Manager scans a library directory and ingests its files.
type Manager struct {
	root   string
	docs   *service.DocumentService
	logger *slog.Logger
}

// NewManager creates a library manager rooted at the given directory.
func NewManager(root string, docs *service.DocumentService, logger *slog.Logger) (*Manager, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("library root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library root %s is not a directory", root)
	}
	return &Manager{root: root, docs: docs, logger: logger}, nil
}

// IndexAll scans the library and ingests every new or changed file. Files
// that fail to read or ingest are logged and skipped so one bad file cannot
// block the rest of the library.
func (m *Manager) IndexAll(ctx context.Context) error {
	files, err := m.Scan(ctx)
	if err != nil {
		return err
	}

	var ingested, skipped, failed int
	for _, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			m.logger.WarnContext(ctx, "failed to read library file", "path", f.RelPath, "error", err)
			failed++
			continue
		}

		_, changed, err := m.docs.IngestFile(ctx, f.RelPath, filepath.Base(f.RelPath), content)
		if err != nil {
			m.logger.WarnContext(ctx, "failed to ingest library file", "path", f.RelPath, "error", err)
			failed++
			continue
		}
		if changed {
			ingested++
		} else {
			skipped++
		}
	}

	m.logger.InfoContext(ctx, "library indexed",
		"root", m.root, "scanned", len(files),
		"ingested", ingested, "skipped", skipped, "failed", failed)
	return nil
}

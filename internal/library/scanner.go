package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile is one document source file found under the library root.
type ScannedFile struct {
	RelPath string // Relative path from the library root (e.g. "novels/dune.md")
	AbsPath string // Absolute file path
}

// supported reports whether a file extension belongs to an ingestable format.
func supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

// Scan walks the library root and returns every ingestable document file,
// skipping hidden directories.
func (m *Manager) Scan(ctx context.Context) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.Walk(m.root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != m.root {
				return filepath.SkipDir
			}
			return nil
		}

		if !supported(filepath.Ext(path)) {
			return nil
		}

		relPath, err := filepath.Rel(m.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan library %s: %w", m.root, err)
	}

	return files, nil
}

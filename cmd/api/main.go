package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docpane/internal/config"
	"docpane/internal/http"
	"docpane/internal/library"
	"docpane/internal/search"
	"docpane/internal/service"
	"docpane/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository and service instances
	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	docService := service.NewDocumentService(docRepo, chunkRepo, cfg.TargetChunkWords, cfg.MinChunkWords)
	searcher := search.NewSQLiteSearch(db)

	// Create router with dependencies
	deps := &http.Deps{
		DB:        db,
		Documents: docService,
		Search:    searcher,
	}
	router := http.NewRouter(deps)

	// Index the document library in the background after the router is ready
	if cfg.DocsPath != "" {
		manager, err := library.NewManager(cfg.DocsPath, docService, logger)
		if err != nil {
			log.Fatalf("Failed to initialize library manager: %v", err)
		}
		go func() {
			indexCtx := context.Background()
			slog.Info("Starting background indexing of library", "root", cfg.DocsPath)
			if err := manager.IndexAll(indexCtx); err != nil {
				slog.Error("Indexing completed with errors", "error", err)
			} else {
				slog.Info("Indexing completed successfully")
			}
		}()
	}

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

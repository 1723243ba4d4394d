package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort  string
	DBPath   string
	DocsPath string // Optional library directory indexed at startup

	TargetChunkWords int
	MinChunkWords    int

	ChunkHeightPx        int
	Overscan             int
	IntersectionDebounce time.Duration
	SettleDelay          time.Duration

	LogLevel  slog.Level
	LogFormat string // "json" or "text"
}

// Load reads configuration from environment variables and returns a Config
// struct. It applies defaults for optional fields and validates the chunking
// and virtualization bounds. If a .env file exists in the current directory
// or a parent, it is loaded automatically; environment variables already set
// take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up a few levels to find a project-root .env.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:   getEnv("API_PORT", "9000"),
		DBPath:    getEnv("DB_PATH", "./data/docpane.db"),
		DocsPath:  getEnv("DOCS_PATH", ""),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.TargetChunkWords, err = getEnvInt("TARGET_CHUNK_WORDS", 600); err != nil {
		return nil, err
	}
	if cfg.MinChunkWords, err = getEnvInt("MIN_CHUNK_WORDS", 150); err != nil {
		return nil, err
	}
	if cfg.ChunkHeightPx, err = getEnvInt("CHUNK_HEIGHT_PX", 400); err != nil {
		return nil, err
	}
	if cfg.Overscan, err = getEnvInt("OVERSCAN", 2); err != nil {
		return nil, err
	}

	debounceMs, err := getEnvInt("INTERSECTION_DEBOUNCE_MS", 80)
	if err != nil {
		return nil, err
	}
	settleMs, err := getEnvInt("SETTLE_DELAY_MS", 50)
	if err != nil {
		return nil, err
	}
	cfg.IntersectionDebounce = time.Duration(debounceMs) * time.Millisecond
	cfg.SettleDelay = time.Duration(settleMs) * time.Millisecond

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be a valid slog level: %w", err)
	}

	if cfg.TargetChunkWords <= 0 {
		return nil, fmt.Errorf("TARGET_CHUNK_WORDS must be greater than 0")
	}
	if cfg.MinChunkWords < 0 {
		return nil, fmt.Errorf("MIN_CHUNK_WORDS must not be negative")
	}
	if cfg.MinChunkWords > cfg.TargetChunkWords {
		return nil, fmt.Errorf("MIN_CHUNK_WORDS must not exceed TARGET_CHUNK_WORDS")
	}
	if cfg.ChunkHeightPx <= 0 {
		return nil, fmt.Errorf("CHUNK_HEIGHT_PX must be greater than 0")
	}
	if cfg.Overscan < 0 {
		return nil, fmt.Errorf("OVERSCAN must not be negative")
	}
	if cfg.IntersectionDebounce < 0 || cfg.SettleDelay < 0 {
		return nil, fmt.Errorf("debounce and settle delays must not be negative")
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
		cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text")
	}

	// Create the data directory if it doesn't exist (for the DB file).
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth (optional; empty disables bearer auth)
	APIKey string

	// Persistence
	StoreBackend      string // sqlite, memory or remote
	DBPath            string
	RemoteStoreURL    string
	RemoteStoreAPIKey string

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultMaxChunkChars int

	// Transform latency stats
	StatsWindow time.Duration

	// Logging
	LogLevel  slog.Level
	LogFormat string

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first; variables already set take precedence.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("API_KEY"),

		StoreBackend:      strings.ToLower(envOr("STORE_BACKEND", "sqlite")),
		DBPath:            envOr("DB_PATH", "./data/quadboard.db"),
		RemoteStoreURL:    envOr("REMOTE_STORE_URL", "http://localhost:8080"),
		RemoteStoreAPIKey: os.Getenv("REMOTE_STORE_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		DefaultMaxChunkChars: envInt("DEFAULT_MAX_CHUNK_CHARS", 700),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		LogLevel:  envLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat: strings.ToLower(envOr("LOG_FORMAT", "json")),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.DefaultMaxChunkChars <= 0 {
		cfg.DefaultMaxChunkChars = 700
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case "memory":
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite store")
		}
	case "remote":
		if c.RemoteStoreURL == "" {
			return fmt.Errorf("REMOTE_STORE_URL is required for the remote store")
		}
		if c.RemoteStoreAPIKey == "" {
			return fmt.Errorf("REMOTE_STORE_API_KEY is required for the remote store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// Logger builds the process logger from the configured format and level.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			return level
		}
	}
	return fallback
}

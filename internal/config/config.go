package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docwiki/internal/logging"
	"github.com/dgallion1/docwiki/internal/wikitext"
)

type Config struct {
	Port string

	// Auth
	DocwikiAPIKey string

	// Wikistore publishing; enabled when both are set.
	WikistoreURL    string
	WikistoreAPIKey string
	PublishPrefix   string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Rendering
	DefaultDialect string
	DialectFile    string

	// PDF
	PDFFallbackPdftotext bool

	// Logging
	LogLevel  string
	LogFormat string

	// Render latency window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocwikiAPIKey: os.Getenv("DOCWIKI_API_KEY"),

		WikistoreURL:    os.Getenv("WIKISTORE_URL"),
		WikistoreAPIKey: os.Getenv("WIKISTORE_API_KEY"),
		PublishPrefix:   envOr("PUBLISH_PREFIX", "wiki/pages"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		DefaultDialect: envOr("DEFAULT_DIALECT", "standard"),
		DialectFile:    os.Getenv("DIALECT_FILE"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// PublishEnabled reports whether rendered pages can be sent to the wikistore.
func (c Config) PublishEnabled() bool {
	return c.WikistoreURL != "" && c.WikistoreAPIKey != ""
}

func (c Config) Validate() error {
	if c.DocwikiAPIKey == "" {
		return fmt.Errorf("DOCWIKI_API_KEY is required")
	}
	// A dialect file may define the default under its own name.
	if c.DialectFile == "" {
		if _, ok := wikitext.Lookup(c.DefaultDialect); !ok {
			return fmt.Errorf("DEFAULT_DIALECT %q is not a known dialect", c.DefaultDialect)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("LOG_FORMAT: %w", err)
	}
	return nil
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

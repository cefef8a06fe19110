package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Corpus artifacts
	CorpusDir string

	// Normalization
	Language         string // ISO 639-1 code: "de", "en"
	PunktModelDir    string
	MinSentenceWords int

	// Vocabulary selection
	VocabSize       int
	IncludeNumToken bool
	CountWorkers    int
	SpillThreshold  int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CORPUSD_API_KEY"),

		CorpusDir: envOr("CORPUS_DIR", "./data"),

		Language:         envOr("LANGUAGE", "de"),
		PunktModelDir:    envOr("PUNKT_MODEL_DIR", "./models/punkt"),
		MinSentenceWords: envInt("MIN_SENTENCE_WORDS", 0),

		VocabSize:       envInt("VOCAB_SIZE", 80000),
		IncludeNumToken: envBool("INCLUDE_NUM_TOKEN", true),
		CountWorkers:    envInt("COUNT_WORKERS", 4),
		SpillThreshold:  envInt("SPILL_THRESHOLD", 1_000_000),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 16),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 2147483648), // 2GB dumps

		JobTTL: envDuration("JOB_TTL", 24*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.VocabSize <= 0 {
		cfg.VocabSize = 80000
	}
	if cfg.CountWorkers <= 0 {
		cfg.CountWorkers = 4
	}
	if cfg.SpillThreshold < 0 {
		cfg.SpillThreshold = 0
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 2147483648
	}
	if cfg.MinSentenceWords < 0 {
		cfg.MinSentenceWords = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 24 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CORPUSD_API_KEY is required")
	}
	if c.Language == "" {
		return fmt.Errorf("LANGUAGE is required")
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

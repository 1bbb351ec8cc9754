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

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxBodyBytes int64

	// Chunking defaults (per-request overridable)
	EntityContextWindow int
	EntityMergeDistance int
	MinChunkTokens      int
	MaxChunkTokens      int
	GapFillThreshold    int
	ChunkSize           int
	ChunkOverlap        int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("CHUNKD_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 33554432), // 32MB

		EntityContextWindow: envInt("ENTITY_CONTEXT_WINDOW", 400),
		EntityMergeDistance: envInt("ENTITY_MERGE_DISTANCE", 500),
		MinChunkTokens:      envInt("MIN_CHUNK_TOKENS", 200),
		MaxChunkTokens:      envInt("MAX_CHUNK_TOKENS", 1200),
		GapFillThreshold:    envInt("GAP_FILL_THRESHOLD", 1000),
		ChunkSize:           envInt("CHUNK_SIZE", 800),
		ChunkOverlap:        envInt("CHUNK_OVERLAP", 200),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 33554432
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CHUNKD_API_KEY is required")
	}
	if c.MinChunkTokens > c.MaxChunkTokens {
		return fmt.Errorf("MIN_CHUNK_TOKENS (%d) exceeds MAX_CHUNK_TOKENS (%d)",
			c.MinChunkTokens, c.MaxChunkTokens)
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

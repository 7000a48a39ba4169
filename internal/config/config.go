package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr  string
	MetricsAddr string // worker probes and metrics

	// Database
	DatabaseURL string
	DBMaxConns  int32

	// Redis (job queue and result backend)
	RedisURL  string
	ResultTTL time.Duration

	// Worker
	WorkerID          string // names this process's processing lists; must be stable across restarts
	WorkerConcurrency int
	JobTimeout        time.Duration
	CommitTimeout     time.Duration
	PollTimeout       time.Duration

	// Collection
	CollectorURL       string
	CollectorTimeout   time.Duration
	CollectConcurrency int
	CollectInterval    time.Duration // 0 disables the scheduler
	CollectMaxAge      time.Duration

	// Clustering
	ClusterSeed int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}

	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/seotrack?sslmode=disable"),
		DBMaxConns:  int32(getEnvInt("DB_MAX_CONNS", 0)),

		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ResultTTL: getEnvDuration("RESULT_TTL", 24*time.Hour),

		WorkerID:          getEnv("WORKER_ID", hostname),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		JobTimeout:        getEnvDuration("JOB_TIMEOUT", 5*time.Minute),
		CommitTimeout:     getEnvDuration("COMMIT_TIMEOUT", 10*time.Second),
		PollTimeout:       getEnvDuration("POLL_TIMEOUT", 5*time.Second),

		CollectorURL:       getEnv("COLLECTOR_URL", "http://localhost:8081"),
		CollectorTimeout:   getEnvDuration("COLLECTOR_TIMEOUT", 30*time.Second),
		CollectConcurrency: getEnvInt("COLLECT_CONCURRENCY", 3),
		CollectInterval:    getEnvDuration("COLLECT_INTERVAL", time.Hour),
		CollectMaxAge:      getEnvDuration("COLLECT_MAX_AGE", 24*time.Hour),

		ClusterSeed: int64(getEnvInt("CLUSTER_SEED", 42)),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Queue    QueueConfig
	Mirror   MirrorConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ServerConfig struct {
	Port       string
	APIPrefix  string
	CORSOrigin string
}

type AppConfig struct {
	LogLevel  string
	BatchSize int
	ChunkSize int
	UploadDir string
}

// QueueConfig configures the persistent job queue (§4.I). Host/Port are
// kept for parity with the environment surface in spec.md §6 even though
// this implementation's queue lives in the authoritative Postgres store
// rather than a separate broker. A zero Host makes the API process run
// uploads through the in-process queue instead of enqueueing them; the
// cmd/worker binary polls the Postgres queue whatever Host is set to.
type QueueConfig struct {
	Host          string
	Port          string
	Concurrency   int
	LockDuration  time.Duration
	MaxAttempts   int
	PollInterval  time.Duration
	BackoffBase   time.Duration
}

// MirrorConfig configures the advisory progress mirror (§4.H). Like the
// queue, a Host of "" selects the null (no-op) mirror.
type MirrorConfig struct {
	Host string
	Port string
}

func Load() (*Config, error) {
	batchSize, err := strconv.Atoi(getEnv("BATCH_SIZE", "10000"))
	if err != nil {
		batchSize = 10000
	}

	chunkSize, err := strconv.Atoi(getEnv("CHUNK_SIZE", "1000"))
	if err != nil {
		chunkSize = 1000
	}

	concurrency, err := strconv.Atoi(getEnv("QUEUE_CONCURRENCY", "2"))
	if err != nil {
		concurrency = 2
	}

	maxAttempts, err := strconv.Atoi(getEnv("QUEUE_MAX_ATTEMPTS", "3"))
	if err != nil {
		maxAttempts = 3
	}

	lockSeconds, err := strconv.Atoi(getEnv("QUEUE_LOCK_DURATION_SECONDS", "60"))
	if err != nil || lockSeconds < 60 {
		lockSeconds = 60
	}

	pollMs, err := strconv.Atoi(getEnv("QUEUE_POLL_INTERVAL_MS", "1000"))
	if err != nil {
		pollMs = 1000
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recon_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:       getEnv("SERVER_PORT", "8080"),
			APIPrefix:  getEnv("API_PREFIX", "/api/v1"),
			CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		},
		App: AppConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			BatchSize: batchSize,
			ChunkSize: chunkSize,
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Queue: QueueConfig{
			Host:         getEnv("QUEUE_HOST", ""),
			Port:         getEnv("QUEUE_PORT", ""),
			Concurrency:  concurrency,
			LockDuration: time.Duration(lockSeconds) * time.Second,
			MaxAttempts:  maxAttempts,
			PollInterval: time.Duration(pollMs) * time.Millisecond,
			BackoffBase:  time.Second,
		},
		Mirror: MirrorConfig{
			Host: getEnv("MIRROR_HOST", ""),
			Port: getEnv("MIRROR_PORT", ""),
		},
	}, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/logger"
)

// Module wires configuration loading into the fx dependency graph.
var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Database   DatabaseConfig
	Server     ServerConfig
	Queue      QueueConfig
	Worker     WorkerConfig
	Embeddings EmbeddingsConfig
}

// DatabaseConfig holds PostgreSQL connection settings for both the hot
// pool and the dedicated LISTEN/NOTIFY session.
type DatabaseConfig struct {
	Host           string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port           int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User           string        `env:"POSTGRES_USER" envDefault:"vectorize"`
	Password       string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database       string        `env:"POSTGRES_DB" envDefault:"vectorize"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PoolMax        int           `env:"DATABASE_POOL_MAX" envDefault:"20"`
	PoolMin        int           `env:"DATABASE_POOL_MIN" envDefault:"2"`
	MaxIdleTime    time.Duration `env:"DATABASE_POOL_IDLE_TIME" envDefault:"5m"`
	CachePoolMax   int           `env:"DATABASE_CACHE_POOL_MAX" envDefault:"2"`
	QueryDebug     bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"10s"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	Address         string        `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	NumWorkers      int           `env:"NUM_SERVER_WORKERS" envDefault:"4"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ProxyEnabled    bool          `env:"PROXY_ENABLED" envDefault:"false"`
	ProxyPort       int           `env:"VECTORIZE_PROXY_PORT" envDefault:"5433"`
}

// QueueConfig holds the durable-queue name and visibility timeout.
type QueueConfig struct {
	Name               string        `env:"QUEUE_NAME" envDefault:"vectorize_jobs"`
	VisibilityTimeout  time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT" envDefault:"300s"`
	ScanBatchSize      int           `env:"QUEUE_SCAN_BATCH_SIZE" envDefault:"10000"`
	CatalogChannelName string        `env:"CATALOG_NOTIFY_CHANNEL" envDefault:"vectorize_job_changes"`
}

// WorkerConfig controls the embedding worker's polling loop.
type WorkerConfig struct {
	PollInterval          time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	MaxRetries            int           `env:"MAX_RETRIES" envDefault:"3"`
	BatchSize             int           `env:"BATCH_SIZE" envDefault:"100"`
	Concurrency           int           `env:"WORKER_CONCURRENCY" envDefault:"8"`
	EnableAdaptiveScaling bool          `env:"ENABLE_ADAPTIVE_SCALING" envDefault:"true"`
	MinConcurrency        int           `env:"WORKER_MIN_CONCURRENCY" envDefault:"1"`
	MaxConcurrency        int           `env:"WORKER_MAX_CONCURRENCY" envDefault:"16"`
}

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	Provider        string  `env:"EMBEDDING_PROVIDER" envDefault:"noop"`
	Model           string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	Dimension       int     `env:"EMBEDDING_DIMENSION" envDefault:"768"`
	GoogleAPIKey    string  `env:"GOOGLE_API_KEY" envDefault:""`
	RequestsPerSec  float64 `env:"EMBEDDING_RATE_LIMIT_RPS" envDefault:"5"`
	MaxRetries      int     `env:"EMBEDDING_MAX_RETRIES" envDefault:"3"`
	NetworkDisabled bool    `env:"EMBEDDINGS_NETWORK_DISABLED" envDefault:"false"`
}

// UseGenAI returns true when the genai-backed provider should be used.
func (e *EmbeddingsConfig) UseGenAI() bool {
	return !e.NetworkDisabled && e.Provider == "genai" && e.GoogleAPIKey != ""
}

// NewConfig loads configuration from the environment, optionally
// preloaded from a local .env file (ignored if absent).
func NewConfig(log *slog.Logger) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("server_port", cfg.Server.Port),
		slog.String("db_host", cfg.Database.Host),
		slog.String("queue_name", cfg.Queue.Name),
		slog.String("embedding_provider", cfg.Embeddings.Provider),
	)

	return cfg, nil
}

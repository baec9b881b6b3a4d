package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"factlog.app/api/core/db"
)

type Config struct {
	OTel       OTelConfig
	Dispatch   DispatchConfig
	Encryption EncryptionConfig
	Env        string
	Port       string
	DB         db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type EncryptionConfig struct {
	// MasterKey derives a fresh per-message key for every encrypt call.
	// Must be at least 32 characters; boot fails otherwise.
	MasterKey string
}

type DispatchConfig struct {
	RedisURL    string
	RedisStream string
	RedisGroup  string
	RedisDLQ    string

	// RedisConsumer names this process within the consumer group. The
	// dispatch rate limit is enforced per process, not per group: running
	// a second worker under a different consumer name doubles the send
	// rate against Slack. Keep a single worker unless the limiter moves
	// into Redis.
	RedisConsumer string

	// MaxAttempts counts delivery tries per job before it lands in the DLQ.
	MaxAttempts int

	// BaseBackoff is the delay before attempt 2; it doubles each retry.
	BaseBackoff time.Duration

	// RateInterval is the minimum spacing between dispatched messages
	// within this worker process.
	RateInterval time.Duration
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
)

const minMasterKeyLen = 32

// Load loads configuration from environment variables.
// In development it loads service-specific .env files (.env.server,
// .env.worker), falling back to .env.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("FACTLOG_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("FACTLOG_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      os.Getenv("DATABASE_URL"),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "factlog"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Encryption: EncryptionConfig{
			MasterKey: os.Getenv("ENCRYPTION_KEY"),
		},
		Dispatch: DispatchConfig{
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisStream:   getEnv("REDIS_STREAM", "slack-dispatch"),
			RedisGroup:    getEnv("REDIS_CONSUMER_GROUP", "slack-dispatch-group"),
			RedisDLQ:      getEnv("REDIS_DLQ_STREAM", "slack-dispatch-dlq"),
			RedisConsumer: getEnv("REDIS_CONSUMER_NAME", "dispatch-worker"),
			MaxAttempts:   getEnvInt("DISPATCH_MAX_ATTEMPTS", 5),
			BaseBackoff:   getEnvDuration("DISPATCH_BASE_BACKOFF", time.Second),
			RateInterval:  getEnvDuration("DISPATCH_RATE_INTERVAL", time.Second),
		},
	}

	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.Encryption.MasterKey == "" {
		return Config{}, fmt.Errorf("ENCRYPTION_KEY is required; generate one with: openssl rand -hex 32")
	}
	if len(cfg.Encryption.MasterKey) < minMasterKeyLen {
		return Config{}, fmt.Errorf("ENCRYPTION_KEY must be at least %d characters; generate one with: openssl rand -hex 32", minMasterKeyLen)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

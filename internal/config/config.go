// Package config defines the configuration structures of the trilemma
// dashboard.  Components that own their settings (MinIO, Redis, Kafka, CORS,
// the Prometheus collector, the dataset loader and the chart) contribute
// their own structs; this package adds the switches around them, defaults and
// validation.
package config

import (
	"strings"
	"time"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/database/redis"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/dataset"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/chart"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http/middleware"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Addr                 string        `mapstructure:"addr"`
	ReadTimeout          time.Duration `mapstructure:"read_timeout"`
	WriteTimeout         time.Duration `mapstructure:"write_timeout"`
	IdleTimeout          time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown_timeout"`
	SlowRequestThreshold time.Duration `mapstructure:"slow_request_threshold"`
}

// MinIOConfig enables the object store used for minio:// dataset locations
// and chart exports.
type MinIOConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	minio.MinIOConfig `mapstructure:",squash"`
}

// RedisConfig enables the shared rate-limit backend.
type RedisConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	redis.RedisConfig `mapstructure:",squash"`
}

// KafkaConfig enables view-event publishing.
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
	Source  string `mapstructure:"source"`
	// GroupID is the consumer group of `trilemma events tail`.
	GroupID           string `mapstructure:"group_id"`
	CreateTopics      bool   `mapstructure:"create_topics"`
	NumPartitions     int    `mapstructure:"num_partitions"`
	ReplicationFactor int    `mapstructure:"replication_factor"`

	kafka.ProducerConfig `mapstructure:",squash"`
}

// Rate limit backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// RateLimitConfig selects and sizes the request rate limiter.
type RateLimitConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"` // "memory" | "redis"
	// RequestsPerSecond and Burst size the in-memory token bucket.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// Limit requests per Window are allowed by the redis backend.
	Limit     int           `mapstructure:"limit"`
	Window    time.Duration `mapstructure:"window"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// MetricsConfig enables the /metrics endpoint.
type MetricsConfig struct {
	Enabled                    bool `mapstructure:"enabled"`
	prometheus.CollectorConfig `mapstructure:",squash"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Logging converts the section into a logging.LogConfig.
func (c LogConfig) Logging() logging.LogConfig {
	lvl, _ := logging.ParseLevel(c.Level)
	return logging.LogConfig{
		Level:       lvl,
		Format:      c.Format,
		OutputPaths: c.OutputPaths,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration of the dashboard process.
type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Dataset   dataset.Config        `mapstructure:"dataset"`
	Chart     chart.Options         `mapstructure:"chart"`
	MinIO     MinIOConfig           `mapstructure:"minio"`
	Redis     RedisConfig           `mapstructure:"redis"`
	Kafka     KafkaConfig           `mapstructure:"kafka"`
	RateLimit RateLimitConfig       `mapstructure:"rate_limit"`
	CORS      middleware.CORSConfig `mapstructure:"cors"`
	Metrics   MetricsConfig         `mapstructure:"metrics"`
	Log       LogConfig             `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first problem found; callers treat any error as fatal.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		return invalid("server.shutdown_timeout must be >= 0")
	}

	// Dataset
	if strings.TrimSpace(c.Dataset.Location) == "" {
		return invalid("dataset.location is required")
	}
	loc, err := dataset.ParseLocation(c.Dataset.Location)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "config: dataset.location is invalid")
	}
	if _, err := dataset.DetectFormat(loc, c.Dataset.Format); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "config: dataset.format is invalid")
	}
	if loc.Remote() && !c.MinIO.Enabled {
		return invalid("dataset.location %q needs minio.enabled", c.Dataset.Location)
	}

	// MinIO
	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return invalid("minio.endpoint is required when minio is enabled")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.DB < 0 {
			return invalid("redis.db must be >= 0, got %d", c.Redis.DB)
		}
		switch c.Redis.Mode {
		case "", "standalone", "sentinel", "cluster":
		default:
			return invalid("redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return invalid("kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return invalid("kafka.topic is required")
		}
	}

	// Rate limit
	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case RateLimitBackendMemory:
			if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
				return invalid("rate_limit.requests_per_second and rate_limit.burst must be positive")
			}
		case RateLimitBackendRedis:
			if !c.Redis.Enabled {
				return invalid("rate_limit.backend redis needs redis.enabled")
			}
			if c.RateLimit.Limit < 1 || c.RateLimit.Window <= 0 {
				return invalid("rate_limit.limit and rate_limit.window must be positive")
			}
		default:
			return invalid("rate_limit.backend %q is invalid; expected memory|redis", c.RateLimit.Backend)
		}
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return invalid("metrics.namespace is required when metrics are enabled")
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeValidation, "config: "+format, args...)
}

//Personal.AI order the ending

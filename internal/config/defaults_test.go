package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/messaging/kafka"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultDatasetLocation, cfg.Dataset.Location)
	assert.Equal(t, kafka.TopicViewComputed, cfg.Kafka.Topic)
	assert.Equal(t, RateLimitBackendMemory, cfg.RateLimit.Backend)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, 24*time.Hour, cfg.CORS.MaxAge)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Addr = ":9999"
	cfg.Kafka.Topic = "views"
	cfg.Log.Level = "debug"
	ApplyDefaults(cfg)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "views", cfg.Kafka.Topic)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.MinIO.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending

//go:build integration

// Package integration runs the dashboard against real backing services
// started in Docker.  Tests are gated behind the "integration" build tag and
// the TRILEMMA_INTEGRATION_TEST environment variable.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/database/redis"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	objstore "github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/storage/minio"
)

const (
	// EnvIntegrationEnabled controls whether integration tests run.
	EnvIntegrationEnabled = "TRILEMMA_INTEGRATION_TEST"

	minioImage = "minio/minio:RELEASE.2024-01-16T16-07-38Z"
	redisImage = "redis:7-alpine"

	minioUser     = "trilemma"
	minioPassword = "trilemma-secret"

	// SetupTimeout bounds container startup.
	SetupTimeout = 90 * time.Second
)

// SkipIfNoIntegration skips the calling test when the integration flag is unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// startContainer launches req and returns host:port of its first exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), SetupTimeout)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// StartMinIO runs a single-node MinIO server and returns a connected client.
func StartMinIO(t *testing.T) (*objstore.MinIOClient, *objstore.MinIOConfig) {
	t.Helper()
	endpoint := startContainer(t, testcontainers.ContainerRequest{
		Image:        minioImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(SetupTimeout),
	}, "9000")

	cfg := &objstore.MinIOConfig{
		Endpoint:        endpoint,
		AccessKeyID:     minioUser,
		SecretAccessKey: minioPassword,
		ExportBucket:    "trilemma-exports",
	}
	client, err := objstore.NewMinIOClient(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, cfg
}

// StartRedis runs a Redis server and returns a connected client.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(SetupTimeout),
	}, "6379")

	client, err := redis.NewClient(&redis.RedisConfig{Addr: addr}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

//Personal.AI order the ending

package cache

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if os.Getenv("BFF_SKIP_INTEGRATION_TESTS") != "" {
		t.Skip("skipping integration tests")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.4-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})
	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedisCache(t *testing.T) {
	// given
	addr := startRedis(t)
	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr, Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisCache(client, time.Second)
	entry := Entry{
		Status:   http.StatusOK,
		Header:   http.Header{"Content-Type": {"application/json"}},
		Body:     []byte(`[{"id":"1"}]`),
		StoredAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	// when
	_, hitBefore, err := c.Get(ctx, "products-?")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "products-?", entry))
	got, hit, err := c.Get(ctx, "products-?")

	// then
	require.NoError(t, err)
	assert.False(t, hitBefore)
	assert.True(t, hit)
	assert.Equal(t, entry.Status, got.Status)
	assert.Equal(t, entry.Header, got.Header)
	assert.Equal(t, entry.Body, got.Body)
	assert.True(t, entry.StoredAt.Equal(got.StoredAt))

	// expires with the configured ttl
	assert.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, "products-?")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

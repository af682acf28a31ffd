package testsupport

import (
	"context"
	"testing"

	"lungrisk/internal/adapters/redis"
)

// NewTestRedis creates a redis client for integration tests. Skipped without REDIS_HOST.
func NewTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client, err := redis.NewClient(context.Background(), RedisConfigFromEnv(t))
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}

package testsupport

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"lungrisk/internal/adapters/config"
)

// PostgresConfigFromEnv reads the PostgreSQL settings for integration tests.
// The test is skipped when required environment variables are missing.
func PostgresConfigFromEnv(t *testing.T) config.PostgresConfig {
	t.Helper()

	requireEnv(t, "POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")

	return config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     intValue("POSTGRES_PORT", 5432),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: os.Getenv("POSTGRES_DB"),
		SSLMode:  valueWithDefault("POSTGRES_SSL_MODE", "disable"),
		MaxConns: 5,
	}
}

// RedisConfigFromEnv reads the Redis settings for integration tests.
func RedisConfigFromEnv(t *testing.T) config.RedisConfig {
	t.Helper()

	requireEnv(t, "REDIS_HOST")

	return config.RedisConfig{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     intValue("REDIS_PORT", 6379),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intValue("REDIS_DB", 0),
	}
}

func requireEnv(t *testing.T, keys ...string) {
	t.Helper()

	missing := make([]string, 0)
	for _, key := range keys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		t.Skipf("integration environment missing, set %v to run", missing)
	}
}

func valueWithDefault(key string, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func intValue(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		_, err := fmt.Sscanf(val, "%d", &parsed)
		if err == nil {
			return parsed
		}
	}

	return fallback
}

// KafkaBrokersFromEnv returns KAFKA_BROKERS split on commas.
func KafkaBrokersFromEnv(t *testing.T) []string {
	t.Helper()

	requireEnv(t, "KAFKA_BROKERS")

	return strings.Split(os.Getenv("KAFKA_BROKERS"), ",")
}

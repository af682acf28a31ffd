package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lungrisk/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, int64(16<<20), cfg.HTTP.MaxUploadBytes)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "random_forest", cfg.Models.DefaultModel)
	assert.Equal(t, "static/annotated_svgs", cfg.Storage.UploadFolder)
	assert.Equal(t, 30*time.Second, cfg.Redis.StatsCacheTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"},
			HTTP:     HTTPConfig{MaxUploadBytes: 1},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Database.Driver = "mysql"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	cfg = base()
	cfg.Database.Driver = DriverPostgres
	assert.Error(t, cfg.Validate())
	cfg.Postgres.User = "app"
	cfg.Postgres.Database = "lungrisk"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.ErrorTracking.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
}

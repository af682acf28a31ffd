package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"lungrisk/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Postgres      PostgresConfig
	Models        ModelsConfig
	Storage       StorageConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"lungrisk"`
	Version  string `envconfig:"APP_VERSION" default:"1.0.0"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	LogFile       string `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"28"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"HTTP_PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"16777216"` // 16 MiB
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`

	// RateLimitRPS of 0 disables the limiter.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite3"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"lung_cancer_predictions.db"`
}

// PostgresConfig is only consulted when DB_DRIVER=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ModelsConfig struct {
	Path         string `envconfig:"ML_MODELS_PATH" default:"models"`
	DefaultModel string `envconfig:"DEFAULT_MODEL" default:"random_forest"`

	// ONNX runtime settings. Names default to what skl2onnx emits for sklearn classifiers.
	ONNXRuntimeLib  string `envconfig:"ONNX_RUNTIME_LIB"`
	ONNXInputName   string `envconfig:"ONNX_INPUT_NAME" default:"float_input"`
	ONNXLabelOutput string `envconfig:"ONNX_LABEL_OUTPUT" default:"output_label"`
	ONNXProbaOutput string `envconfig:"ONNX_PROBA_OUTPUT" default:"output_probability"`
	WarmupOnStartup bool   `envconfig:"MODELS_WARMUP" default:"true"`
}

type StorageConfig struct {
	UploadFolder string `envconfig:"UPLOAD_FOLDER" default:"static/annotated_svgs"`
}

// RedisConfig is optional; an empty host disables the charts cache.
type RedisConfig struct {
	Host          string        `envconfig:"REDIS_HOST"`
	Port          int           `envconfig:"REDIS_PORT" default:"6379"`
	Password      string        `envconfig:"REDIS_PASSWORD"`
	DB            int           `envconfig:"REDIS_DB" default:"0"`
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig is optional; no brokers disables event publishing.
type KafkaConfig struct {
	Brokers          []string `envconfig:"KAFKA_BROKERS"`
	PredictionsTopic string   `envconfig:"KAFKA_PREDICTIONS_TOPIC" default:"predictions.logged"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.NewValidationError("SQLITE_PATH", "SQLITE_PATH is required for sqlite3", "")
		}
	case DriverPostgres:
		if c.Postgres.User == "" || c.Postgres.Database == "" {
			return errors.NewValidationError("POSTGRES_USER", "POSTGRES_USER and POSTGRES_DB are required for postgres", "")
		}
	default:
		return errors.NewValidationError("DB_DRIVER", fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver), c.Database.Driver)
	}

	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.NewValidationError("MAX_UPLOAD_BYTES", "MAX_UPLOAD_BYTES must be positive", c.HTTP.MaxUploadBytes)
	}
	if c.ErrorTracking.Enabled && c.ErrorTracking.SentryDSN == "" {
		return errors.NewValidationError("SENTRY_DSN", "SENTRY_DSN is required when error tracking is enabled", "")
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"lungrisk/internal/adapters/config"
	"lungrisk/pkg/errors"
)

// Client wraps sqlx.DB for the prediction log database
type Client struct {
	db     *sqlx.DB
	driver string
}

// NewClient opens the database selected by cfg.Database.Driver
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.Postgres)
	case config.DriverSQLite:
		return NewSQLite(ctx, cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// NewPostgres creates a PostgreSQL client with connection pooling
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, config.DriverPostgres, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns / 2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return &Client{db: db, driver: config.DriverPostgres}, nil
}

// NewSQLite opens (and creates if needed) an SQLite database file.
// ":memory:" gives a private in-memory database.
func NewSQLite(ctx context.Context, path string) (*Client, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sqlx.ConnectContext(ctx, config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	return &Client{db: db, driver: config.DriverSQLite}, nil
}

// DB returns the underlying sqlx.DB instance
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Driver returns the driver name, one of config.DriverSQLite or config.DriverPostgres
func (c *Client) Driver() string {
	return c.driver
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health checks database connectivity. Failures wrap errors.ErrUnavailable.
func (c *Client) Health(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Join(errors.ErrUnavailable, err)
	}
	return nil
}

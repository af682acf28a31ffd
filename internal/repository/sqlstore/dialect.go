package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"lungrisk/internal/metrics"
	"lungrisk/pkg/errors"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

var schemas = map[string][]string{
	driverSQLite: {
		`CREATE TABLE IF NOT EXISTS prediction_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			model_name TEXT NOT NULL,
			input_features TEXT NOT NULL,
			prediction_result TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			probability_yes REAL NOT NULL,
			probability_no REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_logs_created_at ON prediction_logs (created_at)`,
	},
	driverPostgres: {
		`CREATE TABLE IF NOT EXISTS prediction_logs (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			model_name VARCHAR(50) NOT NULL,
			input_features JSONB NOT NULL,
			prediction_result VARCHAR(10) NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			probability_yes DOUBLE PRECISION NOT NULL,
			probability_no DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_logs_created_at ON prediction_logs (created_at)`,
	},
}

// dayExpr renders created_at as a UTC YYYY-MM-DD string.
func dayExpr(driver string) string {
	if driver == driverPostgres {
		return `TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')`
	}
	return `strftime('%Y-%m-%d', created_at)`
}

// Migrate creates the prediction log table if it does not exist.
func Migrate(ctx context.Context, db DBTX) error {
	stmts, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate prediction_logs: %w", err)
		}
	}
	return nil
}

// observe records the query and marks connection-level failures as ErrUnavailable.
func observe(db DBTX, operation string, start time.Time, err *error) {
	if unreachable(*err) {
		*err = errors.Join(errors.ErrUnavailable, *err)
	}
	metrics.RecordDBQuery(db.DriverName(), operation, time.Since(start), *err)
}

func unreachable(err error) bool {
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded)
}

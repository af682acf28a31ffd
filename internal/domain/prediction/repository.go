package prediction

import (
	"context"
)

// Repository defines the interface for prediction log access
type Repository interface {
	// Append stores a record and sets its ID. Nothing is stored on error.
	Append(ctx context.Context, record *LogRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]LogRecord, error)
	Count(ctx context.Context) (int64, error)
}

package sqlstore

import (
	"context"
	"time"

	"lungrisk/internal/domain/prediction"
)

// Compile-time check
var _ prediction.Repository = (*PredictionRepository)(nil)

// PredictionRepository implements prediction.Repository using sqlx
type PredictionRepository struct {
	db DBTX
}

// NewPredictionRepository creates a new prediction log repository
func NewPredictionRepository(db DBTX) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Append inserts a record in a single statement and stores the assigned ID on it.
func (r *PredictionRepository) Append(ctx context.Context, rec *prediction.LogRecord) (err error) {
	defer observe(r.db, "append", time.Now(), &err)

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Microsecond)

	query := r.db.Rebind(`
		INSERT INTO prediction_logs (
			created_at, model_name, input_features, prediction_result,
			confidence_score, probability_yes, probability_no
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err = r.db.GetContext(ctx, &id, query,
		rec.CreatedAt, rec.ModelName, rec.InputFeatures, string(rec.PredictionResult),
		rec.ConfidenceScore, rec.ProbabilityYes, rec.ProbabilityNo,
	)
	if err != nil {
		return err
	}

	rec.ID = id
	return nil
}

// Recent returns the newest records first
func (r *PredictionRepository) Recent(ctx context.Context, limit int) (records []prediction.LogRecord, err error) {
	defer observe(r.db, "recent", time.Now(), &err)

	query := r.db.Rebind(`
		SELECT id, created_at, model_name, input_features, prediction_result,
			confidence_score, probability_yes, probability_no
		FROM prediction_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	records = make([]prediction.LogRecord, 0, limit)
	if err = r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].CreatedAt = records[i].CreatedAt.UTC()
	}
	return records, nil
}

// Count returns the number of stored records
func (r *PredictionRepository) Count(ctx context.Context) (n int64, err error) {
	defer observe(r.db, "count", time.Now(), &err)

	err = r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prediction_logs`)
	return n, err
}

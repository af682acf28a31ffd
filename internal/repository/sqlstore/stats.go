package sqlstore

import (
	"context"
	"time"

	"lungrisk/internal/domain/stats"
)

// Compile-time check
var _ stats.Repository = (*StatsRepository)(nil)

// StatsRepository runs aggregate queries over prediction_logs
type StatsRepository struct {
	db DBTX
}

// NewStatsRepository creates a new statistics repository
func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals counts all records and splits them by label
func (r *StatsRepository) Totals(ctx context.Context) (t stats.Totals, err error) {
	defer observe(r.db, "totals", time.Now(), &err)

	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN prediction_result = 'YES' THEN 1 ELSE 0 END), 0) AS high_risk,
			COALESCE(SUM(CASE WHEN prediction_result = 'NO' THEN 1 ELSE 0 END), 0) AS low_risk
		FROM prediction_logs`

	err = r.db.GetContext(ctx, &t, query)
	return t, err
}

// ModelUsage counts records per model, most used first
func (r *StatsRepository) ModelUsage(ctx context.Context) (usage []stats.ModelUsage, err error) {
	defer observe(r.db, "model_usage", time.Now(), &err)

	query := `
		SELECT model_name, COUNT(*) AS cnt
		FROM prediction_logs
		GROUP BY model_name
		ORDER BY cnt DESC, model_name`

	usage = []stats.ModelUsage{}
	err = r.db.SelectContext(ctx, &usage, query)
	return usage, err
}

// Daily groups records by UTC calendar day, newest day first
func (r *StatsRepository) Daily(ctx context.Context, since time.Time) (rows []stats.DailyRow, err error) {
	defer observe(r.db, "daily", time.Now(), &err)

	query := r.db.Rebind(`
		SELECT
			` + dayExpr(r.db.DriverName()) + ` AS day,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN prediction_result = 'YES' THEN 1 ELSE 0 END), 0) AS high_risk,
			COALESCE(SUM(CASE WHEN prediction_result = 'NO' THEN 1 ELSE 0 END), 0) AS low_risk
		FROM prediction_logs
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`)

	rows = []stats.DailyRow{}
	err = r.db.SelectContext(ctx, &rows, query, since.UTC())
	return rows, err
}

// CountConfidence counts records whose confidence falls in [low, high), or [low, high] when closed
func (r *StatsRepository) CountConfidence(ctx context.Context, low, high float64, closed bool) (n int64, err error) {
	defer observe(r.db, "confidence_bucket", time.Now(), &err)

	upper := "confidence_score < ?"
	if closed {
		upper = "confidence_score <= ?"
	}
	query := r.db.Rebind(`SELECT COUNT(*) FROM prediction_logs WHERE confidence_score >= ? AND ` + upper)

	err = r.db.GetContext(ctx, &n, query, low, high)
	return n, err
}

// AverageConfidence returns the mean confidence per label, 0 for labels without records
func (r *StatsRepository) AverageConfidence(ctx context.Context) (a stats.Averages, err error) {
	defer observe(r.db, "average_confidence", time.Now(), &err)

	query := `
		SELECT
			COALESCE(AVG(CASE WHEN prediction_result = 'YES' THEN confidence_score END), 0) AS avg_high,
			COALESCE(AVG(CASE WHEN prediction_result = 'NO' THEN confidence_score END), 0) AS avg_low
		FROM prediction_logs`

	err = r.db.GetContext(ctx, &a, query)
	return a, err
}

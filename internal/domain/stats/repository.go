package stats

import (
	"context"
	"time"
)

// Totals are raw counts over the log.
type Totals struct {
	Total    int64 `db:"total"`
	HighRisk int64 `db:"high_risk"`
	LowRisk  int64 `db:"low_risk"`
}

// Averages are mean confidences per label; zero when a label has no records.
type Averages struct {
	HighRisk float64 `db:"avg_high"`
	LowRisk  float64 `db:"avg_low"`
}

// Repository exposes read-only aggregates over the prediction log.
type Repository interface {
	Totals(ctx context.Context) (Totals, error)
	ModelUsage(ctx context.Context) ([]ModelUsage, error)
	// Daily groups records created at or after since by UTC date, newest first.
	Daily(ctx context.Context, since time.Time) ([]DailyRow, error)
	// CountConfidence counts records with low <= score < high, or score <= high when closed.
	CountConfidence(ctx context.Context, low, high float64, closed bool) (int64, error)
	AverageConfidence(ctx context.Context) (Averages, error)
}

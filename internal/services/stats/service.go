package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/domain/stats"
	"lungrisk/internal/metrics"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

// DailyWindow is the trailing window of the daily series.
const DailyWindow = 30 * 24 * time.Hour

const chartsCacheKey = "lungrisk:stats:charts"

// Cache stores JSON values. *redis.Client implements it; a miss wraps errors.ErrNotFound.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service computes aggregate statistics over the prediction log.
type Service struct {
	repo     stats.Repository
	cache    Cache
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches the charts payload for ttl. The entry is dropped whenever a prediction is logged.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a statistics service.
func NewService(repo stats.Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  logger.Get().With("component", "stats_service"),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary counts predictions by label. The percentage is 0 for an empty log.
func (s *Service) Summary(ctx context.Context) (stats.Summary, error) {
	t, err := s.repo.Totals(ctx)
	if err != nil {
		return stats.Summary{}, internal(err, "summary")
	}
	return stats.Summary{
		TotalPredictions:    t.Total,
		HighRiskPredictions: t.HighRisk,
		LowRiskPredictions:  t.LowRisk,
		HighRiskPercentage:  percent(t.HighRisk, t.Total),
	}, nil
}

// ModelUsage counts predictions per model.
func (s *Service) ModelUsage(ctx context.Context) ([]stats.ModelUsage, error) {
	usage, err := s.repo.ModelUsage(ctx)
	if err != nil {
		return nil, internal(err, "model usage")
	}
	return usage, nil
}

// DailySeries groups the trailing window by UTC date, newest first.
func (s *Service) DailySeries(ctx context.Context, window time.Duration) ([]stats.DailyPoint, error) {
	rows, err := s.repo.Daily(ctx, s.now().Add(-window))
	if err != nil {
		return nil, internal(err, "daily series")
	}

	points := make([]stats.DailyPoint, 0, len(rows))
	for _, r := range rows {
		day, err := time.Parse("2006-01-02", r.Day)
		if err != nil {
			return nil, internal(err, "daily series date")
		}
		points = append(points, stats.DailyPoint{
			Date:     day.Format("2006-01-02T15:04:05"),
			Total:    r.Total,
			HighRisk: r.HighRisk,
			LowRisk:  r.LowRisk,
		})
	}
	return points, nil
}

// ConfidenceHistogram counts predictions per fixed confidence bucket.
// Buckets are half-open except the last, which includes 1.0.
func (s *Service) ConfidenceHistogram(ctx context.Context) ([]stats.HistogramBin, error) {
	bins := make([]stats.HistogramBin, 0, len(stats.ConfidenceBuckets))
	for i, b := range stats.ConfidenceBuckets {
		closed := i == len(stats.ConfidenceBuckets)-1
		n, err := s.repo.CountConfidence(ctx, b.Low, b.High, closed)
		if err != nil {
			return nil, internal(err, "confidence histogram")
		}
		bins = append(bins, stats.HistogramBin{Range: b.Label(), Count: n})
	}
	return bins, nil
}

// Basic returns counts, shares and average confidence per label.
func (s *Service) Basic(ctx context.Context) (stats.Basic, error) {
	t, err := s.repo.Totals(ctx)
	if err != nil {
		return stats.Basic{}, internal(err, "basic stats")
	}
	avg, err := s.repo.AverageConfidence(ctx)
	if err != nil {
		return stats.Basic{}, internal(err, "average confidence")
	}

	return stats.Basic{
		TotalPredictions:  t.Total,
		PredictionsByRisk: stats.RiskCounts{HighRisk: t.HighRisk, LowRisk: t.LowRisk},
		RiskPercentages: stats.RiskPercentages{
			HighRiskPercent: percent(t.HighRisk, t.Total),
			LowRiskPercent:  percent(t.LowRisk, t.Total),
		},
		AverageConfidence: stats.AverageConfidence{
			HighRisk: round(avg.HighRisk, 3),
			LowRisk:  round(avg.LowRisk, 3),
		},
	}, nil
}

// Charts bundles every series, served from the cache when configured.
func (s *Service) Charts(ctx context.Context) (*stats.Charts, error) {
	if s.cache != nil {
		var cached stats.Charts
		err := s.cache.Get(ctx, chartsCacheKey, &cached)
		switch {
		case err == nil:
			metrics.StatsCache.WithLabelValues("hit").Inc()
			return &cached, nil
		case errors.Is(err, errors.ErrNotFound):
			metrics.StatsCache.WithLabelValues("miss").Inc()
		default:
			metrics.StatsCache.WithLabelValues("error").Inc()
			s.log.Warnw("Charts cache read failed", "error", err)
		}
	}

	charts, err := s.buildCharts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, chartsCacheKey, charts, s.cacheTTL); err != nil {
			s.log.Warnw("Charts cache write failed", "error", err)
		}
	}
	return charts, nil
}

func (s *Service) buildCharts(ctx context.Context) (*stats.Charts, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := s.ModelUsage(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.DailySeries(ctx, DailyWindow)
	if err != nil {
		return nil, err
	}
	hist, err := s.ConfidenceHistogram(ctx)
	if err != nil {
		return nil, err
	}

	return &stats.Charts{
		Summary:                summary,
		ModelUsage:             usage,
		DailyPredictions:       daily,
		ConfidenceDistribution: hist,
		GeneratedAt:            s.now(),
	}, nil
}

// PredictionLogged drops the cached charts so the next read sees the new record.
func (s *Service) PredictionLogged(ctx context.Context, rec *prediction.LogRecord) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, chartsCacheKey)
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func internal(err error, what string) error {
	return errors.Join(errors.ErrInternal, errors.Wrap(err, what))
}

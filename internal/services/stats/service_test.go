package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/repository/sqlstore"
	"lungrisk/internal/testsupport"
	"lungrisk/pkg/errors"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	preds *sqlstore.PredictionRepository
	repo  *sqlstore.StatsRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testsupport.NewTestSQLite(t).DB()
	require.NoError(t, sqlstore.Migrate(context.Background(), db))
	return fixture{
		preds: sqlstore.NewPredictionRepository(db),
		repo:  sqlstore.NewStatsRepository(db),
	}
}

func (f fixture) add(t *testing.T, model string, label prediction.Label, confidence float64, at time.Time) {
	t.Helper()
	rec := &prediction.LogRecord{
		CreatedAt:        at,
		ModelName:        model,
		InputFeatures:    prediction.Features{"AGE": 40},
		PredictionResult: label,
		ConfidenceScore:  confidence,
		ProbabilityYes:   confidence,
		ProbabilityNo:    1 - confidence,
	}
	require.NoError(t, f.preds.Append(context.Background(), rec))
}

// memoryCache is an in-process stand-in for the Redis client.
type memoryCache struct {
	data    map[string][]byte
	sets    int
	deletes int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.failGet {
		return fmt.Errorf("connection refused")
	}
	raw, ok := c.data[key]
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.deletes++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestSummaryOnEmptyLog(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.repo, WithClock(func() time.Time { return now }))

	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.TotalPredictions)
	assert.Zero(t, s.HighRiskPercentage)

	basic, err := svc.Basic(context.Background())
	require.NoError(t, err)
	assert.Zero(t, basic.RiskPercentages.HighRiskPercent)
	assert.Zero(t, basic.RiskPercentages.LowRiskPercent)
	assert.Zero(t, basic.AverageConfidence.HighRisk)
}

func TestSummaryPercentage(t *testing.T) {
	f := newFixture(t)
	f.add(t, "svm", prediction.LabelYes, 0.5, now)
	f.add(t, "svm", prediction.LabelNo, 0.5, now)
	f.add(t, "svm", prediction.LabelNo, 0.5, now)
	f.add(t, "svm", prediction.LabelNo, 0.5, now)

	svc := NewService(f.repo)
	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.TotalPredictions)
	assert.Equal(t, int64(1), s.HighRiskPredictions)
	assert.Equal(t, 25.0, s.HighRiskPercentage)
}

func TestDailySeriesWindow(t *testing.T) {
	f := newFixture(t)
	f.add(t, "knn", prediction.LabelYes, 0.9, now.Add(-1*time.Hour))
	f.add(t, "knn", prediction.LabelNo, 0.8, now.Add(-26*time.Hour))
	f.add(t, "knn", prediction.LabelYes, 0.8, now.Add(-29*24*time.Hour))
	f.add(t, "knn", prediction.LabelYes, 0.8, now.Add(-31*24*time.Hour))

	svc := NewService(f.repo, WithClock(func() time.Time { return now }))
	points, err := svc.DailySeries(context.Background(), DailyWindow)
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, "2024-06-15T00:00:00", points[0].Date)
	assert.Equal(t, "2024-06-14T00:00:00", points[1].Date)
	assert.Equal(t, "2024-05-17T00:00:00", points[2].Date)
	assert.Equal(t, int64(1), points[0].HighRisk)
	assert.Equal(t, int64(1), points[1].LowRisk)
}

func TestConfidenceHistogram(t *testing.T) {
	f := newFixture(t)
	for _, c := range []float64{0.5, 0.6, 0.6, 0.75, 0.95, 1.0, 0.3} {
		f.add(t, "random_forest", prediction.LabelYes, c, now)
	}

	svc := NewService(f.repo)
	bins, err := svc.ConfidenceHistogram(context.Background())
	require.NoError(t, err)

	require.Len(t, bins, 5)
	got := map[string]int64{}
	for _, b := range bins {
		got[b.Range] = b.Count
	}
	assert.Equal(t, map[string]int64{
		"0.5-0.6": 1,
		"0.6-0.7": 2,
		"0.7-0.8": 1,
		"0.8-0.9": 0,
		"0.9-1.0": 2,
	}, got)
	assert.Equal(t, "0.5-0.6", bins[0].Range)
}

func TestBasicRoundsAverages(t *testing.T) {
	f := newFixture(t)
	f.add(t, "svm", prediction.LabelYes, 0.61234, now)
	f.add(t, "svm", prediction.LabelYes, 0.7, now)
	f.add(t, "svm", prediction.LabelNo, 0.5, now)

	svc := NewService(f.repo)
	b, err := svc.Basic(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), b.TotalPredictions)
	assert.Equal(t, int64(2), b.PredictionsByRisk.HighRisk)
	assert.InDelta(t, 66.6667, b.RiskPercentages.HighRiskPercent, 1e-3)
	assert.Equal(t, 0.656, b.AverageConfidence.HighRisk)
	assert.Equal(t, 0.5, b.AverageConfidence.LowRisk)
}

func TestChartsCacheAndInvalidation(t *testing.T) {
	f := newFixture(t)
	f.add(t, "svm", prediction.LabelYes, 0.7, now)

	cache := newMemoryCache()
	svc := NewService(f.repo, WithCache(cache, time.Minute), WithClock(func() time.Time { return now }))

	first, err := svc.Charts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Summary.TotalPredictions)
	assert.Equal(t, 1, cache.sets)

	// A new record is invisible until the cache entry is dropped.
	f.add(t, "svm", prediction.LabelNo, 0.9, now)
	cached, err := svc.Charts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Summary.TotalPredictions)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, svc.PredictionLogged(context.Background(), &prediction.LogRecord{}))
	fresh, err := svc.Charts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Summary.TotalPredictions)
	assert.Len(t, fresh.ModelUsage, 1)
	assert.Len(t, fresh.ConfidenceDistribution, 5)
	assert.Len(t, fresh.DailyPredictions, 1)
}

func TestChartsCacheErrorFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	cache := newMemoryCache()
	cache.failGet = true

	svc := NewService(f.repo, WithCache(cache, time.Minute))
	charts, err := svc.Charts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, charts.Summary.TotalPredictions)
	assert.NotNil(t, charts.ModelUsage)
}

func TestPredictionLoggedWithoutCache(t *testing.T) {
	svc := NewService(newFixture(t).repo)
	assert.NoError(t, svc.PredictionLogged(context.Background(), &prediction.LogRecord{}))
}

package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/testsupport"
)

func TestPostgresRoundTrip(t *testing.T) {
	db := testsupport.NewTestPostgres(t).DB()
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	preds := NewPredictionRepository(db)
	statsRepo := NewStatsRepository(db)

	at := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	rec := record("random_forest", prediction.LabelYes, 0.75, at)
	require.NoError(t, preds.Append(ctx, rec))
	assert.Positive(t, rec.ID)

	got, err := preds.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.True(t, at.Equal(got[0].CreatedAt))
	assert.Equal(t, rec.InputFeatures, got[0].InputFeatures)

	daily, err := statsRepo.Daily(ctx, at.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-05-01", daily[0].Day)

	n, err := statsRepo.CountConfidence(ctx, 0.7, 0.8, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

package bootstrap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lungrisk/internal/ml"
	"lungrisk/internal/testsupport"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

type flushTracker struct {
	err     error
	flushed bool
}

func (f *flushTracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	return nil
}

func (f *flushTracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	return nil
}

func (f *flushTracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
}

func (f *flushTracker) Flush(ctx context.Context) error {
	f.flushed = true
	return f.err
}

func TestShutdownClosesEverything(t *testing.T) {
	db := testsupport.NewTestSQLite(t)
	tracker := &flushTracker{}
	c := &Container{
		Log:          logger.New(zap.NewNop()),
		ErrorTracker: tracker,
		DB:           db,
		Models:       ml.NewStaticCache(),
	}

	require.NoError(t, NewLifecycle(time.Second).Shutdown(c))
	assert.True(t, tracker.flushed)
	assert.True(t, errors.Is(db.Health(context.Background()), errors.ErrUnavailable))
}

func TestShutdownCollectsStepErrors(t *testing.T) {
	db := testsupport.NewTestSQLite(t)
	flushErr := fmt.Errorf("sentry transport down")
	c := &Container{
		Log:          logger.New(zap.NewNop()),
		ErrorTracker: &flushTracker{err: flushErr},
		DB:           db,
	}

	err := NewLifecycle(time.Second).Shutdown(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, flushErr))
	assert.Contains(t, err.Error(), "error tracker flush")

	// Later steps still ran.
	assert.Error(t, db.Health(context.Background()))
}

func TestNewLifecycleDefaultsTimeout(t *testing.T) {
	assert.Equal(t, 15*time.Second, NewLifecycle(0).shutdownTimeout)
}

package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lungrisk/pkg/errors"
)

type recordingTracker struct {
	captured    []error
	messages    []string
	levels      []errors.Level
	breadcrumbs []string
}

func (r *recordingTracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	r.captured = append(r.captured, err)
	return nil
}

func (r *recordingTracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	r.messages = append(r.messages, message)
	r.levels = append(r.levels, level)
	return nil
}

func (r *recordingTracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
	r.breadcrumbs = append(r.breadcrumbs, category+": "+message)
}

func (r *recordingTracker) Flush(ctx context.Context) error { return nil }

func TestErrorForwardsToTracker(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core))
	tracker := &recordingTracker{}
	l.errorTracker = tracker

	l.Errorf("store failed: %s", "boom")
	l.Info("not tracked")

	require.Len(t, tracker.captured, 1)
	assert.Contains(t, tracker.captured[0].Error(), "store failed: boom")
	assert.Equal(t, 2, logs.Len())
}

func TestWithKeepsTracker(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracker := &recordingTracker{}
	l := New(zap.New(core))
	l.errorTracker = tracker

	child := l.With("component", "test")
	child.Error("x")

	assert.Len(t, tracker.captured, 1)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "test", logs.All()[0].ContextMap()["component"])
}

func TestReportWarningSendsTrackerMessage(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracker := &recordingTracker{}
	l := New(zap.New(core))
	l.errorTracker = tracker

	ctx := errors.WithRequestID(context.Background(), "req-1")
	l.ReportWarning(ctx, "No ML models loaded at startup", map[string]string{"component": "model_cache"})

	assert.Equal(t, []string{"No ML models loaded at startup"}, tracker.messages)
	assert.Equal(t, []errors.Level{errors.LevelWarning}, tracker.levels)
	assert.Empty(t, tracker.captured)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}

func TestBreadcrumbWithoutTracker(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core))

	l.Breadcrumb(context.Background(), "annotation", "scan.svg", nil)
	assert.Equal(t, 1, logs.Len())

	tracker := &recordingTracker{}
	l.errorTracker = tracker
	l.Breadcrumb(context.Background(), "annotation", "scan.svg", map[string]interface{}{"bytes": 10})
	assert.Equal(t, []string{"annotation: scan.svg"}, tracker.breadcrumbs)
}

func TestInitWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(Options{Level: "debug", Env: "production", File: path}))
	t.Cleanup(func() { globalLogger = nil })

	Infof("hello %s", "file")
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

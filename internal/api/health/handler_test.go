package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lungrisk/pkg/logger"
)

type staticModels []string

func (s staticModels) Available() []string { return s }

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Health(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestAPIHealth(t *testing.T) {
	h := New(logger.New(zap.NewNop()), staticModels{"random_forest", "svm"}, nil, "lungrisk", "1.0.0")

	rec, body := serve(t, h, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Lung Cancer Prediction API is running", body["message"])
	assert.Equal(t, []interface{}{"random_forest", "svm"}, body["available_models"])
}

func TestAPIHealthWithoutModels(t *testing.T) {
	h := New(logger.New(zap.NewNop()), staticModels(nil), nil, "lungrisk", "1.0.0")

	_, body := serve(t, h, "/api/health")
	assert.Equal(t, []interface{}{}, body["available_models"])
}

func TestReadiness(t *testing.T) {
	ok := checkerFunc(func(ctx context.Context) error { return nil })
	down := checkerFunc(func(ctx context.Context) error { return fmt.Errorf("connection refused") })
	log := logger.New(zap.NewNop())

	h := New(log, staticModels{"svm"}, map[string]Checker{"database": ok, "redis": nil}, "lungrisk", "1.0.0")
	rec, body := serve(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Len(t, body["checks"], 1)

	h = New(log, staticModels(nil), map[string]Checker{"database": ok}, "lungrisk", "1.0.0")
	rec, body = serve(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body["status"])

	h = New(log, staticModels{"svm"}, map[string]Checker{"database": down}, "lungrisk", "1.0.0")
	rec, body = serve(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "connection refused", checks["database"].(map[string]interface{})["error"])
}

func TestLiveness(t *testing.T) {
	h := New(logger.New(zap.NewNop()), staticModels(nil), nil, "lungrisk", "1.0.0")
	rec, body := serve(t, h, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])
}

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/domain/stats"
	"lungrisk/internal/services/annotation"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

type MockPredictions struct {
	mock.Mock
}

func (m *MockPredictions) Predict(ctx context.Context, raw interface{}, modelName string) (*prediction.Result, error) {
	args := m.Called(ctx, raw, modelName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prediction.Result), args.Error(1)
}

func (m *MockPredictions) History(ctx context.Context, limit int) (*prediction.History, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prediction.History), args.Error(1)
}

func (m *MockPredictions) AvailableModels() []string { return []string{"svm"} }
func (m *MockPredictions) DefaultModel() string      { return "random_forest" }

type failingStats struct{}

func (failingStats) Charts(ctx context.Context) (*stats.Charts, error) {
	return nil, errors.Join(errors.ErrInternal, fmt.Errorf("database is locked"))
}

func (failingStats) Basic(ctx context.Context) (stats.Basic, error) {
	return stats.Basic{}, errors.Join(errors.ErrInternal, fmt.Errorf("database is locked"))
}

type noDocuments struct{}

func (noDocuments) ProcessBatch(ctx context.Context, docs []annotation.Document, model string) []annotation.Outcome {
	return nil
}

func (noDocuments) Open(name string) (*os.File, error) {
	return nil, errors.Wrap(errors.ErrNotFound, name)
}

func newMux(p PredictionService) *http.ServeMux {
	h := NewHandler(p, failingStats{}, noDocuments{}, Options{ServiceName: "test"}, logger.New(zap.NewNop()))
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPredictServerError(t *testing.T) {
	p := new(MockPredictions)
	p.On("Predict", mock.Anything, mock.Anything, "").
		Return(nil, errors.Join(errors.ErrInternal, fmt.Errorf("disk I/O error"))).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"features": {}}`))
	newMux(p).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(decode(t, rec)["error"].(string), "Prediction failed: "))
	p.AssertExpectations(t)
}

func TestPredictRejectsNonStringModel(t *testing.T) {
	p := new(MockPredictions)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"features": {}, "model": 3}`))
	newMux(p).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
}

func TestPredictionsPassLimit(t *testing.T) {
	p := new(MockPredictions)
	p.On("History", mock.Anything, 25).Return(&prediction.History{Predictions: []prediction.LogRecord{}}, nil).Once()
	p.On("History", mock.Anything, 100).Return(nil, errors.Join(errors.ErrInternal, fmt.Errorf("timeout"))).Once()

	mux := newMux(p)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predictions?limit=25", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predictions", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(decode(t, rec)["error"].(string), "Failed to fetch predictions: "))

	p.AssertExpectations(t)
}

func TestStatsServerErrors(t *testing.T) {
	mux := newMux(new(MockPredictions))

	for _, path := range []string{"/api/charts", "/api/stats"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.True(t, strings.HasPrefix(decode(t, rec)["error"].(string), "Server error: "), path)
	}
}

func TestHistoryStoreUnavailable(t *testing.T) {
	p := new(MockPredictions)
	p.On("History", mock.Anything, 100).
		Return(nil, errors.Join(errors.ErrInternal, errors.Join(errors.ErrUnavailable, context.DeadlineExceeded))).Once()

	rec := httptest.NewRecorder()
	newMux(p).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predictions", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.HasPrefix(decode(t, rec)["error"].(string), "Failed to fetch predictions: "))
	p.AssertExpectations(t)
}

func TestAttachmentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename=annotated_scan.svg", attachment("annotated_scan.svg"))

	for _, name := range []string{`my "scan".svg`, `a\b.svg`, "scan 1.svg", "résumé.svg"} {
		disposition, params, err := mime.ParseMediaType(attachment(name))
		require.NoError(t, err, name)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, name, params["filename"], name)
	}
}

func TestDownloadNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(new(MockPredictions)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download_annotated/x.svg", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", decode(t, rec)["error"])
}

func TestRespondErrorMapping(t *testing.T) {
	h := NewHandler(new(MockPredictions), failingStats{}, noDocuments{}, Options{}, logger.New(zap.NewNop()))

	cases := []struct {
		err  error
		code int
	}{
		{errors.NewValidationError("AGE", "Missing feature: AGE", nil), http.StatusBadRequest},
		{&prediction.UnknownModelError{Name: "x"}, http.StatusBadRequest},
		{errors.Wrap(errors.ErrNotFound, "log"), http.StatusNotFound},
		{errors.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{errors.Join(errors.ErrInternal, errors.Join(errors.ErrUnavailable, fmt.Errorf("bad connection"))), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, "")
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}

	rec := httptest.NewRecorder()
	h.respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), &prediction.UnknownModelError{Name: "x"}, "")
	assert.Equal(t, []interface{}{}, decode(t, rec)["available_models"])
}

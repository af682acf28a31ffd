package rest

import (
	"context"
	"net/http"
	"os"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/domain/stats"
	"lungrisk/internal/services/annotation"
	"lungrisk/pkg/logger"
)

// PredictionService is implemented by services/prediction.Service.
type PredictionService interface {
	Predict(ctx context.Context, raw interface{}, modelName string) (*prediction.Result, error)
	History(ctx context.Context, limit int) (*prediction.History, error)
	AvailableModels() []string
	DefaultModel() string
}

// StatsService is implemented by services/stats.Service.
type StatsService interface {
	Charts(ctx context.Context) (*stats.Charts, error)
	Basic(ctx context.Context) (stats.Basic, error)
}

// AnnotationService is implemented by services/annotation.Service.
type AnnotationService interface {
	ProcessBatch(ctx context.Context, docs []annotation.Document, model string) []annotation.Outcome
	Open(name string) (*os.File, error)
}

// Options describe the service in index responses and bound uploads.
type Options struct {
	ServiceName    string
	Version        string
	MaxUploadBytes int64
}

// Handler serves the JSON API under /api.
type Handler struct {
	predictions PredictionService
	stats       StatsService
	documents   AnnotationService
	opts        Options
	log         *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(predictions PredictionService, stats StatsService, documents AnnotationService, opts Options, log *logger.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 16 << 20
	}
	return &Handler{
		predictions: predictions,
		stats:       stats,
		documents:   documents,
		opts:        opts,
		log:         log.With("component", "rest_api"),
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /api", h.handleAPIInfo)

	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/models", h.handleModels)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)

	mux.HandleFunc("POST /api/upload_svgs", h.handleUpload)
	mux.HandleFunc("GET /api/download_annotated/{filename}", h.handleDownload)

	mux.HandleFunc("GET /api/charts", h.handleCharts)
	mux.HandleFunc("GET /api/stats", h.handleStats)
}

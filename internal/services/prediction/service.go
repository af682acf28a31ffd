package prediction

import (
	"context"
	"time"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/metrics"
	"lungrisk/internal/ml"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

const (
	// DefaultHistoryLimit applies when the caller gives no positive limit
	DefaultHistoryLimit = 100
	// MaxHistoryLimit caps a single history page
	MaxHistoryLimit = 1000
)

// ModelResolver looks up loaded models. *ml.Cache implements it.
type ModelResolver interface {
	Get(name string) (*ml.Handle, bool)
	Available() []string
}

// Observer is notified after a prediction has been stored. Errors are logged
// and never affect the prediction result.
type Observer interface {
	PredictionLogged(ctx context.Context, rec *prediction.LogRecord) error
}

// Service validates input, runs a model and logs the outcome.
type Service struct {
	models       ModelResolver
	repo         prediction.Repository
	defaultModel string
	observers    []Observer
	log          *logger.Logger
	now          func() time.Time
}

// NewService constructs a prediction service.
func NewService(models ModelResolver, repo prediction.Repository, defaultModel string, observers ...Observer) *Service {
	return &Service{
		models:       models,
		repo:         repo,
		defaultModel: defaultModel,
		observers:    observers,
		log:          logger.Get().With("component", "prediction_service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// DefaultModel is used when a request names no model.
func (s *Service) DefaultModel() string {
	return s.defaultModel
}

// AvailableModels lists the currently loaded models.
func (s *Service) AvailableModels() []string {
	return s.models.Available()
}

// Predict validates raw features, runs the named model (default when empty)
// and appends exactly one log record. Client errors wrap errors.ErrInvalidInput
// and leave no trace in the log; store and model failures wrap errors.ErrInternal.
func (s *Service) Predict(ctx context.Context, raw interface{}, modelName string) (*prediction.Result, error) {
	start := time.Now()
	if modelName == "" {
		modelName = s.defaultModel
	}

	features, err := prediction.Validate(raw)
	if err != nil {
		metrics.RecordPrediction(modelName, "invalid", time.Since(start), 0)
		return nil, err
	}

	handle, ok := s.models.Get(modelName)
	if !ok {
		metrics.RecordPrediction(modelName, "unknown_model", time.Since(start), 0)
		return nil, &prediction.UnknownModelError{Name: modelName, Available: s.models.Available()}
	}

	out, err := handle.Predict(features.Vector())
	if err != nil {
		metrics.RecordPrediction(modelName, "error", time.Since(start), 0)
		s.log.Errorw("Model inference failed", "model", modelName, "error", err)
		return nil, errors.Join(errors.ErrInternal, err)
	}

	rec := &prediction.LogRecord{
		CreatedAt:        s.now(),
		ModelName:        modelName,
		InputFeatures:    features,
		PredictionResult: prediction.LabelFromClass(out.Class),
		ConfidenceScore:  out.Confidence(),
		ProbabilityYes:   out.Proba[1],
		ProbabilityNo:    out.Proba[0],
	}

	if err := s.repo.Append(ctx, rec); err != nil {
		metrics.RecordPrediction(modelName, "error", time.Since(start), 0)
		s.log.Errorw("Failed to store prediction", "model", modelName, "error", err)
		return nil, errors.Join(errors.ErrInternal, errors.Wrap(err, "store prediction"))
	}

	metrics.RecordPrediction(modelName, string(rec.PredictionResult), time.Since(start), rec.ConfidenceScore)
	s.notify(ctx, rec)

	return &prediction.Result{
		Prediction: rec.PredictionResult,
		Confidence: rec.ConfidenceScore,
		Probabilities: prediction.Probabilities{
			Yes: rec.ProbabilityYes,
			No:  rec.ProbabilityNo,
		},
		ModelUsed: modelName,
		LogID:     rec.ID,
	}, nil
}

func (s *Service) notify(ctx context.Context, rec *prediction.LogRecord) {
	for _, o := range s.observers {
		if err := o.PredictionLogged(ctx, rec); err != nil {
			s.log.Warnw("Prediction observer failed", "log_id", rec.ID, "error", err)
		}
	}
}

// History returns up to limit records, newest first, and the total count.
func (s *Service) History(ctx context.Context, limit int) (*prediction.History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Join(errors.ErrInternal, errors.Wrap(err, "load history"))
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, errors.Join(errors.ErrInternal, errors.Wrap(err, "count history"))
	}

	return &prediction.History{Predictions: records, TotalCount: total}, nil
}

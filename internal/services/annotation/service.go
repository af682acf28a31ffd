package annotation

import (
	"context"
	"os"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"lungrisk/internal/domain/prediction"
	"lungrisk/internal/metrics"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	msgInvalidFileType = "Invalid file type. Only SVG files are allowed."
	msgInvalidEncoding = "File is not valid UTF-8 text"
)

// Predictor runs one prediction. *prediction.Service from services/prediction implements it.
type Predictor interface {
	Predict(ctx context.Context, raw interface{}, modelName string) (*prediction.Result, error)
}

// Document is one uploaded file.
type Document struct {
	Filename string
	Content  []byte
}

// Outcome reports what happened to one document of a batch.
type Outcome struct {
	OriginalFilename  string                 `json:"original_filename"`
	AnnotatedFilename string                 `json:"annotated_filename,omitempty"`
	PredictionResult  *prediction.Result     `json:"prediction_result,omitempty"`
	FeaturesUsed      map[string]interface{} `json:"features_used,omitempty"`
	Error             string                 `json:"error,omitempty"`
	Status            string                 `json:"status"`
}

// Service annotates SVG documents with a prediction for their embedded features.
type Service struct {
	predictor Predictor
	store     *FileStore
	log       *logger.Logger
}

// NewService constructs an annotation service.
func NewService(predictor Predictor, store *FileStore) *Service {
	return &Service{
		predictor: predictor,
		store:     store,
		log:       logger.Get().With("component", "annotation_service"),
	}
}

// Open returns a stored annotated document. Unknown names wrap errors.ErrNotFound.
func (s *Service) Open(name string) (*os.File, error) {
	return s.store.Open(name)
}

// ProcessBatch handles documents in order. A failing document yields an
// error outcome and never stops the batch; the result has one entry per input.
func (s *Service) ProcessBatch(ctx context.Context, docs []Document, model string) []Outcome {
	start := time.Now()
	outcomes := make([]Outcome, 0, len(docs))

	var failed int
	for _, doc := range docs {
		out := s.process(ctx, doc, model)
		if out.Status == StatusError {
			failed++
		}
		outcomes = append(outcomes, out)
	}

	s.log.Infow("Processed document batch",
		"documents", len(docs),
		"failed", failed,
		"model", model,
		"duration", time.Since(start),
	)
	return outcomes
}

func (s *Service) process(ctx context.Context, doc Document, model string) Outcome {
	fail := func(err error, msg string) Outcome {
		metrics.RecordAnnotation(err)
		s.log.Debugw("Document rejected", "filename", doc.Filename, "reason", msg)
		return Outcome{OriginalFilename: doc.Filename, Error: msg, Status: StatusError}
	}

	s.log.Breadcrumb(ctx, "annotation", "Processing document", map[string]interface{}{
		"filename": doc.Filename,
		"size":     humanize.Bytes(uint64(len(doc.Content))),
		"model":    model,
	})

	if !hasSVGExtension(doc.Filename) {
		return fail(errors.ErrUnsupportedFile, msgInvalidFileType)
	}
	if !utf8.Valid(doc.Content) {
		return fail(errors.ErrUnsupportedFile, msgInvalidEncoding)
	}

	name := SecureFilename(doc.Filename)
	if name == "" {
		return fail(errors.ErrUnsupportedFile, msgInvalidFileType)
	}

	content := string(doc.Content)
	features := ExtractFeatures(content)

	res, err := s.predictor.Predict(ctx, features, model)
	if err != nil {
		msg := err.Error()
		if !errors.Is(err, errors.ErrInvalidInput) {
			msg = "Prediction failed: " + msg
		}
		return fail(err, msg)
	}

	annotated := AnnotatedName(name)
	body := Annotate(content, res)
	if err := s.store.Save(annotated, []byte(body)); err != nil {
		s.log.Errorw("Failed to save annotated document", "filename", annotated, "error", err)
		return fail(err, err.Error())
	}

	metrics.RecordAnnotation(nil)
	s.log.Debugw("Document annotated",
		"filename", annotated,
		"size", humanize.Bytes(uint64(len(body))),
		"prediction", res.Prediction,
		"log_id", res.LogID,
	)

	return Outcome{
		OriginalFilename:  name,
		AnnotatedFilename: annotated,
		PredictionResult:  res,
		FeaturesUsed:      features,
		Status:            StatusSuccess,
	}
}

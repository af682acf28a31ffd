package events

import (
	"time"

	"github.com/google/uuid"

	"lungrisk/internal/domain/prediction"
)

// Event types
const (
	TypePredictionLogged = "prediction.logged"
)

// BaseEvent carries metadata shared by every event
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a new base event with defaults
func NewBaseEvent(eventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   "1.0",
	}
}

// PredictionLoggedEvent is emitted after a prediction has been stored
type PredictionLoggedEvent struct {
	BaseEvent
	LogID          int64               `json:"log_id"`
	Model          string              `json:"model"`
	Prediction     prediction.Label    `json:"prediction"`
	Confidence     float64             `json:"confidence_score"`
	ProbabilityYes float64             `json:"probability_yes"`
	ProbabilityNo  float64             `json:"probability_no"`
	Features       prediction.Features `json:"features"`
	CreatedAt      time.Time           `json:"created_at"`
}

// NewPredictionLoggedEvent builds the event for a stored record
func NewPredictionLoggedEvent(source string, rec *prediction.LogRecord) *PredictionLoggedEvent {
	return &PredictionLoggedEvent{
		BaseEvent:      NewBaseEvent(TypePredictionLogged, source),
		LogID:          rec.ID,
		Model:          rec.ModelName,
		Prediction:     rec.PredictionResult,
		Confidence:     rec.ConfidenceScore,
		ProbabilityYes: rec.ProbabilityYes,
		ProbabilityNo:  rec.ProbabilityNo,
		Features:       rec.InputFeatures,
		CreatedAt:      rec.CreatedAt,
	}
}

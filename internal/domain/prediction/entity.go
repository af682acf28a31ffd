package prediction

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Label is the externally visible prediction outcome.
type Label string

const (
	LabelYes Label = "YES"
	LabelNo  Label = "NO"
)

// LabelFromClass maps a raw classifier class onto a label. Class 1 is the
// positive (cancer risk) class; anything else is negative.
func LabelFromClass(class int64) Label {
	if class == 1 {
		return LabelYes
	}
	return LabelNo
}

// Features is a validated feature vector keyed by schema field name.
// Stored verbatim as JSON in the log.
type Features map[string]float64

// Vector returns the values in canonical schema order.
func (f Features) Vector() []float64 {
	out := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		out[i] = f[name]
	}
	return out
}

// Value implements driver.Valuer
func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]float64(f))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (f *Features) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = Features{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported input_features type %T", src)
	}

	m := map[string]float64{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode input_features: %w", err)
	}
	*f = m
	return nil
}

// Probabilities holds class probabilities as reported to clients.
type Probabilities struct {
	Yes float64 `json:"cancer_risk_yes"`
	No  float64 `json:"cancer_risk_no"`
}

// Result is returned for every successful prediction.
type Result struct {
	Prediction    Label         `json:"prediction"`
	Confidence    float64       `json:"confidence_score"`
	Probabilities Probabilities `json:"probabilities"`
	ModelUsed     string        `json:"model_used"`
	LogID         int64         `json:"log_id"`
}

// LogRecord is one persisted prediction. Append-only.
type LogRecord struct {
	ID               int64     `db:"id" json:"id"`
	CreatedAt        time.Time `db:"created_at" json:"timestamp"`
	ModelName        string    `db:"model_name" json:"model_name"`
	InputFeatures    Features  `db:"input_features" json:"input_features"`
	PredictionResult Label     `db:"prediction_result" json:"prediction_result"`
	ConfidenceScore  float64   `db:"confidence_score" json:"confidence_score"`
	ProbabilityYes   float64   `db:"probability_yes" json:"probability_yes"`
	ProbabilityNo    float64   `db:"probability_no" json:"probability_no"`
}

// History is a page of the log, newest first, with the overall count.
type History struct {
	Predictions []LogRecord `json:"predictions"`
	TotalCount  int64       `json:"total_count"`
}

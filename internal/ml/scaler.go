package ml

import (
	"encoding/json"
	"fmt"
	"os"

	"lungrisk/pkg/errors"
)

// Scaler is a fitted standard scaler: x' = (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads a scaler artifact fitted on width features.
func LoadScaler(path string, width int) (*Scaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scaler
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("decode scaler %s: %w", path, err))
	}
	if len(s.Mean) != width || len(s.Scale) != width {
		return nil, errors.Join(errors.ErrModelArtifact,
			errors.Newf("scaler %s: mean/scale have %d/%d entries, want %d", path, len(s.Mean), len(s.Scale), width))
	}
	return &s, nil
}

// Transform returns a scaled copy of x. A zero scale leaves the centred value as is.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

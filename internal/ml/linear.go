package ml

import "fmt"

// LinearModel is a fitted linear decision function, e.g. a linear SVM
// exported without probability calibration.
type LinearModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

var _ Classifier = (*LinearModel)(nil)

func (m *LinearModel) validate(width int) error {
	if len(m.Weights) != width {
		return fmt.Errorf("linear model has %d weights, want %d", len(m.Weights), width)
	}
	return nil
}

func (m *LinearModel) Decision(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(m.Weights), len(x))
	}
	d := m.Intercept
	for i, w := range m.Weights {
		d += w * x[i]
	}
	return d, nil
}

func (m *LinearModel) Predict(x []float64) (int64, error) {
	d, err := m.Decision(x)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return 1, nil
	}
	return 0, nil
}

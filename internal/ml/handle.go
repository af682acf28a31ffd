package ml

import (
	"fmt"
)

// Kind tags what a loaded classifier can do.
type Kind int

const (
	// KindProbabilistic handles produce a label and class probabilities.
	KindProbabilistic Kind = iota
	// KindLabelOnly handles produce only a label.
	KindLabelOnly
)

func (k Kind) String() string {
	switch k {
	case KindProbabilistic:
		return "probabilistic"
	case KindLabelOnly:
		return "label_only"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Classifier predicts a raw class for a feature vector in canonical order.
type Classifier interface {
	Predict(x []float64) (int64, error)
}

// ProbabilisticClassifier also reports class probabilities as [P(class 0), P(class 1)].
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(x []float64) ([2]float64, error)
}

// jointClassifier computes the label and probabilities in one pass.
type jointClassifier interface {
	PredictWithProba(x []float64) (int64, [2]float64, error)
}

// DefaultProbabilities are reported by label-only handles.
var DefaultProbabilities = [2]float64{0.5, 0.5}

// Output is a single prediction from a Handle.
type Output struct {
	Class int64
	// Proba is [P(class 0), P(class 1)].
	Proba [2]float64
}

// Confidence is the largest class probability.
func (o Output) Confidence() float64 {
	if o.Proba[0] > o.Proba[1] {
		return o.Proba[0]
	}
	return o.Proba[1]
}

// Handle is an immutable loaded model bound to a name.
type Handle struct {
	name   string
	kind   Kind
	label  Classifier
	proba  ProbabilisticClassifier
	scaler *Scaler
	format string
	closer func()
}

// NewProbabilisticHandle wraps a classifier that reports probabilities.
func NewProbabilisticHandle(name string, c ProbabilisticClassifier, scaler *Scaler) *Handle {
	return &Handle{name: name, kind: KindProbabilistic, label: c, proba: c, scaler: scaler}
}

// NewLabelOnlyHandle wraps a classifier that reports only a label.
func NewLabelOnlyHandle(name string, c Classifier, scaler *Scaler) *Handle {
	return &Handle{name: name, kind: KindLabelOnly, label: c, scaler: scaler}
}

func (h *Handle) Name() string   { return h.name }
func (h *Handle) Kind() Kind     { return h.kind }
func (h *Handle) Format() string { return h.format }
func (h *Handle) Scaled() bool   { return h.scaler != nil }

// Predict runs the classifier on x (canonical order, unscaled).
func (h *Handle) Predict(x []float64) (Output, error) {
	if h.scaler != nil {
		scaled, err := h.scaler.Transform(x)
		if err != nil {
			return Output{}, err
		}
		x = scaled
	}

	switch h.kind {
	case KindProbabilistic:
		if j, ok := h.proba.(jointClassifier); ok {
			class, p, err := j.PredictWithProba(x)
			if err != nil {
				return Output{}, fmt.Errorf("%s predict: %w", h.name, err)
			}
			return Output{Class: class, Proba: p}, nil
		}
		class, err := h.proba.Predict(x)
		if err != nil {
			return Output{}, fmt.Errorf("%s predict: %w", h.name, err)
		}
		p, err := h.proba.PredictProba(x)
		if err != nil {
			return Output{}, fmt.Errorf("%s predict_proba: %w", h.name, err)
		}
		return Output{Class: class, Proba: p}, nil
	case KindLabelOnly:
		class, err := h.label.Predict(x)
		if err != nil {
			return Output{}, fmt.Errorf("%s predict: %w", h.name, err)
		}
		return Output{Class: class, Proba: DefaultProbabilities}, nil
	default:
		return Output{}, fmt.Errorf("%s: unknown handle kind %s", h.name, h.kind)
	}
}

// Close releases native resources held by the handle, if any.
func (h *Handle) Close() {
	if h.closer != nil {
		h.closer()
		h.closer = nil
	}
}

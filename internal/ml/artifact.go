package ml

import (
	"encoding/json"
	"fmt"
	"os"

	"lungrisk/pkg/errors"
)

// JSON artifact kinds.
const (
	ArtifactTreeEnsemble = "tree_ensemble"
	ArtifactLinear       = "linear"
	ArtifactKNN          = "knn"
)

type jsonArtifact struct {
	Kind    string `json:"kind"`
	Version string `json:"version"`

	Trees []DecisionTree `json:"trees"`

	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`

	K      int         `json:"k"`
	Points [][]float64 `json:"points"`
	Labels []int64     `json:"labels"`
}

// LoadJSONModel decodes a JSON model artifact into a handle. The model must
// accept width features; any structural mismatch is reported as ErrModelArtifact.
func LoadJSONModel(name, path string, width int, scaler *Scaler) (*Handle, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a jsonArtifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("decode %s: %w", path, err))
	}

	var h *Handle
	switch a.Kind {
	case ArtifactTreeEnsemble:
		m := &TreeEnsemble{Trees: a.Trees}
		if err := m.validate(width); err != nil {
			return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("%s: %w", path, err))
		}
		h = NewProbabilisticHandle(name, m, scaler)
	case ArtifactLinear:
		m := &LinearModel{Weights: a.Weights, Intercept: a.Intercept}
		if err := m.validate(width); err != nil {
			return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("%s: %w", path, err))
		}
		h = NewLabelOnlyHandle(name, m, scaler)
	case ArtifactKNN:
		m := &KNN{K: a.K, Points: a.Points, Labels: a.Labels}
		if err := m.validate(width); err != nil {
			return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("%s: %w", path, err))
		}
		h = NewProbabilisticHandle(name, m, scaler)
	default:
		return nil, errors.Join(errors.ErrModelArtifact, errors.Newf("%s: unknown model kind %q", path, a.Kind))
	}
	h.format = "json"
	return h, nil
}

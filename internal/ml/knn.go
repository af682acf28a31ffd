package ml

import (
	"errors"
	"fmt"
	"sort"
)

// KNN is a k-nearest-neighbours classifier over stored training points,
// using Euclidean distance and uniform weights.
type KNN struct {
	K      int         `json:"k"`
	Points [][]float64 `json:"points"`
	Labels []int64     `json:"labels"`
}

var _ ProbabilisticClassifier = (*KNN)(nil)

// validate checks that every stored point has width features.
func (m *KNN) validate(width int) error {
	if m.K <= 0 {
		return errors.New("knn: k must be positive")
	}
	if len(m.Points) == 0 || len(m.Points) != len(m.Labels) {
		return errors.New("knn: points and labels mismatch")
	}
	for i, p := range m.Points {
		if len(p) != width {
			return fmt.Errorf("knn: point %d has %d features, want %d", i, len(p), width)
		}
	}
	return nil
}

func (m *KNN) PredictProba(x []float64) ([2]float64, error) {
	if err := m.validate(len(x)); err != nil {
		return [2]float64{}, err
	}

	type neighbour struct {
		dist  float64
		label int64
	}
	ns := make([]neighbour, len(m.Points))
	for i, p := range m.Points {
		var d float64
		for j := range p {
			diff := p[j] - x[j]
			d += diff * diff
		}
		ns[i] = neighbour{dist: d, label: m.Labels[i]}
	}
	sort.SliceStable(ns, func(a, b int) bool { return ns[a].dist < ns[b].dist })

	k := m.K
	if k > len(ns) {
		k = len(ns)
	}
	var votes [2]float64
	for _, n := range ns[:k] {
		if n.label == 1 {
			votes[1]++
		} else {
			votes[0]++
		}
	}
	return [2]float64{votes[0] / float64(k), votes[1] / float64(k)}, nil
}

func (m *KNN) Predict(x []float64) (int64, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(p), nil
}

func (m *KNN) PredictWithProba(x []float64) (int64, [2]float64, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, [2]float64{}, err
	}
	return argmax(p), p, nil
}

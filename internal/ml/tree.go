package ml

import (
	"errors"
	"fmt"
)

// TreeNode is one node of a fitted decision tree in flat array form.
// Leaves carry per-class sample counts in Value.
type TreeNode struct {
	FeatureIdx int        `json:"feature_idx"`
	Threshold  float64    `json:"threshold"`
	LeftChild  int        `json:"left_child"`
	RightChild int        `json:"right_child"`
	IsLeaf     bool       `json:"is_leaf"`
	Value      [2]float64 `json:"value"`
}

// DecisionTree walks samples with x[feature] <= threshold going left.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (dt *DecisionTree) leaf(x []float64) (*TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return nil, errors.New("empty tree")
	}
	idx := 0
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := &dt.Nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(x) {
			return nil, fmt.Errorf("feature index %d out of range", node.FeatureIdx)
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return nil, errors.New("invalid tree state")
		}
	}
	return nil, errors.New("tree contains a cycle")
}

// validate checks the flat layout once at load time: split features must be
// below width and children must sit after their parent, which rules out cycles.
func (dt *DecisionTree) validate(width int) error {
	if len(dt.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= width {
			return fmt.Errorf("node %d: feature index %d out of range [0, %d)", i, node.FeatureIdx, width)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.Nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

// PredictProba returns normalised leaf counts.
func (dt *DecisionTree) PredictProba(x []float64) ([2]float64, error) {
	node, err := dt.leaf(x)
	if err != nil {
		return [2]float64{}, err
	}
	total := node.Value[0] + node.Value[1]
	if total <= 0 {
		return DefaultProbabilities, nil
	}
	return [2]float64{node.Value[0] / total, node.Value[1] / total}, nil
}

func (dt *DecisionTree) Predict(x []float64) (int64, error) {
	p, err := dt.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(p), nil
}

// TreeEnsemble averages the probabilities of its trees. A single tree is a
// decision tree; many trees form a random forest.
type TreeEnsemble struct {
	Trees []DecisionTree `json:"trees"`
}

var _ ProbabilisticClassifier = (*TreeEnsemble)(nil)

func (e *TreeEnsemble) PredictProba(x []float64) ([2]float64, error) {
	if len(e.Trees) == 0 {
		return [2]float64{}, errors.New("ensemble has no trees")
	}
	var sum [2]float64
	for i := range e.Trees {
		p, err := e.Trees[i].PredictProba(x)
		if err != nil {
			return [2]float64{}, fmt.Errorf("tree %d: %w", i, err)
		}
		sum[0] += p[0]
		sum[1] += p[1]
	}
	n := float64(len(e.Trees))
	return [2]float64{sum[0] / n, sum[1] / n}, nil
}

func (e *TreeEnsemble) Predict(x []float64) (int64, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(p), nil
}

func (e *TreeEnsemble) PredictWithProba(x []float64) (int64, [2]float64, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return 0, [2]float64{}, err
	}
	return argmax(p), p, nil
}

func (e *TreeEnsemble) validate(width int) error {
	if len(e.Trees) == 0 {
		return errors.New("no trees")
	}
	for i := range e.Trees {
		if err := e.Trees[i].validate(width); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// argmax picks class 0 on ties, matching the usual classifier convention.
func argmax(p [2]float64) int64 {
	if p[1] > p[0] {
		return 1
	}
	return 0
}

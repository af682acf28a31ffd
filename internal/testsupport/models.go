package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Feature indices used by the fixture models (canonical order).
// 1 AGE, 2 SMOKING, 8 ALLERGY, 9 WHEEZING, 11 COUGHING.

// RandomForestFixture is a three tree forest. For GoldenFeatures it yields
// P(YES) = mean(0.75, 0.70, 0.80) = 0.75.
const RandomForestFixture = `{
  "kind": "tree_ensemble",
  "version": "fixture-1",
  "trees": [
    {"nodes": [
      {"feature_idx": 2, "threshold": 0.5, "left_child": 1, "right_child": 2},
      {"is_leaf": true, "value": [30, 10]},
      {"feature_idx": 1, "threshold": 55, "left_child": 3, "right_child": 4},
      {"is_leaf": true, "value": [10, 30]},
      {"is_leaf": true, "value": [5, 35]}
    ]},
    {"nodes": [
      {"feature_idx": 11, "threshold": 0.5, "left_child": 1, "right_child": 2},
      {"is_leaf": true, "value": [40, 10]},
      {"is_leaf": true, "value": [15, 35]}
    ]},
    {"nodes": [
      {"feature_idx": 8, "threshold": 0.5, "left_child": 1, "right_child": 4},
      {"feature_idx": 9, "threshold": 0.5, "left_child": 2, "right_child": 3},
      {"is_leaf": true, "value": [20, 20]},
      {"is_leaf": true, "value": [8, 32]},
      {"is_leaf": true, "value": [30, 10]}
    ]}
  ]
}`

// DecisionTreeFixture splits on SMOKING only.
const DecisionTreeFixture = `{
  "kind": "tree_ensemble",
  "trees": [
    {"nodes": [
      {"feature_idx": 2, "threshold": 0.5, "left_child": 1, "right_child": 2},
      {"is_leaf": true, "value": [9, 1]},
      {"is_leaf": true, "value": [2, 8]}
    ]}
  ]
}`

// SVMFixture is label only; it scores COUGHING + WHEEZING after scaling.
const SVMFixture = `{
  "kind": "linear",
  "weights": [0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0],
  "intercept": -0.5
}`

// SVMScalerFixture centres every feature at 0.5 except AGE.
const SVMScalerFixture = `{
  "mean":  [0.5, 60, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5],
  "scale": [0.5, 10, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5]
}`

// KNNFixture votes with k=3 over four stored points.
const KNNFixture = `{
  "kind": "knn",
  "k": 3,
  "points": [
    [1, 45, 1, 0, 0, 0, 0, 1, 0, 1, 0, 1, 1, 0],
    [1, 50, 1, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 0],
    [0, 30, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0],
    [0, 70, 0, 1, 1, 0, 1, 1, 1, 0, 1, 0, 1, 1]
  ],
  "labels": [1, 1, 0, 0]
}`

// GoldenFeatures is the regression input used across packages.
func GoldenFeatures() map[string]interface{} {
	return map[string]interface{}{
		"GENDER":                1.0,
		"AGE":                   45.0,
		"SMOKING":               1.0,
		"YELLOW_FINGERS":        0.0,
		"ANXIETY":               0.0,
		"PEER_PRESSURE":         0.0,
		"CHRONIC_DISEASE":       0.0,
		"FATIGUE":               1.0,
		"ALLERGY":               0.0,
		"WHEEZING":              1.0,
		"ALCOHOL_CONSUMING":     0.0,
		"COUGHING":              1.0,
		"SHORTNESS_OF_BREATH":   1.0,
		"SWALLOWING_DIFFICULTY": 0.0,
	}
}

// WriteModelFixtures writes every fixture artifact into a fresh directory and returns it.
func WriteModelFixtures(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"random_forest_model.json": RandomForestFixture,
		"decision_tree_model.json": DecisionTreeFixture,
		"svm_model.json":           SVMFixture,
		"svm_scaler.json":          SVMScalerFixture,
		"knn_model.json":           KNNFixture,
	}
	for name, body := range files {
		WriteFile(t, dir, name, body)
	}
	return dir
}

// WriteFile writes body to dir/name, failing the test on error.
func WriteFile(t *testing.T, dir, name, body string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

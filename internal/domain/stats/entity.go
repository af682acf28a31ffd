package stats

import "time"

// Summary aggregates the whole prediction log.
type Summary struct {
	TotalPredictions    int64   `json:"total_predictions"`
	HighRiskPredictions int64   `json:"high_risk_predictions"`
	LowRiskPredictions  int64   `json:"low_risk_predictions"`
	HighRiskPercentage  float64 `json:"high_risk_percentage"`
}

// ModelUsage counts records per model name.
type ModelUsage struct {
	Model string `db:"model_name" json:"model"`
	Count int64  `db:"cnt" json:"count"`
}

// DailyRow is one calendar day as returned by the store. Day is YYYY-MM-DD (UTC).
type DailyRow struct {
	Day      string `db:"day"`
	Total    int64  `db:"total"`
	HighRisk int64  `db:"high_risk"`
	LowRisk  int64  `db:"low_risk"`
}

// DailyPoint is the client representation of a DailyRow.
type DailyPoint struct {
	Date     string `json:"date"`
	Total    int64  `json:"total"`
	HighRisk int64  `json:"high_risk"`
	LowRisk  int64  `json:"low_risk"`
}

// Bucket is a half-open confidence range [Low, High). The last bucket of a
// histogram is closed at its upper bound.
type Bucket struct {
	Low  float64
	High float64
}

// Label renders the bucket the way clients see it, e.g. "0.5-0.6".
func (b Bucket) Label() string {
	return formatEdge(b.Low) + "-" + formatEdge(b.High)
}

// ConfidenceBuckets are the fixed histogram ranges.
var ConfidenceBuckets = []Bucket{
	{0.5, 0.6},
	{0.6, 0.7},
	{0.7, 0.8},
	{0.8, 0.9},
	{0.9, 1.0},
}

// HistogramBin is one populated histogram bucket.
type HistogramBin struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// RiskCounts splits the log by label.
type RiskCounts struct {
	HighRisk int64 `json:"high_risk"`
	LowRisk  int64 `json:"low_risk"`
}

// RiskPercentages is the share of each label in percent, 0 for an empty log.
type RiskPercentages struct {
	HighRiskPercent float64 `json:"high_risk_percent"`
	LowRiskPercent  float64 `json:"low_risk_percent"`
}

// AverageConfidence are rounded to three decimals.
type AverageConfidence struct {
	HighRisk float64 `json:"high_risk_predictions"`
	LowRisk  float64 `json:"low_risk_predictions"`
}

// Basic is the payload of the stats endpoint.
type Basic struct {
	TotalPredictions  int64             `json:"total_predictions"`
	PredictionsByRisk RiskCounts        `json:"predictions_by_risk"`
	RiskPercentages   RiskPercentages   `json:"risk_percentages"`
	AverageConfidence AverageConfidence `json:"average_confidence"`
}

// Charts bundles every chart series.
type Charts struct {
	Summary                Summary        `json:"summary"`
	ModelUsage             []ModelUsage   `json:"model_usage"`
	DailyPredictions       []DailyPoint   `json:"daily_predictions"`
	ConfidenceDistribution []HistogramBin `json:"confidence_distribution"`
	GeneratedAt            time.Time      `json:"generated_at"`
}

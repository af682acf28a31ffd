package prediction

import (
	"encoding/json"
	"fmt"
	"math"

	"lungrisk/pkg/errors"
)

// FeatureNames is the fixed input schema in canonical model order.
var FeatureNames = []string{
	"GENDER",
	"AGE",
	"SMOKING",
	"YELLOW_FINGERS",
	"ANXIETY",
	"PEER_PRESSURE",
	"CHRONIC_DISEASE",
	"FATIGUE",
	"ALLERGY",
	"WHEEZING",
	"ALCOHOL_CONSUMING",
	"COUGHING",
	"SHORTNESS_OF_BREATH",
	"SWALLOWING_DIFFICULTY",
}

// FeatureCount is the number of schema fields.
var FeatureCount = len(FeatureNames)

// Validate checks an untyped decoded payload against the schema and returns
// the typed features. Key order is irrelevant. Every failure is a
// *errors.ValidationError naming the offending field.
func Validate(raw interface{}) (Features, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		if typed, isTyped := raw.(map[string]float64); isTyped {
			m = make(map[string]interface{}, len(typed))
			for k, v := range typed {
				m[k] = v
			}
		} else {
			return nil, errors.NewValidationError("features", "Features must be a dictionary", raw)
		}
	}

	if len(m) != FeatureCount {
		return nil, errors.NewValidationError("features",
			fmt.Sprintf("Expected %d features, got %d", FeatureCount, len(m)), len(m))
	}

	out := make(Features, FeatureCount)
	for _, name := range FeatureNames {
		v, present := m[name]
		if !present {
			return nil, errors.NewValidationError(name, "Missing feature: "+name, nil)
		}
		num, ok := toNumber(v)
		if !ok || num < 0 {
			return nil, errors.NewValidationError(name, fmt.Sprintf("Invalid value for %s: %v", name, v), v)
		}
		out[name] = num
	}
	return out, nil
}

// toNumber accepts the numeric shapes a JSON decoder or a Go caller may
// produce. Booleans, strings and nested values are not numbers.
func toNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

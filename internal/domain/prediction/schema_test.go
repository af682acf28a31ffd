package prediction

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lungrisk/pkg/errors"
)

func validPayload() map[string]interface{} {
	m := make(map[string]interface{}, len(FeatureNames))
	for i, name := range FeatureNames {
		m[name] = float64(i % 2)
	}
	m["AGE"] = 63.0
	return m
}

func requireFieldError(t *testing.T, err error, field string) *errors.ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, field, ve.Field)
	return ve
}

func TestValidateAcceptsCompletePayload(t *testing.T) {
	f, err := Validate(validPayload())
	require.NoError(t, err)
	assert.Len(t, f, FeatureCount)
	assert.Equal(t, 63.0, f["AGE"])
}

func TestValidateIgnoresKeyOrder(t *testing.T) {
	// JSON objects decoded from different key orders produce equal results.
	forward := `{` + jsonFields(FeatureNames) + `}`
	reversed := make([]string, len(FeatureNames))
	for i, n := range FeatureNames {
		reversed[len(FeatureNames)-1-i] = n
	}
	backward := `{` + jsonFields(reversed) + `}`

	var a, b interface{}
	require.NoError(t, json.Unmarshal([]byte(forward), &a))
	require.NoError(t, json.Unmarshal([]byte(backward), &b))

	fa, err := Validate(a)
	require.NoError(t, err)
	fb, err := Validate(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Equal(t, fa.Vector(), fb.Vector())
}

func jsonFields(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = `"` + n + `": 1`
	}
	return strings.Join(parts, ",")
}

func TestValidateZeroIsValid(t *testing.T) {
	m := validPayload()
	for k := range m {
		m[k] = 0
	}
	_, err := Validate(m)
	assert.NoError(t, err)
}

func TestValidateMissingField(t *testing.T) {
	for _, name := range FeatureNames {
		t.Run(name, func(t *testing.T) {
			m := validPayload()
			delete(m, name)
			// keep the count at 14 so the missing-field check is reached
			m["EXTRA"] = 1.0

			_, err := Validate(m)
			ve := requireFieldError(t, err, name)
			assert.Equal(t, "Missing feature: "+name, ve.Message)
		})
	}
}

func TestValidateNegativeValue(t *testing.T) {
	for _, name := range FeatureNames {
		t.Run(name, func(t *testing.T) {
			m := validPayload()
			m[name] = -0.5

			_, err := Validate(m)
			ve := requireFieldError(t, err, name)
			assert.Equal(t, "Invalid value for "+name+": -0.5", ve.Message)
		})
	}
}

func TestValidateNonNumeric(t *testing.T) {
	cases := map[string]interface{}{
		"string": "1",
		"bool":   true,
		"null":   nil,
		"nested": map[string]interface{}{"v": 1},
		"list":   []interface{}{1},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			m := validPayload()
			m["SMOKING"] = v
			_, err := Validate(m)
			requireFieldError(t, err, "SMOKING")
		})
	}
}

func TestValidateWrongShape(t *testing.T) {
	_, err := Validate([]interface{}{1, 2})
	ve := requireFieldError(t, err, "features")
	assert.Equal(t, "Features must be a dictionary", ve.Message)

	m := validPayload()
	delete(m, "AGE")
	_, err = Validate(m)
	ve = requireFieldError(t, err, "features")
	assert.Equal(t, "Expected 14 features, got 13", ve.Message)

	m = validPayload()
	m["EXTRA"] = 1.0
	_, err = Validate(m)
	requireFieldError(t, err, "features")
}

func TestValidateJSONNumberAndInts(t *testing.T) {
	m := validPayload()
	m["AGE"] = json.Number("71")
	m["GENDER"] = 1
	m["SMOKING"] = int64(2)

	f, err := Validate(m)
	require.NoError(t, err)
	assert.Equal(t, 71.0, f["AGE"])
	assert.Equal(t, 2.0, f["SMOKING"])
}

func TestFeaturesVectorCanonicalOrder(t *testing.T) {
	f := Features{}
	for i, n := range FeatureNames {
		f[n] = float64(i)
	}
	v := f.Vector()
	for i := range FeatureNames {
		assert.Equal(t, float64(i), v[i])
	}
}

func TestFeaturesScanValue(t *testing.T) {
	f := Features{"AGE": 50, "GENDER": 1}
	v, err := f.Value()
	require.NoError(t, err)

	var back Features
	require.NoError(t, back.Scan(v))
	assert.Equal(t, f, back)

	require.NoError(t, back.Scan([]byte(`{"AGE": 12}`)))
	assert.Equal(t, Features{"AGE": 12}, back)

	assert.Error(t, back.Scan(42))
}

func TestLabelFromClass(t *testing.T) {
	assert.Equal(t, LabelYes, LabelFromClass(1))
	assert.Equal(t, LabelNo, LabelFromClass(0))
	assert.Equal(t, LabelNo, LabelFromClass(2))
}

func TestUnknownModelError(t *testing.T) {
	err := &UnknownModelError{Name: "xgboost", Available: []string{"svm"}}
	assert.Equal(t, `Model "xgboost" not found`, err.Error())
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.True(t, errors.Is(err, errors.ErrModelNotLoaded))
}

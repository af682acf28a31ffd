package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"lungrisk/internal/domain/prediction"
)

var featuresMarker = regexp.MustCompile(`<!--\s*FEATURES:\s*({[^}]+})\s*-->`)

// DefaultFeatures is used for documents without a usable FEATURES marker.
func DefaultFeatures() map[string]interface{} {
	return map[string]interface{}{
		"GENDER":                1,
		"AGE":                   50,
		"SMOKING":               1,
		"YELLOW_FINGERS":        0,
		"ANXIETY":               0,
		"PEER_PRESSURE":         0,
		"CHRONIC_DISEASE":       0,
		"FATIGUE":               1,
		"ALLERGY":               0,
		"WHEEZING":              1,
		"ALCOHOL_CONSUMING":     0,
		"COUGHING":              1,
		"SHORTNESS_OF_BREATH":   1,
		"SWALLOWING_DIFFICULTY": 0,
	}
}

// ExtractFeatures reads the first embedded marker of the form
// <!-- FEATURES: {...} -->. The object is returned as decoded, unvalidated.
func ExtractFeatures(doc string) map[string]interface{} {
	m := featuresMarker.FindStringSubmatch(doc)
	if m == nil {
		return DefaultFeatures()
	}

	dec := json.NewDecoder(strings.NewReader(m[1]))
	dec.UseNumber()

	var features map[string]interface{}
	if err := dec.Decode(&features); err != nil || len(features) == 0 {
		return DefaultFeatures()
	}
	return features
}

// Annotate inserts the result block before the last closing </svg> tag,
// or appends it when the document has none.
func Annotate(doc string, res *prediction.Result) string {
	block := renderBlock(res)

	i := strings.LastIndex(doc, "</svg>")
	if i < 0 {
		return doc + block
	}
	return doc[:i] + block + "\n" + doc[i:]
}

func renderBlock(res *prediction.Result) string {
	stroke := "green"
	if res.Prediction == prediction.LabelYes {
		stroke = "red"
	}

	var b bytes.Buffer
	b.WriteString("\n    <!-- PREDICTION RESULT -->\n")
	b.WriteString(`    <g id="prediction-annotation" transform="translate(10, 30)">` + "\n")
	fmt.Fprintf(&b, `        <rect x="0" y="0" width="300" height="80" fill="rgba(255,255,255,0.9)" stroke="%s" stroke-width="2" rx="5"/>`+"\n", stroke)
	fmt.Fprintf(&b, `        <text x="10" y="20" font-family="Arial" font-size="14" font-weight="bold">Cancer Risk Prediction: %s</text>`+"\n", res.Prediction)
	fmt.Fprintf(&b, `        <text x="10" y="40" font-family="Arial" font-size="12">Confidence: %.2f%%</text>`+"\n", res.Confidence*100)
	fmt.Fprintf(&b, `        <text x="10" y="60" font-family="Arial" font-size="10" fill="gray">Model: %s</text>`+"\n", escapeText(res.ModelUsed))
	b.WriteString("    </g>\n")
	return b.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

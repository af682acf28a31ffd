package stats

import "strconv"

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

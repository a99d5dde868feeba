package predict

import (
	"math"
	"strconv"
	"strings"
)

// FormatValue renders a prediction in shortest round-trip form. Plain decimal
// notation is used for magnitudes in [1e-4, 1e16), always with a fractional
// part; scientific notation otherwise.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

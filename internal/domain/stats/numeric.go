package stats

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseNumeric converts a display value to a number only when it is a plain
// decimal. Composite values such as "26/49", "9-17" or "--" are rejected.
func ParseNumeric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !numericPattern.MatchString(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return Finite(v)
}

// Finite drops NaN and infinities.
func Finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders whole numbers without a decimal point.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

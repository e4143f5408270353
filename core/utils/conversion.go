package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var laneDecimalRe = regexp.MustCompile(`^\d+\.0+$`)

// ParseFloat converts a raw cell string to a float64. It tolerates
// surrounding whitespace and comma decimal separators. The second return
// value reports whether the input held a usable number.
func ParseFloat(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// FormatNumber renders a float without trailing zeros, matching how
// numbers appear in the source workbooks (300 rather than 300.000000).
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeLane strips a spreadsheet float artefact from a lane number,
// turning "10.0" into "10". Non-numeric input is returned trimmed.
func NormalizeLane(value string) string {
	s := strings.TrimSpace(value)
	if laneDecimalRe.MatchString(s) {
		return s[:strings.Index(s, ".")]
	}

	if f, ok := ParseFloat(s); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}

	return s
}

// IsBlank reports whether a cell value is empty or one of the
// spreadsheet null markers.
func IsBlank(value string) bool {
	s := strings.ToLower(strings.TrimSpace(value))
	return s == "" || s == "nan" || s == "none" || s == "null"
}

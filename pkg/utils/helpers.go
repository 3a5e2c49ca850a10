package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout used when writing parsed timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// missingTokens are cell values treated as missing, matched case-sensitively like
// common CSV readers do.
var missingTokens = map[string]bool{
	"":         true,
	"NA":       true,
	"N/A":      true,
	"n/a":      true,
	"NaN":      true,
	"nan":      true,
	"-NaN":     true,
	"-nan":     true,
	"NULL":     true,
	"null":     true,
	"None":     true,
	"<NA>":     true,
	"#N/A":     true,
	"#NA":      true,
	"#N/A N/A": true,
	"-1.#IND":  true,
	"1.#QNAN":  true,
	"-1.#QNAN": true,
	"1.#IND":   true,
}

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// IsMissing reports whether a raw cell value denotes a missing value
func IsMissing(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// ParseFloat parses a numeric cell. Unparseable values become NaN.
func ParseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// IsNonFinite reports whether a cell holds a numeric NaN or ±Inf value
func IsNonFinite(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// FormatFloat renders a float with the shortest exact representation
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseTimestamp parses a timestamp cell in any supported layout
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a parsed timestamp in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseInt parses an integer cell, accepting integral floats like "2.0"
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

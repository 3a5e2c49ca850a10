package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsMissing(t *testing.T) {
	for _, s := range []string{"", " ", "NA", "NaN", "null", "None", "#N/A"} {
		assert.True(t, IsMissing(s), s)
	}
	for _, s := range []string{"0", "N", "na", "inf"} {
		assert.False(t, IsMissing(s), s)
	}
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 1.5, ParseFloat(" 1.5 "))
	assert.True(t, math.IsInf(ParseFloat("inf"), 1))
	assert.True(t, math.IsNaN(ParseFloat("abc")))
}

func TestIsNonFinite(t *testing.T) {
	assert.True(t, IsNonFinite("inf"))
	assert.True(t, IsNonFinite("-Inf"))
	assert.True(t, IsNonFinite("NaN"))
	assert.False(t, IsNonFinite("12"))
	assert.False(t, IsNonFinite("N"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "10", FormatFloat(10))
	assert.Equal(t, "0.25", FormatFloat(0.25))
	assert.Equal(t, "NaN", FormatFloat(math.NaN()))
	assert.Equal(t, "+Inf", FormatFloat(math.Inf(1)))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2016, 3, 14, 17, 24, 55, 0, time.UTC)

	for _, s := range []string{"2016-03-14 17:24:55", "2016-03-14T17:24:55", "2016-03-14T17:24:55Z", "03/14/2016 17:24:55"} {
		got, ok := ParseTimestamp(s)
		assert.True(t, ok, s)
		assert.True(t, want.Equal(got), s)
	}

	_, ok := ParseTimestamp("not-a-date")
	assert.False(t, ok)
	_, ok = ParseTimestamp("  ")
	assert.False(t, ok)

	assert.Equal(t, "2016-03-14 17:24:55", FormatTimestamp(want))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 3 ", 3, true},
		{"2.0", 2, true},
		{"2.5", 0, false},
		{"inf", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"plain integer", "120", 120, true},
		{"decimal", "2.5", 2.5, true},
		{"comma separator", "2,5", 2.5, true},
		{"whitespace", "  45.5  ", 45.5, true},
		{"empty", "", 0, false},
		{"text", "flat", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "300", FormatNumber(300))
	assert.Equal(t, "45.5", FormatNumber(45.5))
	assert.Equal(t, "240.25", FormatNumber(240.25))
}

func TestNormalizeLane(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"10", "10"},
		{"10.0", "10"},
		{"20.00", "20"},
		{" 7 ", "7"},
		{"A1", "A1"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeLane(tt.input), "input %q", tt.input)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("  "))
	assert.True(t, IsBlank("nan"))
	assert.True(t, IsBlank("NaN"))
	assert.True(t, IsBlank("None"))
	assert.False(t, IsBlank("0"))
	assert.False(t, IsBlank("no condition"))
}

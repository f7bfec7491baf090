package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeLimitType(t *testing.T) {
	tests := []struct {
		input string
		want  TimeLimitType
		ok    bool
	}{
		{"exact", TimeLimitExact, true},
		{"range", TimeLimitRange, true},
		{"conditional", TimeLimitConditional, true},
		{"EXACT", TimeLimitExact, true},
		{"  Range  ", TimeLimitRange, true},
		{"", "", false},
		{"approximate", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimeLimitType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDurationUnit(t *testing.T) {
	tests := []struct {
		input string
		want  DurationUnit
		ok    bool
	}{
		{"years", DurationYears, true},
		{"months", DurationMonths, true},
		{"days", DurationDays, true},
		{"Years", DurationYears, true},
		{" days ", DurationDays, true},
		{"", "", false},
		{"weeks", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDurationUnit(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

package ocr

import (
	"math"
	"testing"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     float64
	}{
		{name: "exact match", expected: "AB123CD", actual: "AB123CD", want: 1},
		{name: "case and spacing ignored", expected: "ab 123 cd", actual: "AB123CD", want: 1},
		{name: "single substitution", expected: "AB123C", actual: "AB124C", want: 1 - 1.0/6},
		{name: "completely different", expected: "AAAA", actual: "ZZZZ", want: 0},
		{name: "empty reading", expected: "AB123", actual: "", want: 0},
		{name: "both empty", expected: "", actual: "", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(tt.expected, tt.actual)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MatchScore(%q, %q) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

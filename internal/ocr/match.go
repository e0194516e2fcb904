package ocr

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// MatchScore compares an expected plate string against a reading and
// returns a similarity in [0,1], where 1 is an exact match. Both sides
// are uppercased and stripped of whitespace before comparison so that
// "ab 123" and "AB123" score 1.
func MatchScore(expected, actual string) float64 {
	expected = normalizePlate(expected)
	actual = normalizePlate(actual)

	longest := len(expected)
	if len(actual) > longest {
		longest = len(actual)
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.Distance(expected, actual)
	score := 1 - float64(distance)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}

func normalizePlate(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

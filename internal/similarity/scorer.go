// Package similarity provides normalized string-similarity scoring for
// fuzzy product-name matching.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Score returns a similarity score in [0,1] between two strings based on
// edit distance. Comparison is case-insensitive. Two empty strings score 1.0;
// if exactly one side is empty the score is 0.
func Score(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	longer, shorter := a, b
	if len([]rune(b)) > len([]rune(a)) {
		longer, shorter = b, a
	}

	longerLen := len([]rune(longer))
	if longerLen == 0 {
		return 1.0
	}
	if len([]rune(shorter)) == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(longer, shorter)
	return float64(longerLen-distance) / float64(longerLen)
}

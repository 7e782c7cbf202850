package common

import "strings"

// NormalizeName prepares a product name for comparison: lowercase, trimmed,
// with runs of whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

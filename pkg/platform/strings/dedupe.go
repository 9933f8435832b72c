// Package strings provides list normalisation helpers for request inputs.
package strings

import (
	"strings"
)

// Normalize applies fn to every element, drops elements that normalise to
// the empty string and removes duplicates. First occurrence order is kept.
func Normalize(values []string, fn func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := fn(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

// DedupeAndTrimLower trims and lowercases, then drops empties and
// duplicates. Hex identities compare equal regardless of case.
func DedupeAndTrimLower(values []string) []string {
	return Normalize(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

// Package normalize provides utilities for normalizing user-supplied text
// so that lookups and comparisons behave case-insensitively.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Email normalizes an email address for consistent index lookups.
// Lowercases and trims whitespace.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Fold returns a case-folded, Unicode-normalized form of s suitable for
// case-insensitive comparison. "Science Fiction", "science fiction" and
// "SCIENCE FICTION" all fold to the same string.
func Fold(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return cases.Fold().String(s)
}

// Contains reports whether substr occurs in s under case folding.
// Used for free-text search over titles and authors.
func Contains(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}

// Equal reports whether a and b are equal under case folding.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

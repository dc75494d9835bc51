package engine

import (
	"strings"
	"unicode"
)

const (
	fullWidthFirst  = 0xFF01
	fullWidthLast   = 0xFF5E
	fullWidthOffset = 0xFEE0
)

// Normalize folds a title for comparison: lowercase, full-width ASCII to half-width,
// and every whitespace rune removed.
func Normalize(title string) string {
	lowered := strings.ToLower(title)
	folded := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r >= fullWidthFirst && r <= fullWidthLast {
			return r - fullWidthOffset
		}
		return r
	}, lowered)
	return strings.TrimSpace(folded)
}

// IsMatch reports whether a guess equals the correct title after normalization.
func IsMatch(input, correctTitle string) bool {
	return Normalize(input) == Normalize(correctTitle)
}

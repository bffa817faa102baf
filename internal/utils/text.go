package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// NormalizeField cleans a single value read from a flat file or a form:
// control whitespace becomes spaces, runs of spaces collapse, ends are trimmed.
func NormalizeField(value string) string {
	value = whitespaceChars.ReplaceAllString(value, " ")
	value = multipleSpaces.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// Truncate shortens s to at most maxLen bytes, marking the cut with "...".
// The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:runeBoundary(s, maxLen)]
	}
	return s[:runeBoundary(s, maxLen-3)] + "..."
}

// runeBoundary backs n off to the start of the rune it falls inside.
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Coalesce returns the first non-zero value.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SanitizeString makes text from an external tool safe to log and return.
// Whitespace runs, line breaks included, become one space; other control
// characters are dropped.
func SanitizeString(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Truncate cuts s to at most n bytes on a rune boundary and marks the cut
// with "...".
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

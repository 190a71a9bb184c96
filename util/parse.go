package util

import (
	"fmt"
	"strings"
)

const (
	kib = int64(1024)
	mib = 1024 * kib
	gib = 1024 * mib
)

// ParseSize parses a human-readable size string (e.g. "10MB", "512KB", "2GB")
// into bytes. Returns defaultBytes if the string cannot be parsed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = gib
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = mib
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = kib
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var val int64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &val); err == nil && val >= 0 {
		return val * multiplier
	}
	return defaultBytes
}

// FormatSize renders n bytes with the largest whole binary unit, the inverse
// of ParseSize for exact multiples.
func FormatSize(n int64) string {
	switch {
	case n >= gib && n%gib == 0:
		return fmt.Sprintf("%dGB", n/gib)
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= kib && n%kib == 0:
		return fmt.Sprintf("%dKB", n/kib)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

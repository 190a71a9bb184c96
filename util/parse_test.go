package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		defVal   int64
		expected int64
	}{
		{"10MB", 0, 10 * 1024 * 1024},
		{"50mb", 0, 50 * 1024 * 1024},
		{"512KB", 0, 512 * 1024},
		{"2GB", 0, 2 * 1024 * 1024 * 1024},
		{"1024", 0, 1024},
		{"1024B", 0, 1024},
		{"  60MB  ", 0, 60 * 1024 * 1024},
		{"", 99, 99},
		{"abc", 42, 42},
		{"-5MB", 7, 7},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := ParseSize(tc.input, tc.defVal)
			if got != tc.expected {
				t.Errorf("ParseSize(%q, %d) = %d, want %d", tc.input, tc.defVal, got, tc.expected)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{50 * 1024 * 1024, "50MB"},
		{2 * 1024 * 1024 * 1024, "2GB"},
		{512 * 1024, "512KB"},
		{1500, "1500B"},
		{0, "0B"},
	}
	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatSize(tc.input); got != tc.expected {
				t.Errorf("FormatSize(%d) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
	if got := ParseSize(FormatSize(50*1024*1024), 0); got != 50*1024*1024 {
		t.Errorf("round trip through FormatSize lost value: %d", got)
	}
}

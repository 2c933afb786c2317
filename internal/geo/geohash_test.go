package geo

import "testing"

// TestEncode verifies geohash encoding against known reference hashes.
func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		c         Coordinate
		precision int
		expected  string
	}{
		{
			name:      "reference point jutland",
			c:         Coordinate{Lat: 57.64911, Lng: 10.40744},
			precision: 11,
			expected:  "u4pruydqqvj",
		},
		{
			name:      "reference point jutland at display precision",
			c:         Coordinate{Lat: 57.64911, Lng: 10.40744},
			precision: 6,
			expected:  "u4pruy",
		},
		{
			name:      "precision below one falls back to display precision",
			c:         Coordinate{Lat: 57.64911, Lng: 10.40744},
			precision: 0,
			expected:  "u4pruy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.c, tt.precision); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestTruncate verifies coarse geohash truncation.
func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		precision int
		expected  string
	}{
		{"truncates to precision", "u4pruydqqvj", 6, "u4pruy"},
		{"normalizes case", "U4PRUY", 6, "u4pruy"},
		{"shorter than precision returned as-is", "u4pr", 6, "u4pr"},
		{"empty input", "", 6, ""},
		{"invalid characters rejected", "u4pail", 6, ""},
		{"zero precision rejected", "u4pruy", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.precision); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

package errors

import (
	"strings"
	"testing"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantErr       bool
	}{
		{"reference canvas", 4096, 2160, false},
		{"single pixel", 1, 1, false},
		{"at limit", MaxDimension, MaxDimension, false},

		{"zero width", 0, 100, true},
		{"zero height", 100, 0, true},
		{"too wide", MaxDimension + 1, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDimensions) {
				t.Errorf("code = %s, want %s", GetCode(err), ErrCodeInvalidDimensions)
			}
		})
	}
}

func TestValidateLevels(t *testing.T) {
	tests := []struct {
		levels  int
		wantErr bool
	}{
		{0, false},
		{5, false},
		{24, false},
		{-1, true},
		{25, true},
	}

	for _, tt := range tests {
		err := ValidateLevels(tt.levels, 24)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLevels(%d) error = %v, wantErr %v", tt.levels, err, tt.wantErr)
		}
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain file", "mondrian.png", false},
		{"nested", "out/art/mondrian.png", false},
		{"absolute", "/tmp/mondrian.png", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00.png", true},
		{"newline", "foo\n.png", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecordID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"0b9d5f9c-3c2e-4d7a-9a55-0b6f0f4f6e11", false},
		{"deadbeef", false},

		{"", true},
		{"../etc/passwd", true},
		{"abc/def", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		err := ValidateRecordID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRecordID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

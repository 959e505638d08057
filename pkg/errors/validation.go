package errors

import (
	"strings"
	"unicode"
)

// MaxDimension bounds canvas width and height. A 32768×32768 RGBA buffer is
// already 4 GiB.
const MaxDimension = 32768

// ValidateDimensions checks that a canvas size is positive and bounded.
func ValidateDimensions(width, height uint32) error {
	if width == 0 || height == 0 {
		return New(ErrCodeInvalidDimensions, "canvas must be at least 1x1, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidDimensions, "canvas %dx%d exceeds the %d pixel limit", width, height, MaxDimension)
	}
	return nil
}

// ValidateLevels checks a subdivision depth against an upper bound.
func ValidateLevels(levels, maxLevels int) error {
	if levels < 0 {
		return New(ErrCodeInvalidLevels, "levels cannot be negative, got %d", levels)
	}
	if levels > maxLevels {
		return New(ErrCodeInvalidLevels, "levels %d exceeds the maximum of %d", levels, maxLevels)
	}
	return nil
}

// ValidateOutputPath validates a file path the output is written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not end in a path separator
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}

// ValidateRecordID checks a gallery record ID before it is used as a file
// name or database key.
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "record id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "record id too long")
	}
	for _, r := range id {
		if !(r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return New(ErrCodeInvalidInput, "record id %q contains invalid characters", id)
		}
	}
	return nil
}

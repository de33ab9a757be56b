package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxDimension bounds container sizes accepted from users.
const MaxDimension = 20000

// ValidateSize checks a container dimension supplied by a user.
func ValidateSize(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidSize, "%s must be a finite number", name)
	}
	if v <= 0 {
		return New(ErrCodeInvalidSize, "%s must be positive, got %v", name, v)
	}
	if v > MaxDimension {
		return New(ErrCodeInvalidSize, "%s too large (max %d)", name, MaxDimension)
	}
	return nil
}

// ValidateFormat checks that format is one of valid.
func ValidateFormat(format string, valid []string) error {
	for _, v := range valid {
		if format == v {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(valid, ", "))
}

// ValidateStyle checks that style is one of valid.
func ValidateStyle(style string, valid []string) error {
	for _, v := range valid {
		if style == v {
			return nil
		}
	}
	return New(ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)", style, strings.Join(valid, ", "))
}

// ValidatePersonID validates an id taken from a URL or user input.
// It rejects ids that could be used for path or query injection.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators
//   - Maximum length of 128 characters
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "person id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "person id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "person id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "person id cannot contain path separators")
	}

	return nil
}

// ValidatePath validates a roster file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURI checks a document-store connection string.
func ValidateURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "connection URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "connection URI must use mongodb or mongodb+srv scheme")
	}
	return nil
}

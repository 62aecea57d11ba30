package errors

import (
	"strings"
	"unicode"
)

const (
	maxEntityIDLength = 1024
	maxKeyLength      = 256
	maxTitleLength    = 200
)

// ValidateEntityID validates an entity identifier supplied on the command
// line or in a request:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 1024 bytes
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidEntityID, "entity ID cannot be empty")
	}
	if len(id) > maxEntityIDLength {
		return New(ErrCodeInvalidEntityID, "entity ID too long (max %d characters)", maxEntityIDLength)
	}
	if hasControl(id) {
		return New(ErrCodeInvalidEntityID, "entity ID contains invalid control characters")
	}
	return nil
}

// ValidateAttributeKey validates an attribute key such as a heatmap metric
// or a --attr key. Keys are non-empty, at most 256 bytes, free of control
// characters and "=".
func ValidateAttributeKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidMetric, "attribute key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidMetric, "attribute key too long (max %d characters)", maxKeyLength)
	}
	if hasControl(key) {
		return New(ErrCodeInvalidMetric, "attribute key contains invalid control characters")
	}
	if strings.Contains(key, "=") {
		return New(ErrCodeInvalidMetric, "attribute key cannot contain '='")
	}
	return nil
}

// ValidateTitle validates a figure title.
func ValidateTitle(title string) error {
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", maxTitleLength)
	}
	for _, r := range title {
		if unicode.IsControl(r) && r != '\n' {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}
	return nil
}

// ValidateOutputPath validates a file path the CLI is asked to write to.
// It rejects empty paths, null bytes and paths that name a directory.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "output path contains a null byte")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path names a directory: %q", path)
	}
	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

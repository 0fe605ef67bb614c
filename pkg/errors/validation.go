package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentID validates a document identifier for safety and
// correctness. Document IDs arrive from API paths and host payloads and are
// used in cache keys and store lookups, so names that could be used for path
// traversal or injection are rejected.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "document ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidDocument, "document ID too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "document ID contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidDocument, "document ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputFilename validates an output filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateOutputFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "output filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "output filename must not contain path separators")
	}
	if filename == "." || filename == ".." {
		return New(ErrCodeInvalidInput, "output filename must be a real name")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output filename contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates that a payload URL is well-formed and uses an
// allowed scheme. Only http and https are accepted; anything else
// (file, javascript, ftp) is rejected.
func ValidateURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds caller-assigned identifiers. Ids end up in store keys
// (file names, Redis hash fields, Mongo documents), so they stay short and
// printable.
const maxIDLength = 128

// ValidateItemID validates a caller-assigned item id for safety and
// correctness. Ids are used verbatim as storage keys, so the rules are
// intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidItem, "item id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidItem, "item id contains control or whitespace characters")
		}
	}
	dangerous := []string{"..", "/", "\\", "\x00"}
	for _, pattern := range dangerous {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidItem, "item id contains invalid sequence: %q", pattern)
		}
	}
	return nil
}

// ValidateDashboardName validates the name under which a layout is persisted.
// It must be a simple name without path components, usable as a file basename
// and a Redis key segment.
func ValidateDashboardName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "dashboard name cannot be empty")
	}
	if len(name) > maxIDLength {
		return New(ErrCodeInvalidInput, "dashboard name too long (max %d characters)", maxIDLength)
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "dashboard name must not contain path components")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "dashboard name contains control characters")
		}
	}
	return nil
}

package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// classTokenRegex matches a single CSS class name.
var classTokenRegex = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

// ValidateClassName validates a space-separated list of CSS class names.
// Class names are emitted verbatim into markup, so anything outside the
// identifier grammar is rejected. An empty string is valid.
func ValidateClassName(classes string) error {
	if len(classes) > 256 {
		return New(ErrCodeInvalidClass, "class list too long (max 256 characters)")
	}
	for _, tok := range strings.Fields(classes) {
		if !classTokenRegex.MatchString(tok) {
			return New(ErrCodeInvalidClass, "invalid class name: %q", tok)
		}
	}
	return nil
}

// ValidateItemID validates an item identifier. IDs are echoed in data
// attributes and hover events. An empty ID is valid.
//
// Validation rules:
//   - Maximum length of 128 characters
//   - No control characters
//   - No quotes or angle brackets
func ValidateItemID(id string) error {
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "item id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "item id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, "\"'<>`") {
		return New(ErrCodeInvalidInput, "item id contains invalid characters: %q", id)
	}
	return nil
}

package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// entityTokenRegex matches a single descriptor or category token of an entity.
var entityTokenRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateEntityName validates a caller-supplied entity name such as
// "shiny gold". The name must consist of exactly two tokens separated by a
// single space.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Exactly two tokens, each starting with a letter
//   - Maximum length of 128 characters
func ValidateEntityName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTarget, "entity name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidTarget, "entity name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTarget, "entity name contains invalid control characters")
		}
	}

	tokens := strings.Split(name, " ")
	if len(tokens) != 2 {
		return New(ErrCodeInvalidTarget, "entity name must be two words separated by a single space: %q", name)
	}
	for _, tok := range tokens {
		if !entityTokenRegex.MatchString(tok) {
			return New(ErrCodeInvalidTarget, "invalid entity token %q in %q", tok, name)
		}
	}

	return nil
}

// ValidatePath validates an input or output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//
// The special path "-" (standard stream) is accepted.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

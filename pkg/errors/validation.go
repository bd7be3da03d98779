package errors

import (
	"strings"
	"unicode"
)

// MaxLimit caps the discovery limit accepted from untrusted input.
const MaxLimit = 1_000_000

// MaxRelationLength caps the number of generators in one relation after
// repetition, so "w;n" from untrusted input cannot exhaust memory.
const MaxRelationLength = 10_000

// ValidateRepeat checks that a word of length generators repeated n times
// stays within MaxRelationLength. The check divides rather than multiplies
// so huge n cannot overflow.
func ValidateRepeat(length, n int) error {
	if length <= 0 || n <= 0 {
		return nil
	}
	if n > MaxRelationLength/length {
		return New(ErrCodeInvalidRelation, "relation of %d generators repeated %d times exceeds %d generators", length, n, MaxRelationLength)
	}
	return nil
}

// ValidateGenerator checks that g indexes one of count generators.
func ValidateGenerator(g, count int) error {
	if g < 0 || g >= count {
		return New(ErrCodeInvalidGenerator, "generator %d out of range [0, %d)", g, count)
	}
	return nil
}

// ValidateGeneratorCount rejects negative generator counts.
func ValidateGeneratorCount(count int) error {
	if count < 0 {
		return New(ErrCodeInvalidGenerator, "generator count cannot be negative (got %d)", count)
	}
	return nil
}

// ValidateLimit checks a discovery limit. Zero is allowed and means no
// discovery steps are taken.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return New(ErrCodeInvalidLimit, "limit cannot be negative (got %d)", limit)
	}
	if limit > MaxLimit {
		return New(ErrCodeInvalidLimit, "limit too large (max %d)", MaxLimit)
	}
	return nil
}

// ValidatePath validates a user supplied output or config path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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

// ValidateBackendURL validates a cache backend URL for the given schemes,
// e.g. "redis://" or "mongodb://".
func ValidateBackendURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}

package normalization

import (
	"strings"
)

// Email lowercases and trims an address so matching is case-insensitive.
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// EmailPtr normalizes a nullable address; empty results collapse to nil.
func EmailPtr(input *string) *string {
	if input == nil {
		return nil
	}
	normalized := Email(*input)
	if normalized == "" {
		return nil
	}
	return &normalized
}

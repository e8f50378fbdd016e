package entity

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxProductNameLength bounds the product name sent to search and prompts.
const maxProductNameLength = 200

// ValidateProductName checks that a product name is usable as a search query and prompt input.
func ValidateProductName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Field: "product", Message: "product name is required"}
	}

	if utf8.RuneCountInString(trimmed) > maxProductNameLength {
		return &ValidationError{
			Field:   "product",
			Message: fmt.Sprintf("product name must not exceed %d characters", maxProductNameLength),
		}
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "product", Message: "product name must not contain control characters"}
		}
	}

	return nil
}

// ValidateVideoCount checks a requested discovery count.
func ValidateVideoCount(count, max int) error {
	if count <= 0 || count > max {
		return &ValidationError{
			Field:   "count",
			Message: fmt.Sprintf("count must be between 1 and %d", max),
		}
	}
	return nil
}

package middleware

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

// MaxProfileFieldLen bounds the free-text profile fields.
const MaxProfileFieldLen = 32

// ValidateSampleID checks the id is a uuid issued by the upload manager.
func ValidateSampleID(id string) error {
	if id == "" {
		return fmt.Errorf("sample ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid sample ID format")
	}
	return nil
}

// ValidateProfileField rejects oversized values; emptiness is checked later
// so the user sees the form message.
func ValidateProfileField(name, value string) error {
	if len(value) > MaxProfileFieldLen {
		return fmt.Errorf("%s is too long (max %d characters)", name, MaxProfileFieldLen)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates pagination page
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

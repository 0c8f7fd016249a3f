// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitRegex  = regexp.MustCompile(`[0-9]`)
	userFormat  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	tagNameChar = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)
	hexColor    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	// Check maximum length (prevent unreasonable inputs)
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasUpper := false
	hasLower := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	// Only allow alphanumeric, underscores and hyphens
	if !userFormat.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidatePin checks the PIN used for journal locking. The policy is loose
// on purpose: any 4+ character secret is accepted, digits not required.
func ValidatePin(pin string) error {
	if len(pin) < 4 {
		return fmt.Errorf("PIN must be at least 4 characters")
	}
	if len(pin) > 64 {
		return fmt.Errorf("PIN must not exceed 64 characters")
	}
	return nil
}

// ValidateTagName checks tag name length and characters.
func ValidateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if len(name) > 50 {
		return fmt.Errorf("tag name must not exceed 50 characters")
	}
	if !tagNameChar.MatchString(name) {
		return fmt.Errorf("tag name can only contain letters, numbers, spaces, underscores, and hyphens")
	}
	return nil
}

// ValidateTagColor checks an optional display color hint.
func ValidateTagColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColor.MatchString(color) {
		return fmt.Errorf("tag color must be a hex color like #6366f1")
	}
	return nil
}

package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var fieldCheck = validator.New()

// ValidatePassword checks sign-up password requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateEmail checks the address with validator's email rule and the
// 254 character limit on a forward path.
func ValidateEmail(email string) error {
	if err := fieldCheck.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidateDisplayName allows an empty name; otherwise 2 to 50 characters.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return fmt.Errorf("display name must be at least 2 characters long")
	}
	if n > 50 {
		return fmt.Errorf("display name must not exceed 50 characters")
	}
	return nil
}

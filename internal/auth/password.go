package auth

import (
	"errors"
	"fmt"
	"unicode"

	"storefront/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports a mismatch as domain.ErrUnauthorized.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	return fmt.Errorf("compare password hash: %w", err)
}

// ValidatePassword enforces basic password complexity rules.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return domain.Invalid("password must be at least 8 characters long")
	}
	if len(password) > 72 {
		return domain.Invalid("password must be at most 72 bytes long")
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper {
		return domain.Invalid("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return domain.Invalid("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return domain.Invalid("password must contain at least one digit")
	}
	return nil
}

package util

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	MinPasswordLength = 8
)

var (
	ErrPasswordTooShort   = errors.New("password must contain at least 8 characters")
	ErrPasswordNumeric    = errors.New("password cannot be entirely numeric")
	ErrPasswordTooSimilar = errors.New("password is too similar to the username or email")
)

// HashPassword hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidatePassword applies the account password policy. attributes are user
// fields (username, email) the password must not match.
func ValidatePassword(password string, attributes ...string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return ErrPasswordNumeric
	}

	lowered := strings.ToLower(password)
	for _, attr := range attributes {
		attr = strings.ToLower(attr)
		if local, _, found := strings.Cut(attr, "@"); found {
			attr = local
		}
		if attr != "" && (lowered == attr || (strings.Contains(lowered, attr) && len(attr) >= len(lowered)/2)) {
			return ErrPasswordTooSimilar
		}
	}
	return nil
}

package util

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = bcrypt.DefaultCost
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
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

// ValidateCredentials enforces the registration minimums on username and password length.
func ValidateCredentials(username, password string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

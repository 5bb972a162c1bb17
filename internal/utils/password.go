package utils

import (
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the weakest password accepted at sign-up.
const MinPasswordLength = 8

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidEmail reports whether the address parses as a bare RFC 5322 address.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// StrongEnough reports whether a password meets the minimum length.
func StrongEnough(password string) bool {
	return len(password) >= MinPasswordLength
}

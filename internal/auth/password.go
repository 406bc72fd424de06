package auth

import (
	"github.com/subzcrib/billing-platform/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a one-way bcrypt hash for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a candidate against a stored hash. Any failure
// maps to ErrInvalidCredentials so callers cannot distinguish causes.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}

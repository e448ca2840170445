// Package auth wraps the one-way password hashing primitive.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted one-way hash of the plaintext.
// The plaintext is never stored or logged.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plaintext hashes to the stored hash.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

package utils

import (
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// HashPassword hashes a plaintext password with a fresh random salt.
// Two calls with the same input never produce the same output.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost) // DefaultCost is expensive enough to resist brute force
	if err != nil {
		return "", err // Return error if hashing fails
	}
	return string(hash), nil // Return the salted hash
}

// CheckPassword compares a plaintext password against a stored hash in constant time
func CheckPassword(password, hash string) bool {
	// bcrypt re-derives with the salt embedded in the hash and compares
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

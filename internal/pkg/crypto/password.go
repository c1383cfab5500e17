package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// maxSecretLen is the longest input bcrypt accepts.
const maxSecretLen = 72

// HashPasswordWithCost hashes a secret with bcrypt. Costs outside bcrypt's
// accepted range fall back to the default. Secrets longer than bcrypt accepts
// are reduced to their SHA-256 digest first.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(secretBytes(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain secret against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), secretBytes(password)) == nil
}

func secretBytes(password string) []byte {
	if len(password) <= maxSecretLen {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

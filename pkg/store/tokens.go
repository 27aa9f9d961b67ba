package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// Generate a one-time token returning its plain text version, to be sent to the
// user, and its hash, the only form persisted in the database.
func GenerateToken() (string, string, error) {
	// Fill the slice with random bytes from the operating system's CSPRNG.
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", "", err
	}
	plain := hex.EncodeToString(randomBytes)
	return plain, HashToken(plain), nil
}

func HashToken(plain string) string {
	hash := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(hash[:])
}

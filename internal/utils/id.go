package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID generates a short unique suffix for run directory names.
func GenerateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateOpaqueToken returns a cryptographically random, URL-safe token
// string. Used for email verification and password reset tokens.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

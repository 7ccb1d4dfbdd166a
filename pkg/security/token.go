package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateToken returns a URL-safe random token with the given entropy in bytes.
func GenerateToken(numBytes int) (string, error) {
	if numBytes <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SHA256Hex returns the lowercase hex sha256 digest of the input. Used to
// avoid placing raw emails, client addresses, or tokens in cache keys.
func SHA256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

package util

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateToken returns a URL-safe random token built from n bytes of
// entropy. Session tokens use n=32.
func GenerateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

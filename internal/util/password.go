package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Tenant databases store credentials as hex-encoded sha256 digests, so
// verification must produce the same encoding.

// HashPassword returns the hex-encoded sha256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares password against a stored hex digest in constant
// time. Empty stored hashes never verify.
func VerifyPassword(password, storedHash string) bool {
	if password == "" || storedHash == "" {
		return false
	}
	candidate := HashPassword(password)
	if len(candidate) != len(storedHash) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}

// Package auth implements the HTTP-Digest (RFC 2617) challenge/response
// used by the Auth Engine, plus the user/password table it authenticates
// against.
package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateNonce produces a cryptographically strong, 128-bit nonce,
// hex-encoded, suitable for a WWW-Authenticate challenge.
func GenerateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

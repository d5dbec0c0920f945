// Package hash provides the SHA-256 digests used for cache keys and
// content hashes.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex-encoded SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestString returns the hex-encoded SHA-256 digest of s.
func DigestString(s string) string {
	return Digest([]byte(s))
}

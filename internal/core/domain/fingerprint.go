package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// HashLength is the hex length of a content fingerprint.
const HashLength = 64

// Fingerprint consumes the stream and returns the hex SHA-256 of its bytes
// plus the byte count. Identical content always yields the same fingerprint
// regardless of filename or upload time. The stream is not buffered.
func Fingerprint(src io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, src)
	if err != nil {
		return "", 0, fmt.Errorf("hash stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// ValidFingerprint reports whether s looks like a content fingerprint.
func ValidFingerprint(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

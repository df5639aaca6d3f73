package utils

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash is a quoted sha256 of data, usable as an HTTP ETag.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sha256.Sum256(data)))
}

// Package slug generates the short public identifiers used in sign-up URLs.
package slug

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the set of characters a slug is drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of characters in a slug.
const Length = 10

// limit is the largest multiple of len(Alphabet) that fits in a byte;
// bytes at or above it are discarded to keep the draw unbiased.
const limit = 256 - 256%len(Alphabet)

// New returns a random slug of Length characters.
func New() (string, error) {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether s looks like a slug this package produced.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

package random

import (
	"crypto/rand"
	"encoding/base64"
)

// Random provides random values that can be mocked for testing
type Random interface {
	// Token returns a URL-safe token carrying n random bytes
	Token(n int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Token returns base64url(n random bytes) without padding
func (r *CryptoRandom) Token(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a random 32-character hex identifier.
func New() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("id: read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MustNew is New for call sites where entropy failure is unrecoverable.
func MustNew() string {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

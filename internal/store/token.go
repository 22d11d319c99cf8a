package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// generateToken returns a 64-character hex string backed by 32 bytes of
// crypto/rand entropy. Tokens are bearer secrets; guessing one must be
// infeasible.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

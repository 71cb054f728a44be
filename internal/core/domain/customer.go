package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// CustomerRecord maps a customer identifier to their ed25519 verification
// key. Records are append-only: created once by register, never mutated or
// deleted.
type CustomerRecord struct {
	ID        string `json:"id"`
	VerifyKey string `json:"publickey"` // hex-encoded ed25519 public key
}

// Key decodes the stored verification key.
func (c CustomerRecord) Key() (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(c.VerifyKey)
	if err != nil {
		return nil, fmt.Errorf("decoding verify key for customer %q: %w", c.ID, err)
	}
	if len(key) != VerifyKeySize {
		return nil, fmt.Errorf("verify key for customer %q is %d bytes, want %d", c.ID, len(key), VerifyKeySize)
	}
	return ed25519.PublicKey(key), nil
}

package teller

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Keyring stores customer keypairs as hex files in a directory, one pair
// per customer id.
type Keyring struct {
	dir string
}

// NewKeyring creates a Keyring rooted at dir.
func NewKeyring(dir string) *Keyring {
	return &Keyring{dir: dir}
}

// Create generates and stores a fresh keypair for id, returning the public
// key to submit with register.
func (k *Keyring) Create(id string) (ed25519.PublicKey, error) {
	if err := os.MkdirAll(k.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating keyring dir: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating customer keypair: %w", err)
	}

	if err := os.WriteFile(k.secretPath(id), []byte(hex.EncodeToString(priv)), 0o600); err != nil {
		return nil, fmt.Errorf("storing customer secret key: %w", err)
	}
	if err := os.WriteFile(k.publicPath(id), []byte(hex.EncodeToString(pub)), 0o644); err != nil {
		return nil, fmt.Errorf("storing customer public key: %w", err)
	}
	return pub, nil
}

// SecretKey loads the stored secret key for id.
func (k *Keyring) SecretKey(id string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(k.secretPath(id))
	if err != nil {
		return nil, fmt.Errorf("no keypair stored for customer %q (run register first): %w", id, err)
	}
	priv, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding customer secret key: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("customer secret key is %d bytes, want %d", len(priv), ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(priv), nil
}

func (k *Keyring) secretPath(id string) string {
	return filepath.Join(k.dir, "customer-secret-"+id)
}

func (k *Keyring) publicPath(id string) string {
	return filepath.Join(k.dir, "customer-public-"+id)
}

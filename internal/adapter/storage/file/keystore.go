package file

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

const (
	identityKeyFile = "server-identity.key"
	identityPubFile = "server-identity.pub"
)

// Keystore implements ports.IdentityStore on top of two hex-encoded files
// in the data directory. The keypair is generated once on first run and
// loaded unchanged on every subsequent startup.
type Keystore struct {
	dir string
}

// NewKeystore creates a Keystore rooted at dir.
func NewKeystore(dir string) *Keystore {
	return &Keystore{dir: dir}
}

// Load returns the server's signing keypair, generating and persisting it
// first if absent.
func (k *Keystore) Load(ctx context.Context) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	keyPath := filepath.Join(k.dir, identityKeyFile)

	raw, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		return k.generate(keyPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading server identity: %w", err)
	}

	priv, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding server identity: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, nil, fmt.Errorf("server identity is %d bytes, want %d", len(priv), ed25519.PrivateKeySize)
	}

	key := ed25519.PrivateKey(priv)
	return key.Public().(ed25519.PublicKey), key, nil
}

func (k *Keystore) generate(keyPath string) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if err := ensureDir(k.dir); err != nil {
		return nil, nil, err
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating server identity: %w", err)
	}

	if err := atomicWrite(keyPath, []byte(hex.EncodeToString(priv)), 0o600); err != nil {
		return nil, nil, fmt.Errorf("persisting server identity: %w", err)
	}
	// The public half is informational; clients never need it but operators do.
	pubPath := filepath.Join(k.dir, identityPubFile)
	if err := atomicWrite(pubPath, []byte(hex.EncodeToString(pub)), 0o644); err != nil {
		return nil, nil, fmt.Errorf("persisting server public key: %w", err)
	}

	return pub, priv, nil
}

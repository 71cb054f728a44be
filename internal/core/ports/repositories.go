package ports

import (
	"context"
	"crypto/ed25519"

	"secure-ledger-service/internal/core/domain"
)

// LedgerRepository persists the full transaction chain as one encrypted
// blob. The symmetric key and nonce lifecycle are owned entirely by the
// implementation; callers only ever see plaintext transactions.
type LedgerRepository interface {
	// Load reads and decrypts the persisted chain. A missing blob on first
	// run yields an empty chain, not an error; a failed authentication tag
	// yields apperror.ErrDecrypt.
	Load(ctx context.Context) ([]domain.Transaction, error)
	// Store serializes the whole chain, encrypts it under a fresh nonce and
	// rewrites both the nonce and ciphertext artifacts.
	Store(ctx context.Context, transactions []domain.Transaction) error
	// Archive moves the current encrypted blob aside so a new empty chain
	// can be started. Used only on explicit operator request after a load
	// failure.
	Archive(ctx context.Context) error
}

// RegistryRepository persists customer records in plain form, matching the
// lower sensitivity of public keys.
type RegistryRepository interface {
	Load(ctx context.Context) ([]domain.CustomerRecord, error)
	Append(ctx context.Context, record domain.CustomerRecord) error
}

// IdentityStore owns the server's long-term signing keypair. It is
// generated once on first run and loaded unchanged thereafter; the private
// key signs ledger entries and nothing else.
type IdentityStore interface {
	Load(ctx context.Context) (ed25519.PublicKey, ed25519.PrivateKey, error)
}

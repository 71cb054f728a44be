package file

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/pkg/apperror"
)

const (
	secretKeyFile  = "ledger-secret.key"
	cipherFile     = "ledger.enc"
	nonceFile      = "ledger.nonce"
	secretKeySize  = 32
	secretboxNonce = 24
)

// LedgerRepo implements ports.LedgerRepository with an XSalsa20-Poly1305
// secretbox over the JSON-serialized chain. The symmetric key is generated
// lazily on first use and never leaves this package; the nonce is freshly
// drawn for every store and persisted in its own file beside the
// ciphertext.
type LedgerRepo struct {
	dir string
}

// NewLedgerRepo creates a LedgerRepo rooted at dir.
func NewLedgerRepo(dir string) *LedgerRepo {
	return &LedgerRepo{dir: dir}
}

// Load reads and decrypts the persisted chain. Both artifacts missing means
// first run: an empty chain, not an error. An authentication failure means
// tamper or wrong key and surfaces as ErrDecrypt.
func (r *LedgerRepo) Load(ctx context.Context) ([]domain.Transaction, error) {
	cipher, cipherErr := os.ReadFile(filepath.Join(r.dir, cipherFile))
	nonceRaw, nonceErr := os.ReadFile(filepath.Join(r.dir, nonceFile))

	if os.IsNotExist(cipherErr) && os.IsNotExist(nonceErr) {
		return nil, nil
	}
	if cipherErr != nil || nonceErr != nil {
		return nil, apperror.ErrDecrypt(fmt.Errorf("reading ledger artifacts: cipher=%v nonce=%v", cipherErr, nonceErr))
	}
	if len(nonceRaw) != secretboxNonce {
		return nil, apperror.ErrDecrypt(fmt.Errorf("nonce is %d bytes, want %d", len(nonceRaw), secretboxNonce))
	}

	key, err := r.loadKey()
	if err != nil {
		return nil, apperror.ErrDecrypt(err)
	}

	var nonce [secretboxNonce]byte
	copy(nonce[:], nonceRaw)

	plaintext, ok := secretbox.Open(nil, cipher, &nonce, key)
	if !ok {
		return nil, apperror.ErrDecrypt(errors.New("secretbox authentication failed"))
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal(plaintext, &transactions); err != nil {
		return nil, apperror.ErrDecrypt(fmt.Errorf("parsing decrypted ledger: %w", err))
	}
	return transactions, nil
}

// Store serializes the whole chain, encrypts it under a fresh nonce and
// rewrites both artifacts. Whole-blob rewrite keeps the at-rest format a
// single authenticated message at the cost of IO proportional to chain
// length.
func (r *LedgerRepo) Store(ctx context.Context, transactions []domain.Transaction) error {
	key, err := r.ensureKey()
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("serializing ledger: %w", err)
	}

	var nonce [secretboxNonce]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	cipher := secretbox.Seal(nil, plaintext, &nonce, key)

	if err := atomicWrite(filepath.Join(r.dir, cipherFile), cipher, 0o600); err != nil {
		return fmt.Errorf("writing ledger ciphertext: %w", err)
	}
	if err := atomicWrite(filepath.Join(r.dir, nonceFile), nonce[:], 0o600); err != nil {
		return fmt.Errorf("writing ledger nonce: %w", err)
	}
	return nil
}

// Archive moves the current blob and nonce aside so a fresh chain can be
// started without destroying the evidence.
func (r *LedgerRepo) Archive(ctx context.Context) error {
	suffix := fmt.Sprintf(".corrupt-%d", time.Now().Unix())
	for _, name := range []string{cipherFile, nonceFile} {
		src := filepath.Join(r.dir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := os.Rename(src, src+suffix); err != nil {
			return fmt.Errorf("archiving %s: %w", name, err)
		}
	}
	return nil
}

// loadKey reads the symmetric key, failing if it does not exist.
func (r *LedgerRepo) loadKey() (*[secretKeySize]byte, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, secretKeyFile))
	if err != nil {
		return nil, fmt.Errorf("reading ledger key: %w", err)
	}
	return decodeKey(raw)
}

// ensureKey loads the symmetric key, generating and persisting it on first
// use.
func (r *LedgerRepo) ensureKey() (*[secretKeySize]byte, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, secretKeyFile))
	if os.IsNotExist(err) {
		return r.generateKey()
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger key: %w", err)
	}
	return decodeKey(raw)
}

func (r *LedgerRepo) generateKey() (*[secretKeySize]byte, error) {
	if err := ensureDir(r.dir); err != nil {
		return nil, err
	}

	var key [secretKeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("generating ledger key: %w", err)
	}
	path := filepath.Join(r.dir, secretKeyFile)
	if err := atomicWrite(path, []byte(hex.EncodeToString(key[:])), 0o600); err != nil {
		return nil, fmt.Errorf("persisting ledger key: %w", err)
	}
	return &key, nil
}

func decodeKey(raw []byte) (*[secretKeySize]byte, error) {
	decoded, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding ledger key: %w", err)
	}
	if len(decoded) != secretKeySize {
		return nil, fmt.Errorf("ledger key is %d bytes, want %d", len(decoded), secretKeySize)
	}
	var key [secretKeySize]byte
	copy(key[:], decoded)
	return &key, nil
}

package service

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/pkg/apperror"
)

// buildEntry constructs the next chain entry: it derives the payload from
// the tail digest and the logical fields, hashes it with BLAKE2b-256 and
// signs the digest with the server's long-term key.
func buildEntry(prevHashHex string, kind domain.TransactionKind, amount decimal.Decimal, customerID string, signKey ed25519.PrivateKey) (domain.Transaction, error) {
	payload, err := TransactionPayload(prevHashHex, kind, amount, customerID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("building payload: %w", err)
	}

	digest := blake2b.Sum256(payload)
	signature := ed25519.Sign(signKey, digest[:])

	return domain.Transaction{
		Kind:        kind,
		Amount:      amount,
		CustomerID:  customerID,
		PrevHash:    prevHashHex,
		PayloadHash: hex.EncodeToString(digest[:]),
		Signature:   hex.EncodeToString(signature),
	}, nil
}

// ValidateChain walks the whole chain once, re-deriving every payload hash
// and re-verifying every entry signature under the server's public key. It
// returns the first violation found, with its index, or nil.
func ValidateChain(transactions []domain.Transaction, serverKey ed25519.PublicKey) error {
	wantPrev := domain.GenesisHash

	for i, tx := range transactions {
		if tx.PrevHash != wantPrev {
			return apperror.ErrChainValidation(i, "prev hash does not match predecessor digest")
		}

		payload, err := TransactionPayload(tx.PrevHash, tx.Kind, tx.Amount, tx.CustomerID)
		if err != nil {
			return apperror.ErrChainValidation(i, err.Error())
		}
		digest := blake2b.Sum256(payload)
		if hex.EncodeToString(digest[:]) != tx.PayloadHash {
			return apperror.ErrChainValidation(i, "payload hash does not match recomputed digest")
		}

		signature, err := hex.DecodeString(tx.Signature)
		if err != nil || len(signature) != domain.SignatureSize {
			return apperror.ErrChainValidation(i, "entry signature is not a valid detached signature")
		}
		if !ed25519.Verify(serverKey, digest[:], signature) {
			return apperror.ErrChainValidation(i, "entry signature does not verify under server key")
		}

		wantPrev = tx.PayloadHash
	}

	return nil
}

// tailHash returns the digest the next entry must link to.
func tailHash(transactions []domain.Transaction) string {
	if len(transactions) == 0 {
		return domain.GenesisHash
	}
	return transactions[len(transactions)-1].PayloadHash
}

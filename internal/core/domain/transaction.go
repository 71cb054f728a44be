package domain

import (
	"encoding/hex"

	"github.com/shopspring/decimal"
)

// TransactionKind represents the direction of a money movement.
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "deposit"
	TransactionKindWithdraw TransactionKind = "withdraw"
)

// Sizes of the fixed-width chain fields, in bytes. Digests are BLAKE2b-256,
// signatures are ed25519 detached signatures.
const (
	DigestSize    = 32
	SignatureSize = 64
	VerifyKeySize = 32
)

// GenesisHash is the hex form of the all-zero digest used as the previous
// hash of the first chain entry.
var GenesisHash = hex.EncodeToString(make([]byte, DigestSize))

// Transaction is an immutable, hash-chained ledger entry. PrevHash links it
// to its predecessor (or to the genesis hash), PayloadHash covers PrevHash
// plus the canonical form of the logical fields, and Signature is the
// server's detached signature over PayloadHash. Digests and signatures are
// stored hex-encoded.
type Transaction struct {
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	CustomerID  string          `json:"id"`
	PrevHash    string          `json:"prev_hash"`
	PayloadHash string          `json:"payload_hash"`
	Signature   string          `json:"signature"`
}

// Delta returns the signed contribution of this transaction to a balance
// fold: positive for deposits, negative for withdrawals.
func (t Transaction) Delta() decimal.Decimal {
	if t.Kind == TransactionKindWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

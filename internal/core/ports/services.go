package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"secure-ledger-service/internal/core/domain"
)

// LedgerService owns the hash chain and the money operations on it.
// Deposit and Withdraw run inside a single critical section covering the
// balance check, the append and the durable store, so the check-then-act
// sequence can never interleave.
type LedgerService interface {
	Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, customerID string) (decimal.Decimal, error)
}

// RegistryService manages the append-only customer registry.
type RegistryService interface {
	Register(ctx context.Context, id string, verifyKeyHex string) error
	Lookup(id string) (domain.CustomerRecord, bool)
}

// Authorizer verifies a command's customer signature before it is allowed
// to touch the ledger. Register is exempt; every other command fails with
// ErrUnknownCustomer or ErrInvalidSignature when the check does not pass.
type Authorizer interface {
	Authorize(cmd domain.Command) error
}

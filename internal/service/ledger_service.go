package service

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/internal/core/ports"
	"secure-ledger-service/pkg/apperror"
)

// LedgerServiceImpl implements ports.LedgerService. The whole chain is a
// single shared structure re-encrypted as one blob on every append, so
// mutations take one global critical section rather than per-customer
// locks; reads take the shared side of the same lock and therefore never
// observe a torn chain.
type LedgerServiceImpl struct {
	repo    ports.LedgerRepository
	signKey ed25519.PrivateKey
	log     zerolog.Logger

	mu           sync.RWMutex
	transactions []domain.Transaction
}

// NewLedgerService creates a LedgerServiceImpl with an empty in-memory
// chain. Call Restore before serving requests.
func NewLedgerService(repo ports.LedgerRepository, signKey ed25519.PrivateKey, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		repo:    repo,
		signKey: signKey,
		log:     log,
	}
}

// Restore loads the persisted chain and validates it against the server's
// public key before trusting it. Decryption and validation failures are
// returned as-is; deciding whether to abort or reset is the caller's call.
func (s *LedgerServiceImpl) Restore(ctx context.Context) error {
	transactions, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	serverKey := s.signKey.Public().(ed25519.PublicKey)
	if err := ValidateChain(transactions, serverKey); err != nil {
		return err
	}

	s.mu.Lock()
	s.transactions = transactions
	s.mu.Unlock()

	s.log.Info().Int("entries", len(transactions)).Msg("ledger chain restored and validated")
	return nil
}

// StartEmpty discards any in-memory state and begins a fresh chain. Only
// called after the operator explicitly allowed a reset.
func (s *LedgerServiceImpl) StartEmpty() {
	s.mu.Lock()
	s.transactions = nil
	s.mu.Unlock()
}

// Deposit appends a deposit entry and returns the customer's new balance.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.append(ctx, domain.TransactionKindDeposit, customerID, amount)
}

// Withdraw checks funds and appends a withdrawal entry under the same
// critical section, so two concurrent withdrawals can never both pass the
// balance check against the same funds.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.append(ctx, domain.TransactionKindWithdraw, customerID, amount)
}

// Balance folds the chain for one customer. Read-only; may run concurrently
// with other reads but not with an in-progress append.
func (s *LedgerServiceImpl) Balance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(customerID), nil
}

func (s *LedgerServiceImpl) append(ctx context.Context, kind domain.TransactionKind, customerID string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == domain.TransactionKindWithdraw {
		current := s.balanceLocked(customerID)
		if amount.GreaterThan(current) {
			return decimal.Zero, apperror.ErrInsufficientFunds(amount.String(), current.String())
		}
	}

	entry, err := buildEntry(tailHash(s.transactions), kind, amount, customerID, s.signKey)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("building chain entry: %w", err))
	}

	s.transactions = append(s.transactions, entry)

	// The store is the durability boundary: if the encrypted rewrite fails
	// the in-memory append is rolled back so memory never runs ahead of disk.
	if err := s.repo.Store(ctx, s.transactions); err != nil {
		s.transactions = s.transactions[:len(s.transactions)-1]
		return decimal.Zero, apperror.ErrPersistence(err)
	}

	balance := s.balanceLocked(customerID)

	s.log.Info().
		Str("kind", string(kind)).
		Str("customer_id", customerID).
		Str("amount", amount.String()).
		Int("chain_len", len(s.transactions)).
		Msg("transaction appended")

	return balance, nil
}

// balanceLocked folds deposits minus withdrawals for one customer. Callers
// must hold at least the read lock.
func (s *LedgerServiceImpl) balanceLocked(customerID string) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range s.transactions {
		if tx.CustomerID == customerID {
			balance = balance.Add(tx.Delta())
		}
	}
	return balance
}

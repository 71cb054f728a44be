package service

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/internal/core/ports"
	"secure-ledger-service/pkg/apperror"
)

// RegistryServiceImpl implements ports.RegistryService. Records live in an
// in-memory map backed by the plain registry file; both only ever grow.
type RegistryServiceImpl struct {
	repo ports.RegistryRepository
	log  zerolog.Logger

	mu      sync.RWMutex
	records map[string]domain.CustomerRecord
}

// NewRegistryService creates a RegistryServiceImpl with an empty registry.
// Call Restore before serving requests.
func NewRegistryService(repo ports.RegistryRepository, log zerolog.Logger) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		repo:    repo,
		log:     log,
		records: make(map[string]domain.CustomerRecord),
	}
}

// Restore loads persisted customer records.
func (s *RegistryServiceImpl) Restore(ctx context.Context) error {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = make(map[string]domain.CustomerRecord, len(records))
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	s.mu.Unlock()

	s.log.Info().Int("customers", len(records)).Msg("customer registry restored")
	return nil
}

// Register creates a customer record. Fails with ErrDuplicateCustomer if
// the id exists and ErrMalformedKey if the key is not a 32-byte hex string.
// The record is persisted before the in-memory map is updated, so a write
// failure leaves the registry unchanged.
func (s *RegistryServiceImpl) Register(ctx context.Context, id string, verifyKeyHex string) error {
	key, err := hex.DecodeString(verifyKeyHex)
	if err != nil || len(key) != domain.VerifyKeySize {
		return apperror.ErrMalformedKey()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return apperror.ErrDuplicateCustomer(id)
	}

	record := domain.CustomerRecord{ID: id, VerifyKey: verifyKeyHex}
	if err := s.repo.Append(ctx, record); err != nil {
		return apperror.ErrPersistence(err)
	}
	s.records[id] = record

	s.log.Info().Str("customer_id", id).Msg("customer registered")
	return nil
}

// Lookup returns the record for id, if any. Read-only.
func (s *RegistryServiceImpl) Lookup(id string) (domain.CustomerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

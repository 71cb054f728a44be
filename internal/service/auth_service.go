package service

import (
	"crypto/ed25519"
	"encoding/hex"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/internal/core/ports"
	"secure-ledger-service/pkg/apperror"
)

// AuthorizerImpl implements ports.Authorizer: it gates every command behind
// the customer's detached signature, checked against the registry, before
// the ledger is touched.
type AuthorizerImpl struct {
	registry ports.RegistryService
}

// NewAuthorizer creates an AuthorizerImpl.
func NewAuthorizer(registry ports.RegistryService) *AuthorizerImpl {
	return &AuthorizerImpl{registry: registry}
}

// Authorize verifies cmd's request signature. Register is exempt since no
// identity exists before it completes. For everything else the customer
// must be registered and the signature must verify over the canonical byte
// form of the message with the signature field removed.
func (a *AuthorizerImpl) Authorize(cmd domain.Command) error {
	if _, ok := cmd.(domain.RegisterCommand); ok {
		return nil
	}

	record, ok := a.registry.Lookup(cmd.Customer())
	if !ok {
		return apperror.ErrUnknownCustomer(cmd.Customer())
	}

	verifyKey, err := record.Key()
	if err != nil {
		return apperror.InternalError(err)
	}

	signature, err := hex.DecodeString(cmd.RequestSignature())
	if err != nil || len(signature) != domain.SignatureSize {
		return apperror.ErrInvalidSignature()
	}

	if !ed25519.Verify(verifyKey, CommandBytes(cmd), signature) {
		return apperror.ErrInvalidSignature()
	}

	return nil
}

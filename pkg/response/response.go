// Package response defines the wire-level reply envelopes. Every exchange
// ends with exactly one of these, serialized as a single JSON object.
package response

import (
	"errors"

	"github.com/shopspring/decimal"

	"secure-ledger-service/pkg/apperror"
)

// Registered acknowledges a successful registration.
type Registered struct {
	Cmd string `json:"cmd"`
	ID  string `json:"id"`
}

// Balance reports the customer's balance after a balance, deposit or
// withdraw command.
type Balance struct {
	Cmd     string          `json:"cmd"`
	Balance decimal.Decimal `json:"balance"`
}

// Failure is the single error envelope; the connection still closes
// normally after it is written.
type Failure struct {
	Error string `json:"error"`
}

// NewRegistered builds the register acknowledgement.
func NewRegistered(id string) Registered {
	return Registered{Cmd: "register", ID: id}
}

// NewBalance builds the balance reply.
func NewBalance(balance decimal.Decimal) Balance {
	return Balance{Cmd: "balance", Balance: balance}
}

// FromError converts any error into the wire failure envelope. AppErrors
// expose their message; anything else is masked as an internal error.
func FromError(err error) Failure {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return Failure{Error: appErr.Message}
	}
	return Failure{Error: "internal server error"}
}

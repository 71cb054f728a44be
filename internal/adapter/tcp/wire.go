package tcp

import (
	"github.com/shopspring/decimal"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/pkg/apperror"
)

// Request is the superset wire shape of a protocol message; producers omit
// the fields their command does not use. Amount accepts both a JSON number
// and a numeric string.
type Request struct {
	Cmd       string           `json:"cmd"`
	ID        string           `json:"id"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	PublicKey string           `json:"publickey,omitempty"`
	Signature string           `json:"signature,omitempty"`
}

// ToCommand converts the raw message into exactly one command variant.
// This is the only place the command word is interpreted; past here an
// unknown command cannot exist.
func (r Request) ToCommand() (domain.Command, error) {
	switch r.Cmd {
	case "register":
		if r.PublicKey == "" {
			return nil, apperror.ErrMalformedMessage("register requires a publickey field")
		}
		return domain.RegisterCommand{ID: r.ID, PublicKey: r.PublicKey}, nil

	case "balance":
		return domain.BalanceCommand{ID: r.ID, Signature: r.Signature}, nil

	case "deposit":
		amount, err := r.amount()
		if err != nil {
			return nil, err
		}
		return domain.DepositCommand{ID: r.ID, Amount: amount, Signature: r.Signature}, nil

	case "withdraw":
		amount, err := r.amount()
		if err != nil {
			return nil, err
		}
		return domain.WithdrawCommand{ID: r.ID, Amount: amount, Signature: r.Signature}, nil

	default:
		return nil, apperror.ErrUnknownCommand(r.Cmd)
	}
}

func (r Request) amount() (decimal.Decimal, error) {
	if r.Amount == nil {
		return decimal.Zero, apperror.ErrMalformedMessage("missing amount field")
	}
	if r.Amount.IsNegative() {
		return decimal.Zero, apperror.ErrInvalidAmount(r.Amount.String())
	}
	return *r.Amount, nil
}

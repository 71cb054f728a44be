package domain

import "github.com/shopspring/decimal"

// Command is the closed set of operations a customer can request. Each
// variant carries only the fields relevant to it; the wire adapter decodes
// a raw message into exactly one of these before anything else touches it.
type Command interface {
	// Name returns the protocol command word.
	Name() string
	// Customer returns the customer id the command acts for.
	Customer() string
	// RequestSignature returns the hex detached signature the customer
	// attached, empty for register.
	RequestSignature() string
}

// RegisterCommand creates a customer record. It is unsigned: no identity
// exists before it completes.
type RegisterCommand struct {
	ID        string
	PublicKey string // hex-encoded ed25519 verification key
}

func (c RegisterCommand) Name() string             { return "register" }
func (c RegisterCommand) Customer() string         { return c.ID }
func (c RegisterCommand) RequestSignature() string { return "" }

// BalanceCommand reads the customer's balance without mutating the chain.
type BalanceCommand struct {
	ID        string
	Signature string
}

func (c BalanceCommand) Name() string             { return "balance" }
func (c BalanceCommand) Customer() string         { return c.ID }
func (c BalanceCommand) RequestSignature() string { return c.Signature }

// DepositCommand appends a deposit for the customer.
type DepositCommand struct {
	ID        string
	Amount    decimal.Decimal
	Signature string
}

func (c DepositCommand) Name() string             { return "deposit" }
func (c DepositCommand) Customer() string         { return c.ID }
func (c DepositCommand) RequestSignature() string { return c.Signature }

// WithdrawCommand appends a withdrawal, subject to the funds check at
// execution time.
type WithdrawCommand struct {
	ID        string
	Amount    decimal.Decimal
	Signature string
}

func (c WithdrawCommand) Name() string             { return "withdraw" }
func (c WithdrawCommand) Customer() string         { return c.ID }
func (c WithdrawCommand) RequestSignature() string { return c.Signature }

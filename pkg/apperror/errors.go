package apperror

import (
	"fmt"
)

// AppError is a structured error carrying a stable code alongside the
// user-visible message. The wrapped internal error is logged, never sent
// to the client.
type AppError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ---- Protocol & Commands (LED) ----

func ErrMalformedMessage(detail string) *AppError {
	return New("LED_001", fmt.Sprintf("malformed message: %s", detail))
}

func ErrUnknownCommand(cmd string) *AppError {
	return New("LED_001", fmt.Sprintf("unknown command %q", cmd))
}

func ErrInvalidAmount(raw string) *AppError {
	return New("LED_002", fmt.Sprintf("unable to parse %q as a non-negative amount", raw))
}

func ErrInsufficientFunds(requested, available string) *AppError {
	return New("LED_003", fmt.Sprintf("unable to withdraw %s when current funds are %s", requested, available))
}

// ---- Customer Registry (REG) ----

func ErrDuplicateCustomer(id string) *AppError {
	return New("REG_001", fmt.Sprintf("customer %q is already registered", id))
}

func ErrMalformedKey() *AppError {
	return New("REG_002", "public key is not a valid ed25519 verification key")
}

func ErrUnknownCustomer(id string) *AppError {
	return New("REG_003", fmt.Sprintf("customer %q is not registered", id))
}

// ---- Request Authorization (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "request signature verification failed")
}

// ---- Storage & Chain Integrity (STO) ----

func ErrDecrypt(err error) *AppError {
	return Wrap("STO_001", "ledger ciphertext failed authentication", err)
}

func ErrChainValidation(index int, detail string) *AppError {
	return New("STO_002", fmt.Sprintf("ledger chain invalid at entry %d: %s", index, detail))
}

func ErrPersistence(err error) *AppError {
	return Wrap("STO_003", "writing ledger to durable storage failed", err)
}

// ---- System (SYS) ----

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "internal server error", err)
}

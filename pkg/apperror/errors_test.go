package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorFormat(t *testing.T) {
	err := New("LED_003", "unable to withdraw 100 when current funds are 70")
	assert.Equal(t, "[LED_003] unable to withdraw 100 when current funds are 70", err.Error())
}

func TestAppError_WrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrPersistence(cause)

	assert.Contains(t, err.Error(), "STO_003")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, cause)
}

func TestAppError_ErrorsAs(t *testing.T) {
	var appErr *AppError
	wrapped := fmt.Errorf("dispatch: %w", ErrUnknownCustomer("42"))

	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "REG_003", appErr.Code)
	assert.Contains(t, appErr.Message, `"42"`)
}

func TestConstructors_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"unknown command", ErrUnknownCommand("transfer"), "LED_001"},
		{"invalid amount", ErrInvalidAmount("ten"), "LED_002"},
		{"insufficient funds", ErrInsufficientFunds("1000", "70"), "LED_003"},
		{"duplicate customer", ErrDuplicateCustomer("1"), "REG_001"},
		{"malformed key", ErrMalformedKey(), "REG_002"},
		{"unknown customer", ErrUnknownCustomer("1"), "REG_003"},
		{"invalid signature", ErrInvalidSignature(), "SEC_001"},
		{"decrypt", ErrDecrypt(errors.New("bad tag")), "STO_001"},
		{"chain validation", ErrChainValidation(3, "hash mismatch"), "STO_002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

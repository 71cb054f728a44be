package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-ledger-service/internal/core/domain"
)

func TestTransactionPayload_ExactBytes(t *testing.T) {
	payload, err := TransactionPayload(domain.GenesisHash, domain.TransactionKindDeposit, decimal.NewFromInt(100), "1")
	require.NoError(t, err)

	// 32 raw zero bytes followed by the fixed-order serialization.
	require.Len(t, payload, domain.DigestSize+len(`{"v":1,"kind":"deposit","amount":"100","id":"1"}`))
	assert.Equal(t, make([]byte, domain.DigestSize), payload[:domain.DigestSize])
	assert.Equal(t, `{"v":1,"kind":"deposit","amount":"100","id":"1"}`, string(payload[domain.DigestSize:]))
}

func TestTransactionPayload_Deterministic(t *testing.T) {
	amount := decimal.RequireFromString("12.50")
	a, err := TransactionPayload(domain.GenesisHash, domain.TransactionKindWithdraw, amount, "alice")
	require.NoError(t, err)
	b, err := TransactionPayload(domain.GenesisHash, domain.TransactionKindWithdraw, amount, "alice")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTransactionPayload_RejectsBadPrevHash(t *testing.T) {
	_, err := TransactionPayload("not-hex", domain.TransactionKindDeposit, decimal.NewFromInt(1), "1")
	assert.Error(t, err)

	_, err = TransactionPayload("abcd", domain.TransactionKindDeposit, decimal.NewFromInt(1), "1")
	assert.Error(t, err, "short digest must be rejected")
}

func TestMessageBytes_FieldOrderAndOmission(t *testing.T) {
	amount := decimal.NewFromInt(10)

	assert.Equal(t,
		`{"cmd":"balance","id":"1"}`,
		string(MessageBytes("balance", "1", nil, "")))

	assert.Equal(t,
		`{"cmd":"deposit","id":"1","amount":"10"}`,
		string(MessageBytes("deposit", "1", &amount, "")))

	assert.Equal(t,
		`{"cmd":"register","id":"1","publickey":"aabb"}`,
		string(MessageBytes("register", "1", nil, "aabb")))
}

func TestMessageBytes_EscapesStrings(t *testing.T) {
	got := string(MessageBytes("balance", `quo"te`, nil, ""))
	assert.Equal(t, `{"cmd":"balance","id":"quo\"te"}`, got)
}

func TestCommandBytes_MatchesMessageBytes(t *testing.T) {
	amount := decimal.NewFromInt(30)

	tests := []struct {
		name string
		cmd  domain.Command
		want []byte
	}{
		{"register", domain.RegisterCommand{ID: "1", PublicKey: "ff"}, MessageBytes("register", "1", nil, "ff")},
		{"balance", domain.BalanceCommand{ID: "1", Signature: "ignored"}, MessageBytes("balance", "1", nil, "")},
		{"deposit", domain.DepositCommand{ID: "1", Amount: amount, Signature: "ignored"}, MessageBytes("deposit", "1", &amount, "")},
		{"withdraw", domain.WithdrawCommand{ID: "1", Amount: amount, Signature: "ignored"}, MessageBytes("withdraw", "1", &amount, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandBytes(tt.cmd), "signature field must never leak into the canonical form")
		})
	}
}

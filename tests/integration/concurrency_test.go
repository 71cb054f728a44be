package integration

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-ledger-service/internal/teller"
)

// TestConcurrentWithdrawsCannotOverdraft fires two simultaneous withdrawals
// that are each individually covered by the balance but together exceed it.
// The check-then-act critical section must let exactly one through.
func TestConcurrentWithdrawsCannotOverdraft(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("1")
	require.NoError(t, err)
	_, err = app.deposit("1", "100")
	require.NoError(t, err)

	// Pre-sign both requests so the goroutines only race on the server.
	requests := []struct {
		amount string
	}{{"70"}, {"60"}}

	responses := make([]*teller.Response, len(requests))
	errs := make([]error, len(requests))

	var wg sync.WaitGroup
	for i, r := range requests {
		wg.Add(1)
		go func(i int, amount string) {
			defer wg.Done()
			responses[i], errs[i] = app.client.Send(
				teller.Sign(teller.Withdraw("1", decimal.RequireFromString(amount)), app.key("1")))
		}(i, r.amount)
	}
	wg.Wait()

	var successes, rejections int
	for i := range requests {
		if errs[i] == nil {
			successes++
		} else {
			rejections++
			require.NotNil(t, responses[i])
			assert.Contains(t, responses[i].Error, "unable to withdraw")
		}
	}
	assert.Equal(t, 1, successes, "exactly one withdrawal may pass the funds check")
	assert.Equal(t, 1, rejections)

	resp, err := app.balance("1")
	require.NoError(t, err)
	assert.False(t, resp.Balance.IsNegative(), "final balance must never be negative")
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(30)) || resp.Balance.Equal(decimal.NewFromInt(40)))
}

// TestConcurrentDepositsAllLand runs many parallel deposits and checks the
// fold equals the sum, i.e. no append was lost to a race.
func TestConcurrentDepositsAllLand(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("1")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.client.Send(
				teller.Sign(teller.Deposit("1", decimal.NewFromInt(5)), app.key("1")))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	resp, err := app.balance("1")
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(workers*5)))
}

// TestRegisterAndBalanceRunConcurrently interleaves registrations of new
// customers with reads of an existing one.
func TestRegisterAndBalanceRunConcurrently(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("reader")
	require.NoError(t, err)
	_, err = app.deposit("reader", "42")
	require.NoError(t, err)

	const rounds = 10
	var wg sync.WaitGroup
	registerErrs := make([]error, rounds)
	balanceErrs := make([]error, rounds)

	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, registerErrs[i] = app.register(string(rune('a' + i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			resp, err := app.client.Send(
				teller.Sign(teller.Balance("reader"), app.key("reader")))
			if err == nil && !resp.Balance.Equal(decimal.NewFromInt(42)) {
				err = assert.AnError
			}
			balanceErrs[i] = err
		}(i)
	}
	wg.Wait()

	for i := 0; i < rounds; i++ {
		assert.NoError(t, registerErrs[i])
		assert.NoError(t, balanceErrs[i])
	}
}

package integration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullScenario walks the canonical customer session: register, fund the
// account, withdraw within funds, then get rejected on an overdraw attempt
// without the balance moving.
func TestFullScenario(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := app.register("1")
	require.NoError(t, err)
	assert.Equal(t, "register", resp.Cmd)
	assert.Equal(t, "1", resp.ID)

	resp, err = app.deposit("1", "100")
	require.NoError(t, err)
	assert.Equal(t, "balance", resp.Cmd)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(100)))

	resp, err = app.withdraw("1", "30")
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(70)))

	resp, err = app.withdraw("1", "1000")
	require.Error(t, err)
	assert.Contains(t, resp.Error, "unable to withdraw 1000 when current funds are 70")

	resp, err = app.balance("1")
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(70)), "a rejected withdrawal must not move the balance")
}

func TestUnregisteredCustomerIsRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := app.balance("ghost")
	require.Error(t, err)
	assert.Contains(t, resp.Error, "not registered")

	resp, err = app.deposit("ghost", "10")
	require.Error(t, err)
	assert.Contains(t, resp.Error, "not registered")
}

func TestDuplicateRegistrationIsRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("1")
	require.NoError(t, err)

	resp, err := app.register("1")
	require.Error(t, err)
	assert.Contains(t, resp.Error, "already registered")
}

func TestTamperedSignatureIsRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("1")
	require.NoError(t, err)
	_, err = app.deposit("1", "50")
	require.NoError(t, err)

	// Signed by a key the server has never seen for this id.
	app.setKey("1", app.key("never-registered"))
	resp, err := app.withdraw("1", "10")
	require.Error(t, err)
	assert.Contains(t, resp.Error, "signature")
}

func TestTwoAccountsAreIndependent(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("1")
	require.NoError(t, err)
	_, err = app.register("2")
	require.NoError(t, err)

	respA, err := app.deposit("1", "10")
	require.NoError(t, err)
	respB, err := app.deposit("2", "100")
	require.NoError(t, err)

	assert.True(t, respA.Balance.Equal(decimal.NewFromInt(10)))
	assert.True(t, respB.Balance.Equal(decimal.NewFromInt(100)))
}

func TestUnknownCommandGetsErrorReply(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, err := app.register("1")
	require.NoError(t, err)

	req := struct {
		Cmd string `json:"cmd"`
		ID  string `json:"id"`
	}{Cmd: "transfer", ID: "1"}

	resp, err := sendRaw(t, app.server.Addr().String(), req)
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "unknown command")
}

// TestBalancesSurviveRestart stores a few transactions, tears the whole
// stack down and brings it back up on the same data dir.
func TestBalancesSurviveRestart(t *testing.T) {
	dataDir := t.TempDir()

	app := newTestAppAt(t, dataDir)
	_, err := app.register("1")
	require.NoError(t, err)
	_, err = app.deposit("1", "100")
	require.NoError(t, err)
	_, err = app.withdraw("1", "30")
	require.NoError(t, err)
	customerKey := app.key("1")
	app.close()

	restarted := newTestAppAt(t, dataDir)
	defer restarted.close()
	restarted.setKey("1", customerKey)

	resp, err := restarted.balance("1")
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(70)))
}

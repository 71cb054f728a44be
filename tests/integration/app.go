package integration

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"secure-ledger-service/internal/adapter/storage/file"
	"secure-ledger-service/internal/adapter/tcp"
	"secure-ledger-service/internal/service"
	"secure-ledger-service/internal/teller"
	"secure-ledger-service/pkg/logger"
)

// testApp wires the full server stack against a temp data directory and a
// real TCP listener on an ephemeral port.
type testApp struct {
	t       *testing.T
	dataDir string
	server  *tcp.Server
	client  *teller.Client

	// customer secret keys by id, so tests can sign requests; guarded
	// because some tests register from multiple goroutines
	keyMu sync.Mutex
	keys  map[string]ed25519.PrivateKey
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppAt(t, t.TempDir())
}

// newTestAppAt starts the stack on an existing data dir, used to exercise
// restart behavior.
func newTestAppAt(t *testing.T, dataDir string) *testApp {
	t.Helper()
	ctx := context.Background()
	log := logger.NewWithWriter("error", discard{})

	keystore := file.NewKeystore(dataDir)
	_, signKey, err := keystore.Load(ctx)
	require.NoError(t, err)

	ledgerSvc := service.NewLedgerService(file.NewLedgerRepo(dataDir), signKey, log)
	registrySvc := service.NewRegistryService(file.NewRegistryRepo(dataDir), log)

	require.NoError(t, registrySvc.Restore(ctx))
	require.NoError(t, ledgerSvc.Restore(ctx))

	srv := tcp.NewServer(ledgerSvc, registrySvc, service.NewAuthorizer(registrySvc), log)
	require.NoError(t, srv.Listen("127.0.0.1:0"))
	go srv.Serve() //nolint:errcheck

	return &testApp{
		t:       t,
		dataDir: dataDir,
		server:  srv,
		client:  teller.NewClient(srv.Addr().String()),
		keys:    make(map[string]ed25519.PrivateKey),
	}
}

func (a *testApp) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(a.t, a.server.Shutdown(ctx))
}

// register creates a fresh keypair for id and registers it.
func (a *testApp) register(id string) (*teller.Response, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(a.t, err)
	a.keyMu.Lock()
	a.keys[id] = priv
	a.keyMu.Unlock()
	return a.client.Send(teller.Register(id, pub))
}

func (a *testApp) balance(id string) (*teller.Response, error) {
	return a.client.Send(teller.Sign(teller.Balance(id), a.key(id)))
}

func (a *testApp) deposit(id, amount string) (*teller.Response, error) {
	return a.client.Send(teller.Sign(teller.Deposit(id, decimal.RequireFromString(amount)), a.key(id)))
}

func (a *testApp) withdraw(id, amount string) (*teller.Response, error) {
	return a.client.Send(teller.Sign(teller.Withdraw(id, decimal.RequireFromString(amount)), a.key(id)))
}

// setKey replaces the stored secret key for id, to simulate signing with
// the wrong key or to carry a key across a restart.
func (a *testApp) setKey(id string, priv ed25519.PrivateKey) {
	a.keyMu.Lock()
	a.keys[id] = priv
	a.keyMu.Unlock()
}

// key returns the stored secret key for id, or a throwaway key for
// customers that never registered.
func (a *testApp) key(id string) ed25519.PrivateKey {
	a.keyMu.Lock()
	priv, ok := a.keys[id]
	a.keyMu.Unlock()
	if ok {
		return priv
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(a.t, err)
	return priv
}

// sendRaw performs one exchange with an arbitrary payload, bypassing the
// teller's request builders.
func sendRaw(t *testing.T, addr string, payload interface{}) (*teller.Response, error) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, json.NewEncoder(conn).Encode(payload))

	var resp teller.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Package tcp implements the protocol server: one JSON message per
// connection, one reply, then the connection closes. Failures anywhere in
// the pipeline become an {error} reply on the same connection.
package tcp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"secure-ledger-service/internal/core/domain"
	"secure-ledger-service/internal/core/ports"
	"secure-ledger-service/pkg/apperror"
	"secure-ledger-service/pkg/response"
)

const connectionTimeout = 30 * time.Second

// Server accepts connections concurrently and routes each message through
// authorize-then-execute. Serialization of the money operations lives in
// the ledger service, not here.
type Server struct {
	ledger   ports.LedgerService
	registry ports.RegistryService
	auth     ports.Authorizer
	log      zerolog.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a Server. Call Listen then Serve.
func NewServer(ledger ports.LedgerService, registry ports.RegistryService, auth ports.Authorizer, log zerolog.Logger) *Server {
	return &Server{
		ledger:   ledger,
		registry: registry,
		auth:     auth,
		log:      log,
	}
}

// Listen binds the TCP listener.
func (s *Server) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Addr returns the bound listen address, useful when the port was 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed. Each connection
// is handled on its own goroutine.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting and waits for in-flight connections, bounded by
// ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener != nil {
		s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleConn processes exactly one request and writes exactly one reply,
// on both the success and the failure path.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	log := s.log.With().
		Str("request_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	if err := conn.SetDeadline(time.Now().Add(connectionTimeout)); err != nil {
		log.Debug().Err(err).Msg("setting connection deadline")
	}

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("rejecting undecodable message")
		s.reply(conn, log, response.FromError(apperror.ErrMalformedMessage("request is not a valid JSON message")))
		return
	}

	log = log.With().Str("cmd", req.Cmd).Str("customer_id", req.ID).Logger()

	result, err := s.dispatch(context.Background(), req)
	if err != nil {
		log.Warn().Err(err).Msg("request rejected")
		s.reply(conn, log, response.FromError(err))
		return
	}

	log.Info().Msg("request served")
	s.reply(conn, log, result)
}

// dispatch decodes, authorizes and executes one command. Authorization runs
// strictly before any ledger operation; a failure here leaves the chain
// untouched.
func (s *Server) dispatch(ctx context.Context, req Request) (interface{}, error) {
	cmd, err := req.ToCommand()
	if err != nil {
		return nil, err
	}

	if err := s.auth.Authorize(cmd); err != nil {
		return nil, err
	}

	switch c := cmd.(type) {
	case domain.RegisterCommand:
		if err := s.registry.Register(ctx, c.ID, c.PublicKey); err != nil {
			return nil, err
		}
		return response.NewRegistered(c.ID), nil

	case domain.BalanceCommand:
		balance, err := s.ledger.Balance(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		return response.NewBalance(balance), nil

	case domain.DepositCommand:
		balance, err := s.ledger.Deposit(ctx, c.ID, c.Amount)
		if err != nil {
			return nil, err
		}
		return response.NewBalance(balance), nil

	case domain.WithdrawCommand:
		balance, err := s.ledger.Withdraw(ctx, c.ID, c.Amount)
		if err != nil {
			return nil, err
		}
		return response.NewBalance(balance), nil

	default:
		return nil, apperror.ErrUnknownCommand(cmd.Name())
	}
}

func (s *Server) reply(conn net.Conn, log zerolog.Logger, v interface{}) {
	if err := json.NewEncoder(conn).Encode(v); err != nil {
		log.Error().Err(err).Msg("writing reply failed")
	}
}

// Package teller is the customer side of the protocol: it builds one
// request, signs it with the customer's secret key, sends it over a fresh
// TCP connection and reads the single reply.
package teller

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/shopspring/decimal"

	"secure-ledger-service/internal/adapter/tcp"
	"secure-ledger-service/internal/service"
)

// Response is the superset of reply fields the server can send back.
type Response struct {
	Cmd     string           `json:"cmd,omitempty"`
	ID      string           `json:"id,omitempty"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Client sends one signed message per call to a ledger server.
type Client struct {
	Addr    string
	Timeout time.Duration
}

// NewClient creates a client for addr.
func NewClient(addr string) *Client {
	return &Client{Addr: addr, Timeout: 10 * time.Second}
}

// Register builds the unsigned registration message for id.
func Register(id string, publicKey ed25519.PublicKey) tcp.Request {
	return tcp.Request{Cmd: "register", ID: id, PublicKey: hex.EncodeToString(publicKey)}
}

// Balance builds a balance request for id.
func Balance(id string) tcp.Request {
	return tcp.Request{Cmd: "balance", ID: id}
}

// Deposit builds a deposit request for id.
func Deposit(id string, amount decimal.Decimal) tcp.Request {
	return tcp.Request{Cmd: "deposit", ID: id, Amount: &amount}
}

// Withdraw builds a withdraw request for id.
func Withdraw(id string, amount decimal.Decimal) tcp.Request {
	return tcp.Request{Cmd: "withdraw", ID: id, Amount: &amount}
}

// Sign attaches the customer's detached signature over the canonical byte
// form of req with the signature field removed.
func Sign(req tcp.Request, secretKey ed25519.PrivateKey) tcp.Request {
	message := service.MessageBytes(req.Cmd, req.ID, req.Amount, req.PublicKey)
	req.Signature = hex.EncodeToString(ed25519.Sign(secretKey, message))
	return req
}

// Send performs one request/reply exchange. A reply carrying an error field
// is returned as a Go error.
func (c *Client) Send(req tcp.Request) (*Response, error) {
	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.Addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
		return nil, fmt.Errorf("setting connection deadline: %w", err)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	if resp.Error != "" {
		return &resp, fmt.Errorf("server rejected request: %s", resp.Error)
	}
	return &resp, nil
}

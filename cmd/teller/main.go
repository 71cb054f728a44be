// Command teller is the customer CLI: it builds one request, signs it,
// sends it to the ledger server and prints the reply.
//
// Usage:
//
//	teller register <id>
//	teller balance <id>
//	teller deposit <id> <amount>
//	teller withdraw <id> <amount>
//
// The server address defaults to 127.0.0.1:3876 and can be overridden with
// TELLER_ADDR; keypairs are stored under TELLER_KEY_DIR (default ./teller-keys).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"secure-ledger-service/internal/adapter/tcp"
	"secure-ledger-service/internal/teller"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		usage()
	}
	command, id := args[0], args[1]

	addr := envOr("TELLER_ADDR", "127.0.0.1:3876")
	keyDir := envOr("TELLER_KEY_DIR", "./teller-keys")

	keyring := teller.NewKeyring(keyDir)
	client := teller.NewClient(addr)

	req, err := buildRequest(keyring, command, id, args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	resp, err := client.Send(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, _ := json.Marshal(resp)
	fmt.Println(string(out))
}

func buildRequest(keyring *teller.Keyring, command, id string, rest []string) (tcp.Request, error) {
	switch command {
	case "register":
		pub, err := keyring.Create(id)
		if err != nil {
			return tcp.Request{}, err
		}
		return teller.Register(id, pub), nil

	case "balance":
		return signed(keyring, id, teller.Balance(id))

	case "deposit", "withdraw":
		if len(rest) < 1 {
			usage()
		}
		amount, err := decimal.NewFromString(rest[0])
		if err != nil {
			return tcp.Request{}, fmt.Errorf("parsing amount %q: %w", rest[0], err)
		}
		if command == "deposit" {
			return signed(keyring, id, teller.Deposit(id, amount))
		}
		return signed(keyring, id, teller.Withdraw(id, amount))

	default:
		usage()
		return tcp.Request{}, nil
	}
}

func signed(keyring *teller.Keyring, id string, req tcp.Request) (tcp.Request, error) {
	secretKey, err := keyring.SecretKey(id)
	if err != nil {
		return tcp.Request{}, err
	}
	return teller.Sign(req, secretKey), nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: teller register|balance <id> | teller deposit|withdraw <id> <amount>")
	os.Exit(2)
}

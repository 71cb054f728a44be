package service

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"secure-ledger-service/internal/core/domain"
)

// canonicalVersion is embedded in every hashed transaction payload. Any
// change to field order, formatting or digest construction must bump it,
// otherwise chains written by different builds stop cross-verifying.
const canonicalVersion = 1

// TransactionPayload builds the exact byte sequence that is hashed and
// signed for a chain entry: the raw previous digest followed by a
// fixed-order serialization of the logical fields. The signature field is
// never part of it.
func TransactionPayload(prevHashHex string, kind domain.TransactionKind, amount decimal.Decimal, customerID string) ([]byte, error) {
	prev, err := hex.DecodeString(prevHashHex)
	if err != nil {
		return nil, fmt.Errorf("decoding prev hash: %w", err)
	}
	if len(prev) != domain.DigestSize {
		return nil, fmt.Errorf("prev hash is %d bytes, want %d", len(prev), domain.DigestSize)
	}

	var buf bytes.Buffer
	buf.Write(prev)
	buf.WriteString(fmt.Sprintf(`{"v":%d,"kind":`, canonicalVersion))
	writeJSONString(&buf, string(kind))
	buf.WriteString(`,"amount":`)
	writeJSONString(&buf, amount.String())
	buf.WriteString(`,"id":`)
	writeJSONString(&buf, customerID)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MessageBytes builds the canonical byte form of a request message for
// signing and verification: the message fields in fixed order with the
// signature field removed. Absent fields are omitted entirely, so producer
// and verifier agree byte for byte.
func MessageBytes(cmd string, customerID string, amount *decimal.Decimal, publicKeyHex string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"cmd":`)
	writeJSONString(&buf, cmd)
	buf.WriteString(`,"id":`)
	writeJSONString(&buf, customerID)
	if amount != nil {
		buf.WriteString(`,"amount":`)
		writeJSONString(&buf, amount.String())
	}
	if publicKeyHex != "" {
		buf.WriteString(`,"publickey":`)
		writeJSONString(&buf, publicKeyHex)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// CommandBytes returns the canonical form of a decoded command, the exact
// bytes the customer must have signed.
func CommandBytes(cmd domain.Command) []byte {
	switch c := cmd.(type) {
	case domain.RegisterCommand:
		return MessageBytes(c.Name(), c.ID, nil, c.PublicKey)
	case domain.BalanceCommand:
		return MessageBytes(c.Name(), c.ID, nil, "")
	case domain.DepositCommand:
		return MessageBytes(c.Name(), c.ID, &c.Amount, "")
	case domain.WithdrawCommand:
		return MessageBytes(c.Name(), c.ID, &c.Amount, "")
	default:
		return nil
	}
}

// writeJSONString appends a JSON-escaped string literal. json.Marshal on a
// string cannot fail.
func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

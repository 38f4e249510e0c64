// Package wire defines the control-plane packet formats carried in single
// UDP datagrams as UTF-8 JSON objects (spec.md §6.1). Decode sniffs the
// "type" discriminator once and produces a tagged variant: callers never
// carry an untyped map past this package, matching the teacher's decoded
// Packet/Header split in pkt.Packet, generalized here from a binary header
// to a JSON tag.
package wire

import (
	"encoding/json"
	"fmt"
)

// Type discriminates the three control-plane packet kinds.
type Type string

const (
	TypeHello Type = "HELLO"
	TypeLSA   Type = "LSA"
	TypeData  Type = "DATA"
)

// Hello is a periodic neighbor-discovery beacon.
type Hello struct {
	Type           Type     `json:"type"`
	RouterID       string   `json:"router_id"`
	Timestamp      float64  `json:"timestamp"`
	IPAddress      string   `json:"ip_address"`
	KnownNeighbors []string `json:"known_neighbors"`
}

// LSA is a Link-State Advertisement: an origin's immutable announcement of
// its links and reachable addresses, tagged by a monotonic sequence number.
type LSA struct {
	Type           Type           `json:"type"`
	RouterID       string         `json:"router_id"`
	SequenceNumber int            `json:"sequence_number"`
	Timestamp      float64        `json:"timestamp"`
	Addresses      []string       `json:"addresses"`
	Links          map[string]int `json:"links"`
}

// Data is the optional data-plane demonstrator packet.
type Data struct {
	Type        Type    `json:"type"`
	RouterID    string  `json:"router_id"`
	Destination string  `json:"destination"`
	Message     string  `json:"message"`
	Timestamp   float64 `json:"timestamp"`
}

// Packet is a tagged union over the three wire formats. Exactly one field
// is non-nil after a successful Decode.
type Packet struct {
	Hello *Hello
	LSA   *LSA
	Data  *Data
}

// RouterID returns the origin router id of whichever variant is set.
func (p *Packet) RouterID() string {
	switch {
	case p.Hello != nil:
		return p.Hello.RouterID
	case p.LSA != nil:
		return p.LSA.RouterID
	case p.Data != nil:
		return p.Data.RouterID
	default:
		return ""
	}
}

type envelope struct {
	Type Type `json:"type"`
}

// Decode parses a single UDP datagram's JSON payload into a tagged Packet.
// Malformed JSON, a missing/unknown "type", or a type-mismatched field
// returns an error; the caller is expected to drop the datagram and
// continue (spec.md §7's protocol-parse-error policy).
func Decode(raw []byte) (*Packet, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("wire: malformed packet: %w", err)
	}

	switch env.Type {
	case TypeHello:
		var h Hello
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("wire: malformed HELLO packet: %w", err)
		}
		return &Packet{Hello: &h}, nil
	case TypeLSA:
		var l LSA
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("wire: malformed LSA packet: %w", err)
		}
		return &Packet{LSA: &l}, nil
	case TypeData:
		var d Data
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("wire: malformed DATA packet: %w", err)
		}
		return &Packet{Data: &d}, nil
	default:
		return nil, fmt.Errorf("wire: unknown packet type %q", env.Type)
	}
}

// Encode marshals a Hello packet, stamping its Type discriminator.
func (h *Hello) Encode() ([]byte, error) {
	h.Type = TypeHello
	return json.Marshal(h)
}

// Encode marshals an LSA packet, stamping its Type discriminator.
func (l *LSA) Encode() ([]byte, error) {
	l.Type = TypeLSA
	return json.Marshal(l)
}

// Encode marshals a Data packet, stamping its Type discriminator.
func (d *Data) Encode() ([]byte, error) {
	d.Type = TypeData
	return json.Marshal(d)
}

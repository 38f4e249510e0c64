package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeHello(t *testing.T) {
	h := &Hello{
		RouterID:       "R1",
		Timestamp:      1.5,
		IPAddress:      "10.0.0.1",
		KnownNeighbors: []string{"R2", "R3"},
	}
	raw, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Hello == nil {
		t.Fatalf("Decode: expected Hello variant, got %+v", got)
	}
	if diff := cmp.Diff(h, got.Hello); diff != "" {
		t.Errorf("Decode round-trip mismatch (-want +got):\n%s", diff)
	}
	if got.RouterID() != "R1" {
		t.Errorf("RouterID() = %q, want R1", got.RouterID())
	}
}

func TestDecodeLSA(t *testing.T) {
	l := &LSA{
		RouterID:       "R2",
		SequenceNumber: 4,
		Timestamp:      9.0,
		Addresses:      []string{"10.0.0.2", "192.168.1.0/24"},
		Links:          map[string]int{"R1": 1, "R3": 7},
	}
	raw, err := l.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.LSA == nil {
		t.Fatalf("Decode: expected LSA variant, got %+v", got)
	}
	if diff := cmp.Diff(l, got.LSA); diff != "" {
		t.Errorf("Decode round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeData(t *testing.T) {
	d := &Data{RouterID: "R1", Destination: "R4", Message: "hi", Timestamp: 2}
	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Data == nil {
		t.Fatalf("Decode: expected Data variant, got %+v", got)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"BOGUS"}`))
	if err == nil {
		t.Fatal("Decode: expected error for unknown type")
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Fatal("Decode: expected error for malformed JSON")
	}
}

func TestDecodeWrongFieldType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"LSA","router_id":"R1","sequence_number":"not-a-number"}`))
	if err == nil {
		t.Fatal("Decode: expected error for wrong field type")
	}
}

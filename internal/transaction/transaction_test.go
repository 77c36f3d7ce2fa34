package transaction

import (
	"bytes"
	"testing"
)

func TestNewUnsigned(t *testing.T) {
	tx := New(PostCreated, []byte("hello"))
	if tx.IsSigned() {
		t.Fatal("freshly constructed transaction must not be signed")
	}
	if tx.Kind != PostCreated {
		t.Fatalf("kind = %v, want PostCreated", tx.Kind)
	}
	if !bytes.Equal(tx.Payload, []byte("hello")) {
		t.Fatalf("payload = %q, want %q", tx.Payload, "hello")
	}
}

func TestSignSetsSignature(t *testing.T) {
	tx := New(VoteCast, []byte("ballot"))
	tx.Sign([]byte("sig-bytes"))
	if !tx.IsSigned() {
		t.Fatal("expected IsSigned true after Sign")
	}
	if !bytes.Equal(tx.Signature, []byte("sig-bytes")) {
		t.Fatalf("signature = %q, want %q", tx.Signature, "sig-bytes")
	}
}

func TestHashDeterministic(t *testing.T) {
	tx := New(CommentAdded, []byte("nice post"))
	h1, err := tx.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := tx.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Fatal("Hash must be a pure function of transaction content")
	}
}

func TestHashChangesWithPayload(t *testing.T) {
	a := New(PostCreated, []byte("a"))
	b := New(PostCreated, []byte("b"))
	// force identical id/timestamp so only payload differs
	b.ID = a.ID
	b.Timestamp = a.Timestamp

	ha, _ := a.Hash()
	hb, _ := b.Hash()
	if ha == hb {
		t.Fatal("differing payloads must not hash identically")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tx := New(FundingCreated, []byte("campaign-1"))
	tx.Sign([]byte("s"))

	encoded := tx.Serialize()
	decoded, err := Deserialize(encoded)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !tx.Equal(decoded) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, tx)
	}
}

func TestDeserializeRejectsTruncatedInput(t *testing.T) {
	tx := New(EventAdded, []byte("meetup"))
	encoded := tx.Serialize()
	if _, err := Deserialize(encoded[:len(encoded)-4]); err == nil {
		t.Fatal("expected error decoding truncated input")
	}
}

func TestEqualNilHandling(t *testing.T) {
	var a, b *Transaction
	if !a.Equal(b) {
		t.Fatal("two nil transactions must be equal")
	}
	tx := New(RsvpChanged, []byte("yes"))
	if tx.Equal(nil) || (*Transaction)(nil).Equal(tx) {
		t.Fatal("nil must never equal a non-nil transaction")
	}
}

func TestTypeStringAndValid(t *testing.T) {
	if !NodeAdded.Valid() {
		t.Fatal("NodeAdded must be a valid type")
	}
	if Type(255).Valid() {
		t.Fatal("255 must not be a valid type")
	}
	if NodeAdded.String() != "NodeAdded" {
		t.Fatalf("String() = %q, want NodeAdded", NodeAdded.String())
	}
	if Type(255).String() != "Unknown" {
		t.Fatalf("String() = %q, want Unknown", Type(255).String())
	}
}

// Package transaction implements the immutable event record that is the
// leaf unit of the social-production ledger.
package transaction

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Transaction is an immutable, structurally-equal event record. Fields are
// never mutated after construction except Signature, which Sign replaces
// wholesale.
type Transaction struct {
	ID        uuid.UUID
	Kind      Type
	Payload   []byte
	Timestamp int64
	Signature []byte
}

// New constructs an unsigned transaction with a fresh random identifier and
// the current wall-clock timestamp.
func New(kind Type, payload []byte) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		Kind:      kind,
		Payload:   append([]byte(nil), payload...),
		Timestamp: time.Now().Unix(),
		Signature: nil,
	}
}

// Sign attaches a signature, replacing any previous value. The signature is
// carried opaquely; this package never validates it.
func (tx *Transaction) Sign(signature []byte) {
	tx.Signature = append([]byte(nil), signature...)
}

// IsSigned reports whether a non-empty signature has been attached.
func (tx *Transaction) IsSigned() bool {
	return len(tx.Signature) > 0
}

// Equal reports structural equality across all fields.
func (tx *Transaction) Equal(other *Transaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	return tx.ID == other.ID &&
		tx.Kind == other.Kind &&
		bytes.Equal(tx.Payload, other.Payload) &&
		tx.Timestamp == other.Timestamp &&
		bytes.Equal(tx.Signature, other.Signature)
}

// canonicalBytes produces the deterministic, little-endian, length-prefixed
// serialisation of every field in declaration order. This is the input to
// Hash and must never change shape across releases.
func (tx *Transaction) canonicalBytes() []byte {
	var buf bytes.Buffer

	idBytes, _ := tx.ID.MarshalBinary() // uuid.UUID.MarshalBinary never errors
	buf.Write(idBytes)

	binary.Write(&buf, binary.LittleEndian, uint8(tx.Kind))

	writeBytes(&buf, tx.Payload)

	binary.Write(&buf, binary.LittleEndian, tx.Timestamp)

	writeBytes(&buf, tx.Signature)

	return buf.Bytes()
}

// writeBytes appends a little-endian uint32 length prefix followed by b.
func writeBytes(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}

// readBytes reads a length-prefixed byte slice written by writeBytes.
func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Hash returns the deterministic 32-byte SHA-256 digest of the transaction's
// canonical serialisation. Reproducible across peers and releases.
func (tx *Transaction) Hash() ([32]byte, error) {
	digest := sha256.Sum256(tx.canonicalBytes())
	return digest, nil
}

// Serialize encodes the transaction for the gossip wire format: the same
// canonical layout used for hashing, so decoding and hashing stay in sync.
func (tx *Transaction) Serialize() []byte {
	return tx.canonicalBytes()
}

// Deserialize decodes a Transaction previously produced by Serialize.
func Deserialize(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)

	idBytes := make([]byte, 16)
	if _, err := r.Read(idBytes); err != nil {
		return nil, fmt.Errorf("transaction: decode id: %w", err)
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return nil, fmt.Errorf("transaction: decode id: %w", err)
	}

	var kindByte uint8
	if err := binary.Read(r, binary.LittleEndian, &kindByte); err != nil {
		return nil, fmt.Errorf("transaction: decode kind: %w", err)
	}

	payload, err := readBytes(r)
	if err != nil {
		return nil, fmt.Errorf("transaction: decode payload: %w", err)
	}

	var ts int64
	if err := binary.Read(r, binary.LittleEndian, &ts); err != nil {
		return nil, fmt.Errorf("transaction: decode timestamp: %w", err)
	}

	sig, err := readBytes(r)
	if err != nil {
		return nil, fmt.Errorf("transaction: decode signature: %w", err)
	}

	return &Transaction{
		ID:        id,
		Kind:      Type(kindByte),
		Payload:   payload,
		Timestamp: ts,
		Signature: sig,
	}, nil
}

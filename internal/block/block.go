// Package block implements the transaction-bundle unit of the ledger: a
// header locked by a deterministic hash, plus a monotonically growing set
// of peer verifications.
package block

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/social-production/network/internal/merkle"
	"github.com/social-production/network/internal/transaction"
)

// MinVerifications is the number of distinct peer verifications a block
// needs to be considered finalised.
const MinVerifications = 3

// Block is a sequential unit of the chain: a header (height, prev hash,
// Merkle root, timestamp, nonce) plus the transaction bundle it commits to
// and the growing set of peers that have verified it.
//
// Block is immutable except for Verifications, which only ever grows.
type Block struct {
	Height        uint64
	PrevHash      [32]byte
	MerkleRoot    [32]byte
	Transactions  []*transaction.Transaction
	Timestamp     int64
	Nonce         uint64
	Verifications []string
}

// New builds a block on top of prevHash at the given height. Fails with
// ErrNoTransactions if txs is empty.
func New(height uint64, prevHash [32]byte, txs []*transaction.Transaction) (*Block, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	tree, err := merkle.Build(txs)
	if err != nil {
		return nil, fmt.Errorf("block: building merkle tree: %w", err)
	}
	root, err := tree.Root()
	if err != nil {
		return nil, fmt.Errorf("block: reading merkle root: %w", err)
	}

	return &Block{
		Height:        height,
		PrevHash:      prevHash,
		MerkleRoot:    root,
		Transactions:  txs,
		Timestamp:     time.Now().Unix(),
		Nonce:         0,
		Verifications: nil,
	}, nil
}

// Genesis returns the deterministic genesis block. Every honest node must
// construct the identical value: height 0, all-zero prev hash, timestamp 0,
// one placeholder NodeAdded transaction, zero nonce, no verifications.
func Genesis() *Block {
	placeholder := &transaction.Transaction{
		Kind:      transaction.NodeAdded,
		Payload:   []byte("genesis"),
		Timestamp: 0,
	}
	txs := []*transaction.Transaction{placeholder}

	tree, err := merkle.Build(txs)
	if err != nil {
		panic("block: genesis merkle tree must always build: " + err.Error())
	}
	root, err := tree.Root()
	if err != nil {
		panic("block: genesis merkle root must always exist: " + err.Error())
	}

	return &Block{
		Height:        0,
		PrevHash:      [32]byte{},
		MerkleRoot:    root,
		Transactions:  txs,
		Timestamp:     0,
		Nonce:         0,
		Verifications: nil,
	}
}

// Hash computes the header hash: SHA-256 over
// height‖prev_hash‖merkle_root‖timestamp‖nonce, little-endian, deliberately
// excluding Transactions and Verifications so that verifications
// accumulating after creation never mutate the value the next block's
// PrevHash locks in.
func (b *Block) Hash() [32]byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, b.Height)
	buf.Write(b.PrevHash[:])
	buf.Write(b.MerkleRoot[:])
	binary.Write(&buf, binary.LittleEndian, b.Timestamp)
	binary.Write(&buf, binary.LittleEndian, b.Nonce)
	return sha256.Sum256(buf.Bytes())
}

// AddVerification records a peer verification if not already present.
// Idempotent: duplicate calls for the same peer neither grow the set nor
// flip finalisation. Returns whether the block is finalised after the
// call, not whether this call caused the transition.
func (b *Block) AddVerification(peerID string) bool {
	for _, existing := range b.Verifications {
		if existing == peerID {
			return b.IsFinalised()
		}
	}
	b.Verifications = append(b.Verifications, peerID)
	return b.IsFinalised()
}

// IsFinalised reports whether at least MinVerifications distinct peers have
// verified this block. Monotonic: once true, always true.
func (b *Block) IsFinalised() bool {
	return len(b.Verifications) >= MinVerifications
}

// Clone returns a deep copy sufficient for safe chain-replacement
// (sync_from) without aliasing the receiver's slices.
func (b *Block) Clone() *Block {
	txs := make([]*transaction.Transaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		cp := *tx
		cp.Payload = append([]byte(nil), tx.Payload...)
		cp.Signature = append([]byte(nil), tx.Signature...)
		txs[i] = &cp
	}
	verifications := append([]string(nil), b.Verifications...)

	return &Block{
		Height:        b.Height,
		PrevHash:      b.PrevHash,
		MerkleRoot:    b.MerkleRoot,
		Transactions:  txs,
		Timestamp:     b.Timestamp,
		Nonce:         b.Nonce,
		Verifications: verifications,
	}
}

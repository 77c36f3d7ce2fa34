// Package merkle builds binary Merkle-tree commitments over an ordered
// transaction list and produces/verifies inclusion proofs against a root.
package merkle

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
	"github.com/social-production/network/internal/transaction"
)

// Tree holds every level of a built Merkle tree, leaf level first, so that
// proofs can be produced without rehashing.
type Tree struct {
	levels [][][32]byte
}

func hashPair(left, right [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return sha256.Sum256(buf[:])
}

// Build constructs a Merkle tree from an ordered, non-empty list of
// transactions. Fails with ErrEmpty if txs is empty.
func Build(txs []*transaction.Transaction) (*Tree, error) {
	if len(txs) == 0 {
		return nil, ErrEmpty
	}

	leaves := make([][32]byte, len(txs))
	for i, tx := range txs {
		h, err := tx.Hash()
		if err != nil {
			return nil, fmt.Errorf("merkle: hashing leaf %d: %w", i, err)
		}
		leaves[i] = h
	}

	levels := [][][32]byte{leaves}

	current := leaves
	for len(current) > 1 {
		if len(current)%2 != 0 {
			current = append(current, current[len(current)-1])
		}
		next := make([][32]byte, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			next[i/2] = hashPair(current[i], current[i+1])
		}
		levels = append(levels, next)
		current = next
	}

	return &Tree{levels: levels}, nil
}

// Root returns the top-level hash. Never fails after a successful Build.
func (t *Tree) Root() ([32]byte, error) {
	if len(t.levels) == 0 {
		return [32]byte{}, ErrEmpty
	}
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return [32]byte{}, ErrEmpty
	}
	return top[0], nil
}

// Proof builds an inclusion proof for the transaction identified by tx_id,
// resolving the leaf index by a linear scan of txs (the same slice used to
// build the tree).
func (t *Tree) Proof(txs []*transaction.Transaction, txID uuid.UUID) (*Proof, error) {
	index := -1
	for i, tx := range txs {
		if tx.ID == txID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, ErrNotFound
	}
	if len(t.levels) == 0 {
		return nil, ErrEmpty
	}

	leafHash := t.levels[0][index]
	var steps []ProofStep

	for levelIdx := 0; levelIdx < len(t.levels)-1; levelIdx++ {
		level := t.levels[levelIdx]
		padded := level
		if len(padded)%2 != 0 {
			padded = append(append([][32]byte(nil), padded...), padded[len(padded)-1])
		}

		var siblingIndex int
		var side Side
		if index%2 == 0 {
			siblingIndex = index + 1
			side = Right
		} else {
			siblingIndex = index - 1
			side = Left
		}

		steps = append(steps, ProofStep{Hash: padded[siblingIndex], Side: side})
		index /= 2
	}

	return &Proof{LeafHash: leafHash, Steps: steps}, nil
}

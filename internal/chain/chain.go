// Package chain holds the ordered sequence of blocks, the genesis-anchored
// invariant checks over that sequence, and the longest-chain adoption rule
// used during sync.
package chain

import (
	"fmt"
	"sync"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/transaction"
)

// Blockchain is the append-only, in-memory sequence of blocks anchored at
// genesis. All mutation is expected to happen from a single goroutine (the
// node's event loop); the mutex here only protects read access from
// external callers such as the host-facing snapshot API.
type Blockchain struct {
	mu     sync.RWMutex
	blocks []*block.Block
}

// New returns a chain containing only the genesis block.
func New() *Blockchain {
	return &Blockchain{blocks: []*block.Block{block.Genesis()}}
}

// Tip returns the most recently appended block.
func (c *Blockchain) Tip() *block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// Len returns the number of blocks in the chain, genesis included.
func (c *Blockchain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// Get returns the block at height, or ErrBlockNotFound if height is out of
// range.
func (c *Blockchain) Get(height uint64) (*block.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if height >= uint64(len(c.blocks)) {
		return nil, ErrBlockNotFound
	}
	return c.blocks[height], nil
}

// BlocksFrom returns a copy of every block from height start to the tip,
// inclusive. Returns an empty slice if start is beyond the tip.
func (c *Blockchain) BlocksFrom(start uint64) []*block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if start >= uint64(len(c.blocks)) {
		return nil
	}
	out := make([]*block.Block, 0, uint64(len(c.blocks))-start)
	for _, b := range c.blocks[start:] {
		out = append(out, b.Clone())
	}
	return out
}

// Append builds a new block on top of the current tip from txs and adds it
// to the chain.
func (c *Blockchain) Append(txs []*transaction.Transaction) (*block.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[len(c.blocks)-1]
	next, err := block.New(tip.Height+1, tip.Hash(), txs)
	if err != nil {
		return nil, fmt.Errorf("chain: appending block: %w", err)
	}
	c.blocks = append(c.blocks, next)
	return next, nil
}

// AppendBlock accepts an already-constructed block (e.g. received over
// gossip) if it extends the current tip: its Height must equal the
// chain's current length and its PrevHash must equal the tip's hash.
// Returns false without mutating the chain if either check fails.
func (c *Blockchain) AppendBlock(b *block.Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[len(c.blocks)-1]
	if b.Height != uint64(len(c.blocks)) || b.PrevHash != tip.Hash() {
		return false
	}
	c.blocks = append(c.blocks, b.Clone())
	return true
}

// Verify records a peer verification against the block at height and
// reports whether that block is now finalised.
func (c *Blockchain) Verify(height uint64, peerID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height >= uint64(len(c.blocks)) {
		return false, ErrBlockNotFound
	}
	return c.blocks[height].AddVerification(peerID), nil
}

// IsValid performs structural header-chain validation: heights form a
// contiguous 0-based sequence and each block's PrevHash matches the hash of
// the block immediately before it. It does not re-validate the genesis
// block's content against block.Genesis(), since a chain adopted from a
// peer is trusted structurally, not re-derived.
func (c *Blockchain) IsValid() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return isValid(c.blocks)
}

func isValid(blocks []*block.Block) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}
	for i, b := range blocks {
		if b.Height != uint64(i) {
			return ErrInvalidHeight
		}
		if i == 0 {
			continue
		}
		if b.PrevHash != blocks[i-1].Hash() {
			return ErrInvalidPrevHash
		}
	}
	return nil
}

// SyncFrom replaces the local chain with candidate if candidate is
// structurally valid and strictly longer than the local chain. Ties are
// broken in favour of the existing local chain. Returns whether the
// replacement happened.
func (c *Blockchain) SyncFrom(candidate []*block.Block) bool {
	if err := isValid(candidate); err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(candidate) <= len(c.blocks) {
		return false
	}

	cloned := make([]*block.Block, len(candidate))
	for i, b := range candidate {
		cloned[i] = b.Clone()
	}
	c.blocks = cloned
	return true
}

package chain

import "errors"

var (
	// ErrBlockNotFound is returned when a height has no corresponding block.
	ErrBlockNotFound = errors.New("chain: block not found")

	// ErrInvalidPrevHash is returned by IsValid when a block's PrevHash does
	// not match the hash of the block before it.
	ErrInvalidPrevHash = errors.New("chain: invalid prev hash")

	// ErrInvalidHeight is returned by IsValid when block heights are not a
	// contiguous sequence starting at zero.
	ErrInvalidHeight = errors.New("chain: invalid height sequence")

	// ErrEmptyChain is returned when an operation requires a populated chain
	// (every chain should always carry at least the genesis block).
	ErrEmptyChain = errors.New("chain: chain is empty")
)

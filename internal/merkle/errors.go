package merkle

import "errors"

var (
	// ErrEmpty is returned when building a tree from (or reading the root
	// of) an empty transaction list.
	ErrEmpty = errors.New("merkle: tree is empty")

	// ErrNotFound is returned when a proof is requested for a transaction
	// id that is not present in the supplied list.
	ErrNotFound = errors.New("merkle: transaction not found")
)

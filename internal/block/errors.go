package block

import "errors"

// ErrNoTransactions is returned when constructing a block from an empty
// transaction list; every non-genesis block must carry at least one.
var ErrNoTransactions = errors.New("block: no transactions supplied")

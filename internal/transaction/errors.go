package transaction

import "errors"

// ErrHashFailed wraps an underlying serialisation failure encountered while
// computing a transaction hash. Serialisation of a well-formed Transaction
// never actually fails; the error exists so hashing has a uniform failure
// shape to propagate, per spec.
var ErrHashFailed = errors.New("transaction: hashing failed")

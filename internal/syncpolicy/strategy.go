// Package syncpolicy filters a batch of candidate remote blocks down to the
// ones the active strategy permits, and tracks how many bytes have been
// downloaded under that strategy. The node's sync handshake only feeds the
// byte counter; it does not filter received blocks through BlocksToSync.
package syncpolicy

// Kind selects which sync strategy a Manager applies when filtering
// candidate remote blocks.
type Kind int

const (
	// OnDemand adopts nothing proactively: BlocksToSync always returns an
	// empty result under this strategy. It is the default strategy; the
	// chain's own longest-chain rule is the only path to adoption.
	OnDemand Kind = iota

	// TimeRange accepts only blocks whose Timestamp falls within [From, To]
	// inclusive.
	TimeRange

	// SizeLimit accepts blocks in order until accepting the next one would
	// push total downloaded bytes (tracked across the Manager's lifetime,
	// reset on SetStrategy) past MaxBytes.
	SizeLimit
)

// Strategy configures a sync policy. Only the fields relevant to Kind are
// read.
type Strategy struct {
	Kind     Kind
	From     int64
	To       int64
	MaxBytes uint64
}

// NewOnDemand returns the default strategy, under which BlocksToSync adopts
// nothing.
func NewOnDemand() Strategy {
	return Strategy{Kind: OnDemand}
}

// NewTimeRange returns a strategy that restricts sync to blocks timestamped
// within [from, to].
func NewTimeRange(from, to int64) Strategy {
	return Strategy{Kind: TimeRange, From: from, To: to}
}

// NewSizeLimit returns a strategy that caps total downloaded bytes at
// maxBytes.
func NewSizeLimit(maxBytes uint64) Strategy {
	return Strategy{Kind: SizeLimit, MaxBytes: maxBytes}
}

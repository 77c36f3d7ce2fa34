package node

// EventKind discriminates the observable events a Node emits to its host.
type EventKind int

const (
	EventPeerConnected EventKind = iota
	EventPeerDisconnected
	EventPeerDiscovered
	EventTransactionReceived
	EventBlockReceived
	EventBlockFinalised
	EventChainSynced
	EventListening
)

func (k EventKind) String() string {
	switch k {
	case EventPeerConnected:
		return "PeerConnected"
	case EventPeerDisconnected:
		return "PeerDisconnected"
	case EventPeerDiscovered:
		return "PeerDiscovered"
	case EventTransactionReceived:
		return "TransactionReceived"
	case EventBlockReceived:
		return "BlockReceived"
	case EventBlockFinalised:
		return "BlockFinalised"
	case EventChainSynced:
		return "ChainSynced"
	case EventListening:
		return "Listening"
	default:
		return "Unknown"
	}
}

// Event is one entry in the ordered stream a Node emits to its host. Only
// the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	PeerID    string   // PeerConnected, PeerDisconnected
	Addresses []string // PeerDiscovered, Listening

	TransactionID string // TransactionReceived

	BlockHeight uint64 // BlockReceived, BlockFinalised

	ChainLength int // ChainSynced
}

// eventBufferSize bounds the host-facing event channel so a slow or absent
// consumer cannot block the event loop; on overflow the newest event is
// dropped and the buffered ones are kept.
const eventBufferSize = 256

func (n *Node) emit(ev Event) {
	select {
	case n.events <- ev:
	default:
		// host not draining fast enough; drop rather than block the loop.
	}
}

// Events returns the channel the host reads observable events from.
func (n *Node) Events() <-chan Event {
	return n.events
}

package node

import "github.com/social-production/network/internal/block"

type nodeEventKind int

const (
	evPeerConnected nodeEventKind = iota
	evPeerDisconnected
	evPeerDiscovered
	evGossipMessage
	evSyncTipResponse
	evSyncBlocksResponse
	evDiscoveryTick
	evSnapshotPeers
)

// nodeEvent is pushed onto Node.internal by every goroutine outside the
// event loop (pubsub readers, discovery notifees, stream handlers, the
// connection notifiee). The event loop goroutine is the only reader and
// the only code that mutates chain, pool or peer-index state.
type nodeEvent struct {
	kind nodeEventKind

	peerID string
	addrs  []string

	topic   string
	payload []byte

	remoteTip uint64
	blocks    []*block.Block

	reply chan []string
}

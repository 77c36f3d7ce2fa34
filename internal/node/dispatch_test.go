package node

import (
	"testing"

	"github.com/social-production/network/internal/chain"
	"github.com/social-production/network/internal/protocol"
	"github.com/social-production/network/internal/syncpolicy"
	"github.com/social-production/network/internal/transaction"
)

// bareNode builds a Node with enough state for dispatch-level tests without
// a real libp2p host. Tests that seal or accept a block use ModeGossip,
// since ModeFull's self-verification step reads n.host, which is nil in
// this configuration.
func bareNode(cfg Config) *Node {
	n := &Node{
		cfg:      cfg,
		chain:    chain.New(),
		pool:     newPendingPool(),
		syncMgr:  syncpolicy.NewManager(),
		peers:    newPeerIndex(),
		events:   make(chan Event, eventBufferSize),
		internal: make(chan nodeEvent, eventBufferSize),
	}
	n.syncMgr.SetStrategy(cfg.SyncStrategy)
	return n
}

func TestDispatchGossipTransactionBelowBatchSizeOnlyPools(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeGossip
	cfg.BlockBatchSize = 10
	n := bareNode(cfg)

	tx := transaction.New(transaction.PostCreated, []byte("hi"))
	msg := protocol.NewTransactionMessage(tx)
	payload, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	n.dispatchGossip(nodeEvent{kind: evGossipMessage, payload: payload})

	if n.pool.len() != 1 {
		t.Fatalf("pool.len() = %d, want 1", n.pool.len())
	}
	select {
	case ev := <-n.events:
		if ev.Kind != EventTransactionReceived {
			t.Fatalf("event kind = %v, want TransactionReceived", ev.Kind)
		}
	default:
		t.Fatal("expected a TransactionReceived event")
	}
}

func TestDispatchGossipTransactionAtBatchSizeSealsBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeGossip
	cfg.BlockBatchSize = 1
	n := bareNode(cfg)

	tx := transaction.New(transaction.PostCreated, []byte("hi"))
	payload, err := protocol.NewTransactionMessage(tx).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	n.dispatchGossip(nodeEvent{kind: evGossipMessage, payload: payload})

	if n.pool.len() != 0 {
		t.Fatal("reaching the batch size must drain the pool into a sealed block")
	}
	if n.chain.Len() != 2 {
		t.Fatalf("chain.Len() = %d, want 2 after sealing one block", n.chain.Len())
	}
}

func TestDispatchGossipUnknownVerificationDropsSilently(t *testing.T) {
	n := bareNode(DefaultConfig())

	payload, err := protocol.NewVerificationMessage(99, "peer-a").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// must not panic even though height 99 doesn't exist yet.
	n.dispatchGossip(nodeEvent{kind: evGossipMessage, payload: payload})

	select {
	case ev := <-n.events:
		t.Fatalf("expected no event for an out-of-order verification, got %+v", ev)
	default:
	}
}

func TestDispatchGossipMalformedPayloadDropsSilently(t *testing.T) {
	n := bareNode(DefaultConfig())
	n.dispatchGossip(nodeEvent{kind: evGossipMessage, payload: []byte{0xFF, 0xFF}})

	select {
	case ev := <-n.events:
		t.Fatalf("expected no event for an undecodable payload, got %+v", ev)
	default:
	}
}

func TestAddressesSurvivePortFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PortFilter = PortRange{From: 4000, To: 4010}
	n := bareNode(cfg)

	if !n.addressesSurvivePortFilter([]string{"/ip4/127.0.0.1/tcp/4005"}) {
		t.Fatal("an address within the filter range must survive")
	}
	if n.addressesSurvivePortFilter([]string{"/ip4/127.0.0.1/tcp/9999"}) {
		t.Fatal("an address outside the filter range must not survive")
	}
}

func TestAddressesSurvivePortFilterUnfiltered(t *testing.T) {
	n := bareNode(DefaultConfig())
	if !n.addressesSurvivePortFilter([]string{"/ip4/127.0.0.1/tcp/9999"}) {
		t.Fatal("an unset PortFilter must accept every address")
	}
}

func TestDispatchPeerDiscoveredRespectsPortFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PortFilter = PortRange{From: 4000, To: 4010}
	n := bareNode(cfg)

	n.dispatch(nodeEvent{kind: evPeerDiscovered, peerID: "peer-1", addrs: []string{"/ip4/127.0.0.1/tcp/9999"}})

	if _, ok := n.peers.discovered["peer-1"]; ok {
		t.Fatal("a peer whose addresses fail the port filter must not be recorded as discovered")
	}
}

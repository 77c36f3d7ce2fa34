// Package node glues the chain, pending pool, sync policy and peer indices
// into a running gossip/sync participant on top of go-libp2p.
package node

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/libp2p/go-libp2p/p2p/protocol/ping"

	"github.com/social-production/network/internal/chain"
	"github.com/social-production/network/internal/protocol"
	"github.com/social-production/network/internal/syncpolicy"
)

const discoveryNamespace = "sp_network"

// Node is the long-running, event-driven process that owns the chain, the
// pending transaction pool, the sync policy and the peer indices. All
// mutation of those four happens on the single goroutine running inside
// Run; every other goroutine (pubsub reads, discovery notifees, stream
// handlers, ping results) only ever pushes an event onto an internal
// channel.
type Node struct {
	cfg Config

	host        host.Host
	pubsub      *pubsub.PubSub
	topics      map[string]*pubsub.Topic
	subs        map[string]*pubsub.Subscription
	kadDHT      *dht.IpfsDHT
	mdnsService mdns.Service
	pingService *ping.PingService

	chain   *chain.Blockchain
	pool    *pendingPool
	syncMgr *syncpolicy.Manager
	peers   *peerIndex

	internal chan nodeEvent
	events   chan Event
	ctrl     chan ctrlCommand

	ctx    context.Context
	cancel context.CancelFunc

	running atomic.Bool
}

// New constructs a Node and its libp2p host but does not yet start the
// event loop; call Run for that.
func New(cfg Config) (*Node, error) {
	priv, _, err := crypto.GenerateKeyPair(crypto.Secp256k1, 256)
	if err != nil {
		return nil, fmt.Errorf("node: generating identity: %w", err)
	}

	opts := []libp2p.Option{
		libp2p.ListenAddrStrings(fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", cfg.Port)),
		libp2p.Identity(priv),
		libp2p.ProtocolVersion(protocol.AppProtocolID),
	}

	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("node: creating libp2p host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(context.Background(), h)
	if err != nil {
		return nil, fmt.Errorf("node: creating gossipsub: %w", err)
	}

	n := &Node{
		cfg:      cfg,
		host:     h,
		pubsub:   ps,
		topics:   make(map[string]*pubsub.Topic),
		subs:     make(map[string]*pubsub.Subscription),
		chain:    chain.New(),
		pool:     newPendingPool(),
		syncMgr:  syncpolicy.NewManager(),
		peers:    newPeerIndex(),
		internal: make(chan nodeEvent, eventBufferSize),
		events:   make(chan Event, eventBufferSize),
		ctrl:     make(chan ctrlCommand, 8),
	}
	n.syncMgr.SetStrategy(cfg.SyncStrategy)

	for _, topicName := range []string{protocol.TopicTransaction, protocol.TopicBlock, protocol.TopicBlockVerification} {
		topic, err := ps.Join(topicName)
		if err != nil {
			return nil, fmt.Errorf("node: joining topic %s: %w", topicName, err)
		}
		n.topics[topicName] = topic
	}

	n.pingService = ping.NewPingService(h)
	h.SetStreamHandler(protocol.SyncProtocolID, n.handleSyncStream)
	h.Network().Notify(n.connNotifiee())

	if cfg.DiscoveryMode == DiscoveryLocalOnly || cfg.DiscoveryMode == DiscoveryBoth {
		n.mdnsService = mdns.NewMdnsService(h, discoveryNamespace, n.discoveryNotifee())
	}

	if cfg.DiscoveryMode == DiscoveryDHTOnly || cfg.DiscoveryMode == DiscoveryBoth {
		kad, err := dht.New(context.Background(), h)
		if err != nil {
			return nil, fmt.Errorf("node: creating kademlia dht: %w", err)
		}
		n.kadDHT = kad
	}

	return n, nil
}

// Host returns the underlying libp2p host, chiefly so callers can read its
// listen addresses and peer ID.
func (n *Node) Host() host.Host {
	return n.host
}

// Chain returns the node's blockchain for read-only snapshot access (used
// by internal/hostapi). Callers must not mutate the returned value.
func (n *Node) Chain() *chain.Blockchain {
	return n.chain
}

// ConnectedPeers returns the ids of currently connected peers. Safe to call
// concurrently with Run; reads a point-in-time snapshot pushed by the event
// loop.
func (n *Node) ConnectedPeers() []string {
	resp := make(chan []string, 1)
	select {
	case n.internal <- nodeEvent{kind: evSnapshotPeers, reply: resp}:
		return <-resp
	case <-time.After(time.Second):
		return nil
	}
}

// Run starts the event loop and blocks until the context is cancelled or
// Stop is called. A call made while another Run is still active returns
// ErrAlreadyRunning.
func (n *Node) Run(ctx context.Context) error {
	if !n.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer n.running.Store(false)

	n.ctx, n.cancel = context.WithCancel(ctx)
	defer n.cancel()

	if n.mdnsService != nil {
		if err := n.mdnsService.Start(); err != nil {
			return fmt.Errorf("node: starting mdns: %w", err)
		}
		defer n.mdnsService.Close()
	}

	var addrs []string
	for _, a := range n.host.Addrs() {
		addrs = append(addrs, a.String())
	}
	n.emit(Event{Kind: EventListening, Addresses: addrs})

	n.startGossipReaders()

	ticker := time.NewTicker(n.cfg.discoveryInterval())
	defer ticker.Stop()

	if n.kadDHT != nil {
		go n.runDiscoveryTick()
	}

	for {
		select {
		case <-n.ctx.Done():
			return nil

		case ev := <-n.internal:
			n.dispatch(ev)

		case cmd := <-n.ctrl:
			n.handleControl(cmd)

		case <-ticker.C:
			if n.kadDHT != nil {
				go n.runDiscoveryTick()
			}
		}
	}
}

func (n *Node) runDiscoveryTick() {
	select {
	case n.internal <- nodeEvent{kind: evDiscoveryTick}:
	default:
		// internal channel full; drop the tick rather than block or
		// queue it.
	}
}

// Stop cancels the running event loop. There is no graceful shutdown
// protocol beyond ceasing to process events and dropping state.
func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
}

func (n *Node) peerIDString() string {
	return n.host.ID().String()
}

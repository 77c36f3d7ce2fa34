package node

import (
	"github.com/social-production/network/internal/protocol"
	"github.com/social-production/network/internal/transaction"
)

// dispatch runs on the event loop goroutine and is the only place that
// mutates chain, pool or peer-index state. Each branch handles exactly one
// event atomically with respect to every other branch.
func (n *Node) dispatch(ev nodeEvent) {
	switch ev.kind {
	case evPeerConnected:
		n.peers.markConnected(ev.peerID, ev.addrs)
		n.emit(Event{Kind: EventPeerConnected, PeerID: ev.peerID})
		go n.initiateSync(ev.peerID)
		go n.keepAlivePeer(ev.peerID)

	case evPeerDisconnected:
		n.peers.markDisconnected(ev.peerID)
		n.emit(Event{Kind: EventPeerDisconnected, PeerID: ev.peerID})

	case evPeerDiscovered:
		if !n.addressesSurvivePortFilter(ev.addrs) {
			return
		}
		n.peers.addDiscovered(ev.peerID, ev.addrs)
		n.emit(Event{Kind: EventPeerDiscovered, PeerID: ev.peerID, Addresses: ev.addrs})

	case evGossipMessage:
		n.dispatchGossip(ev)

	case evSyncBlocksResponse:
		if n.applySyncBlocks(ev.blocks) {
			n.emit(Event{Kind: EventChainSynced, ChainLength: n.chain.Len()})
		}

	case evDiscoveryTick:
		go n.runBootstrap()

	case evSnapshotPeers:
		ev.reply <- n.peers.connectedPeers()
	}
}

func (n *Node) addressesSurvivePortFilter(addrs []string) bool {
	if n.cfg.PortFilter.From == 0 && n.cfg.PortFilter.To == 0 {
		return true
	}
	for _, a := range addrs {
		if port, ok := extractPort(a); ok && n.cfg.PortFilter.contains(port) {
			return true
		}
	}
	return false
}

func (n *Node) dispatchGossip(ev nodeEvent) {
	msg, err := protocol.DecodeGossipMessage(ev.payload)
	if err != nil {
		return // decoding failure: dropped without touching local state.
	}

	switch {
	case msg.Transaction != nil:
		n.pool.push(msg.Transaction)
		n.emit(Event{Kind: EventTransactionReceived, TransactionID: msg.Transaction.ID.String()})
		n.maybeSealBlock()

	case msg.Block != nil:
		if n.chain.AppendBlock(msg.Block) {
			n.emit(Event{Kind: EventBlockReceived, BlockHeight: msg.Block.Height})
			n.selfVerify(msg.Block.Height)
		}

	default: // BlockVerification
		finalised, err := n.chain.Verify(msg.VerificationBlock, msg.VerificationPeer)
		if err != nil {
			return // verification for a block not yet seen: drop, don't queue.
		}
		if finalised {
			n.emit(Event{Kind: EventBlockFinalised, BlockHeight: msg.VerificationBlock})
		}
	}
}

// maybeSealBlock drains the pending pool into a new block once it reaches
// the configured batch size.
func (n *Node) maybeSealBlock() {
	if n.pool.len() < n.cfg.blockBatchSize() {
		return
	}

	txs := n.pool.drain()
	b, err := n.chain.Append(txs)
	if err != nil {
		return
	}

	n.publish(protocol.TopicBlock, protocol.NewBlockMessage(b))
	n.selfVerify(b.Height)
}

// selfVerify records the node's own verification of a block it has
// accepted (sealed locally or appended from gossip) and broadcasts it.
// Gossip-mode nodes never verify: they relay only.
func (n *Node) selfVerify(height uint64) {
	if n.cfg.Mode != ModeFull {
		return
	}

	finalised, err := n.chain.Verify(height, n.peerIDString())
	if err != nil {
		return
	}
	n.publish(protocol.TopicBlockVerification, protocol.NewVerificationMessage(height, n.peerIDString()))
	if finalised {
		n.emit(Event{Kind: EventBlockFinalised, BlockHeight: height})
	}
}

// SubmitTransaction enqueues tx in the pending pool and broadcasts it on
// the transaction topic. This is the entry point application code (or
// internal/hostapi) uses to inject new transactions.
func (n *Node) SubmitTransaction(tx *transaction.Transaction) {
	select {
	case n.internal <- nodeEvent{kind: evGossipMessage, topic: protocol.TopicTransaction, payload: mustEncodeTx(tx), peerID: n.peerIDString()}:
	case <-n.ctx.Done():
	}
	n.publish(protocol.TopicTransaction, protocol.NewTransactionMessage(tx))
}

func mustEncodeTx(tx *transaction.Transaction) []byte {
	data, err := protocol.NewTransactionMessage(tx).Encode()
	if err != nil {
		return nil
	}
	return data
}

package node

import (
	pubsub "github.com/libp2p/go-libp2p-pubsub"

	"github.com/social-production/network/internal/protocol"
)

// startGossipReaders spawns one goroutine per subscribed topic that blocks
// on Subscription.Next and forwards every received message onto the
// internal event channel. These goroutines never touch chain/pool/peer
// state directly.
func (n *Node) startGossipReaders() {
	for topicName, topic := range n.topics {
		sub, err := topic.Subscribe()
		if err != nil {
			continue
		}
		n.subs[topicName] = sub
		go n.readTopic(topicName, sub)
	}
}

func (n *Node) readTopic(topicName string, sub *pubsub.Subscription) {
	selfID := n.host.ID()
	for {
		msg, err := sub.Next(n.ctx)
		if err != nil {
			return // context cancelled or subscription cancelled
		}
		if msg.ReceivedFrom == selfID {
			continue
		}
		select {
		case n.internal <- nodeEvent{kind: evGossipMessage, topic: topicName, payload: msg.Data, peerID: msg.ReceivedFrom.String()}:
		case <-n.ctx.Done():
			return
		}
	}
}

// publish encodes msg and publishes it on topicName. Publish failures are
// non-fatal: the local side effect (pending push, chain append) that
// triggered the publish has already happened by the time this is called.
func (n *Node) publish(topicName string, msg protocol.GossipMessage) {
	topic, ok := n.topics[topicName]
	if !ok {
		return
	}
	data, err := msg.Encode()
	if err != nil {
		return
	}
	_ = topic.Publish(n.ctx, data)
}

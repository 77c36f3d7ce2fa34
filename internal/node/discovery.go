package node

import (
	"context"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
)

// discoveryNotifee adapts mDNS peer-found callbacks onto the internal
// event channel; it never touches node state directly.
type discoveryNotifee struct {
	n *Node
}

func (n *Node) discoveryNotifee() *discoveryNotifee {
	return &discoveryNotifee{n: n}
}

func (d *discoveryNotifee) HandlePeerFound(info peer.AddrInfo) {
	if info.ID == d.n.host.ID() {
		return
	}

	addrs := make([]string, 0, len(info.Addrs))
	for _, a := range info.Addrs {
		addrs = append(addrs, a.String())
	}

	select {
	case d.n.internal <- nodeEvent{kind: evPeerDiscovered, peerID: info.ID.String(), addrs: addrs}:
	default:
	}

	// Dial immediately; a successful dial surfaces PeerConnected through
	// the connection notifiee below.
	go func() {
		ctx, cancel := context.WithTimeout(d.n.ctx, dialTimeout)
		defer cancel()
		_ = d.n.host.Connect(ctx, info)
	}()
}

// connNotifiee adapts libp2p connection lifecycle events onto the internal
// event channel.
func (n *Node) connNotifiee() *network.NotifyBundle {
	return &network.NotifyBundle{
		ConnectedF: func(_ network.Network, conn network.Conn) {
			remote := conn.RemotePeer()
			addrs := []string{conn.RemoteMultiaddr().String()}
			select {
			case n.internal <- nodeEvent{kind: evPeerConnected, peerID: remote.String(), addrs: addrs}:
			default:
			}
		},
		DisconnectedF: func(_ network.Network, conn network.Conn) {
			remote := conn.RemotePeer()
			select {
			case n.internal <- nodeEvent{kind: evPeerDisconnected, peerID: remote.String()}:
			default:
			}
		},
	}
}

// runBootstrap refreshes the DHT routing table. Called from the event loop
// in response to evDiscoveryTick, on its own goroutine so the loop never
// blocks on network I/O; runDiscoveryTick drops a tick when the internal
// event channel is full.
func (n *Node) runBootstrap() {
	if n.kadDHT == nil {
		return
	}
	_ = n.kadDHT.Bootstrap(n.ctx)

	rt := n.kadDHT.RoutingTable()
	if rt == nil {
		return
	}
	for _, p := range rt.ListPeers() {
		if p == n.host.ID() {
			continue
		}
		addrs := n.host.Peerstore().Addrs(p)
		strs := make([]string, 0, len(addrs))
		for _, a := range addrs {
			strs = append(strs, a.String())
		}
		select {
		case n.internal <- nodeEvent{kind: evPeerDiscovered, peerID: p.String(), addrs: strs}:
		default:
		}
	}
}

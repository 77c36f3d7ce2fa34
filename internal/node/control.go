package node

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

type ctrlKind int

const (
	ctrlStart ctrlKind = iota
	ctrlStop
	ctrlRestart
	ctrlConnect
	ctrlDisconnect
	ctrlDiscover
)

type ctrlCommand struct {
	kind ctrlKind

	address   string
	peerID    string
	portRange *PortRange
}

// dialTimeout bounds a Connect control command's dial attempt.
const dialTimeout = 15 * time.Second

// Start is a no-op once the event loop from Run is already active; it
// exists so the control channel's documented surface (Start/Stop/Restart/
// Connect/Disconnect/Discover) is complete for a host driving the node
// remotely.
func (n *Node) Start() {
	n.ctrl <- ctrlCommand{kind: ctrlStart}
}

// RequestStop asks the event loop to stop. There is no graceful shutdown
// beyond ceasing to process events.
func (n *Node) RequestStop() {
	n.ctrl <- ctrlCommand{kind: ctrlStop}
}

// RequestRestart clears the discovered-peer index and forces an immediate
// discovery tick. It does not tear down the libp2p host or connected
// peers.
func (n *Node) RequestRestart() {
	n.ctrl <- ctrlCommand{kind: ctrlRestart}
}

// Connect asks the node to dial a peer at the given multiaddress string.
func (n *Node) Connect(address string) {
	n.ctrl <- ctrlCommand{kind: ctrlConnect, address: address}
}

// Disconnect asks the node to close its connection to peerID.
func (n *Node) Disconnect(peerID string) {
	n.ctrl <- ctrlCommand{kind: ctrlDisconnect, peerID: peerID}
}

// Discover forces an immediate discovery tick, optionally narrowing the
// port-range filter for addresses surfaced from here on.
func (n *Node) Discover(portRange *PortRange) {
	n.ctrl <- ctrlCommand{kind: ctrlDiscover, portRange: portRange}
}

// handleControl runs on the event loop goroutine, so it may freely mutate
// n.cfg and the peer index; anything that talks to the network is spawned
// on its own goroutine so the loop never blocks on I/O.
func (n *Node) handleControl(cmd ctrlCommand) {
	switch cmd.kind {
	case ctrlStart:
		// already running; nothing to do.

	case ctrlStop:
		n.cancel()

	case ctrlRestart:
		n.peers.discovered = make(map[string][]string)
		n.runDiscoveryTick()

	case ctrlConnect:
		go n.dialAddress(cmd.address)

	case ctrlDisconnect:
		go n.closePeer(cmd.peerID)

	case ctrlDiscover:
		if cmd.portRange != nil {
			n.cfg.PortFilter = *cmd.portRange
		}
		n.runDiscoveryTick()
	}
}

func (n *Node) dialAddress(address string) {
	maddr, err := multiaddr.NewMultiaddr(address)
	if err != nil {
		return
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(n.ctx, dialTimeout)
	defer cancel()
	_ = n.host.Connect(ctx, *info)
}

func (n *Node) closePeer(peerIDStr string) {
	pid, err := peer.Decode(peerIDStr)
	if err != nil {
		return
	}
	_ = n.host.Network().ClosePeer(pid)
}

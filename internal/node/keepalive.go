package node

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

const (
	pingInterval = 30 * time.Second
	pingTimeout  = 10 * time.Second
)

// keepAlivePeer periodically pings a connected peer for as long as the
// node runs. A failed or timed-out ping triggers an active disconnect; the
// resulting connection-closed notifiee event is what drives the peer-index
// update, not this function directly.
func (n *Node) keepAlivePeer(peerIDStr string) {
	pid, err := peer.Decode(peerIDStr)
	if err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(n.ctx, pingTimeout)
			result, ok := <-n.pingService.Ping(pingCtx, pid)
			cancel()

			if !ok || result.Error != nil {
				_ = n.host.Network().ClosePeer(pid)
				return
			}
		}
	}
}

package node

import (
	"bufio"
	"context"
	"io"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/protocol"
)

// handleSyncStream is the responder side of the sync protocol: read the
// whole request (the requester closes its write side once sent), decode,
// answer, close. It only reads n.chain, which is safe for concurrent
// access, so it runs entirely off the event loop goroutine.
func (n *Node) handleSyncStream(s network.Stream) {
	defer s.Close()

	raw, err := io.ReadAll(s)
	if err != nil {
		return
	}

	req, err := protocol.DecodeSyncRequest(raw)
	if err != nil {
		return
	}

	var resp protocol.SyncResponse
	if req.ChainTip {
		resp = protocol.NewChainTipResponse(uint64(n.chain.Len()))
	} else {
		resp = protocol.NewBlocksResponse(n.chain.BlocksFrom(req.FromIndex))
	}

	w := bufio.NewWriter(s)
	w.Write(resp.Encode())
	w.Flush()
}

// requestSyncStream opens a fresh stream to peerID, writes req, closes the
// write side, and reads the full response.
func (n *Node) requestSyncStream(peerIDStr string, req protocol.SyncRequest) (protocol.SyncResponse, error) {
	pid, err := peer.Decode(peerIDStr)
	if err != nil {
		return protocol.SyncResponse{}, err
	}

	ctx, cancel := context.WithTimeout(n.ctx, dialTimeout)
	defer cancel()

	s, err := n.host.NewStream(ctx, pid, protocol.SyncProtocolID)
	if err != nil {
		return protocol.SyncResponse{}, err
	}
	defer s.Close()

	if _, err := s.Write(req.Encode()); err != nil {
		return protocol.SyncResponse{}, err
	}
	if err := s.CloseWrite(); err != nil {
		return protocol.SyncResponse{}, err
	}

	raw, err := io.ReadAll(s)
	if err != nil {
		return protocol.SyncResponse{}, err
	}

	return protocol.DecodeSyncResponse(raw)
}

// initiateSync runs the requester side of the handshake against a newly
// connected peer: probe its chain tip, and if longer, pull the blocks it
// has beyond the local tip. Runs on its own goroutine; results are pushed
// back onto the internal event channel for the event loop to apply.
func (n *Node) initiateSync(peerIDStr string) {
	localTip := uint64(n.chain.Len())

	tipResp, err := n.requestSyncStream(peerIDStr, protocol.NewChainTipRequest())
	if err != nil || !tipResp.HasTipIndex {
		return
	}
	if tipResp.TipIndex <= localTip {
		return
	}

	blocksResp, err := n.requestSyncStream(peerIDStr, protocol.NewBlocksFromRequest(localTip))
	if err != nil {
		return
	}

	select {
	case n.internal <- nodeEvent{kind: evSyncBlocksResponse, peerID: peerIDStr, blocks: blocksResp.Blocks}:
	case <-n.ctx.Done():
	}
}

// applySyncBlocks implements the fixed sync-response handling: build the
// candidate remote chain as the local blocks below the first received
// height (just the local genesis for a fresh node) followed by the
// received blocks, then hand that to the longest-chain rule. The source
// bug this corrects built a fresh genesis-only chain and discarded the
// received blocks before comparing, which meant sync_from always failed.
func (n *Node) applySyncBlocks(blocks []*block.Block) bool {
	local := n.chain.BlocksFrom(0)

	prefixLen := uint64(1)
	for _, b := range blocks {
		if b.Height != 0 {
			prefixLen = b.Height
			break
		}
	}
	if prefixLen > uint64(len(local)) {
		prefixLen = uint64(len(local))
	}

	candidate := make([]*block.Block, 0, int(prefixLen)+len(blocks))
	candidate = append(candidate, local[:prefixLen]...)
	for _, b := range blocks {
		if b.Height == 0 {
			continue // genesis is never part of the received batch
		}
		n.syncMgr.RecordDownload(b)
		candidate = append(candidate, b)
	}

	return n.chain.SyncFrom(candidate)
}

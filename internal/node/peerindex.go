package node

// peerIndex tracks discovered-but-not-connected peers and live connections.
// Only ever touched from the event loop goroutine.
type peerIndex struct {
	discovered map[string][]string // peer id -> addresses
	connected  map[string][]string // peer id -> addresses
}

func newPeerIndex() *peerIndex {
	return &peerIndex{
		discovered: make(map[string][]string),
		connected:  make(map[string][]string),
	}
}

func (p *peerIndex) addDiscovered(peerID string, addrs []string) {
	p.discovered[peerID] = addrs
}

func (p *peerIndex) markConnected(peerID string, addrs []string) {
	if len(addrs) == 0 {
		addrs = p.discovered[peerID]
	}
	delete(p.discovered, peerID)
	p.connected[peerID] = addrs
}

func (p *peerIndex) markDisconnected(peerID string) {
	delete(p.connected, peerID)
}

func (p *peerIndex) isConnected(peerID string) bool {
	_, ok := p.connected[peerID]
	return ok
}

func (p *peerIndex) connectedPeers() []string {
	out := make([]string, 0, len(p.connected))
	for id := range p.connected {
		out = append(out, id)
	}
	return out
}

func (p *peerIndex) connectedCount() int {
	return len(p.connected)
}

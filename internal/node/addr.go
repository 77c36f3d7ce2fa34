package node

import (
	"strconv"

	"github.com/multiformats/go-multiaddr"
)

// extractPort pulls the TCP port out of a multiaddress string such as
// "/ip4/10.0.0.5/tcp/4001". Returns false if addr doesn't carry one.
func extractPort(addr string) (uint16, bool) {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return 0, false
	}
	portStr, err := maddr.ValueForProtocol(multiaddr.P_TCP)
	if err != nil {
		return 0, false
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(port), true
}

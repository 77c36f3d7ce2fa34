package node

import (
	"time"

	"github.com/social-production/network/internal/syncpolicy"
)

// DiscoveryMode selects which peer-discovery mechanisms a node runs.
type DiscoveryMode int

const (
	// DiscoveryBoth runs mDNS and DHT discovery concurrently. Default.
	DiscoveryBoth DiscoveryMode = iota
	// DiscoveryDHTOnly runs only Kademlia DHT discovery.
	DiscoveryDHTOnly
	// DiscoveryLocalOnly runs only mDNS local-network discovery.
	DiscoveryLocalOnly
)

// Mode selects how actively a node participates in finalisation.
type Mode int

const (
	// ModeFull sends verification messages for blocks it accepts.
	ModeFull Mode = iota
	// ModeGossip relays transactions and blocks and maintains the chain,
	// but never emits verifications. A lighter relay for constrained
	// deployments.
	ModeGossip
)

// PortRange optionally restricts which discovered peer addresses a node
// will act on. A zero-value PortRange (From == To == 0) means unfiltered.
type PortRange struct {
	From uint16
	To   uint16
}

// contains reports whether port falls within the range. An unset range
// (From == To == 0) matches every port.
func (r PortRange) contains(port uint16) bool {
	if r.From == 0 && r.To == 0 {
		return true
	}
	return port >= r.From && port <= r.To
}

// DefaultDiscoveryInterval is how often the discovery ticker fires when a
// Config does not override it.
const DefaultDiscoveryInterval = 60 * time.Second

// DefaultBlockBatchSize is how many pending transactions accumulate before
// the node automatically seals a block.
const DefaultBlockBatchSize = 10

// Config configures a Node before it starts running.
type Config struct {
	// Port is the TCP port the libp2p host listens on.
	Port int

	// DiscoveryMode selects which discovery mechanisms run.
	DiscoveryMode DiscoveryMode

	// Mode selects Full or Gossip participation.
	Mode Mode

	// SyncStrategy is installed on the node's sync manager at construction.
	SyncStrategy syncpolicy.Strategy

	// PortFilter optionally restricts which discovered addresses are acted
	// on. Zero value means unfiltered.
	PortFilter PortRange

	// Quiet suppresses informational console output.
	Quiet bool

	// DiscoveryInterval overrides DefaultDiscoveryInterval when non-zero.
	DiscoveryInterval time.Duration

	// BlockBatchSize overrides DefaultBlockBatchSize when non-zero.
	BlockBatchSize int
}

// DefaultConfig returns a Config with every field at its documented
// default: port 0 (OS-assigned), DiscoveryBoth, ModeFull, OnDemand sync.
func DefaultConfig() Config {
	return Config{
		DiscoveryMode: DiscoveryBoth,
		Mode:          ModeFull,
		SyncStrategy:  syncpolicy.NewOnDemand(),
	}
}

func (c Config) discoveryInterval() time.Duration {
	if c.DiscoveryInterval > 0 {
		return c.DiscoveryInterval
	}
	return DefaultDiscoveryInterval
}

func (c Config) blockBatchSize() int {
	if c.BlockBatchSize > 0 {
		return c.BlockBatchSize
	}
	return DefaultBlockBatchSize
}

package syncpolicy

import (
	"sync"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/chain"
)

// blockOverhead is the estimated non-payload weight of a block on the wire:
// header fields, per-transaction framing, and verification entries.
const blockOverhead = 256

// Manager applies the active Strategy to a batch of candidate remote
// blocks and keeps a running count of bytes downloaded under it.
type Manager struct {
	mu              sync.Mutex
	strategy        Strategy
	downloadedBytes uint64
}

// NewManager returns a Manager defaulted to the OnDemand strategy.
func NewManager() *Manager {
	return &Manager{strategy: NewOnDemand()}
}

// SetStrategy replaces the active strategy and resets the downloaded-bytes
// counter, since SizeLimit's cap is measured relative to when it became
// active.
func (m *Manager) SetStrategy(s Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategy = s
	m.downloadedBytes = 0
}

// DownloadedBytes returns the running total recorded via RecordDownload
// since the strategy was last set.
func (m *Manager) DownloadedBytes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloadedBytes
}

// RecordDownload adds b's estimated size to the downloaded-bytes counter.
// Callers invoke this once per block actually pulled over the wire.
func (m *Manager) RecordDownload(b *block.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadedBytes += estimateSize(b)
}

func estimateSize(b *block.Block) uint64 {
	var total uint64
	for _, tx := range b.Transactions {
		total += uint64(len(tx.Payload)) + uint64(len(tx.Signature))
	}
	return total + blockOverhead
}

// BlocksToSync filters remoteBlocks down to the set the active strategy
// permits pulling right now. It always first drops any block the local
// chain already has (height < local.Len()), then applies the strategy:
//
//   - OnDemand adopts nothing; the chain's own longest-chain rule is the
//     only path to adoption under this strategy.
//   - TimeRange keeps only blocks timestamped within [From, To]; fails
//     with ErrInvalidTimeRange if From is after To.
//   - SizeLimit keeps blocks in order, stopping at the first one that
//     would push the running total (downloadedBytes so far, plus what
//     this call has already accepted) past MaxBytes.
func (m *Manager) BlocksToSync(local *chain.Blockchain, remoteBlocks []*block.Block) ([]*block.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	localLen := uint64(local.Len())
	candidates := make([]*block.Block, 0, len(remoteBlocks))
	for _, b := range remoteBlocks {
		if b.Height >= localLen {
			candidates = append(candidates, b)
		}
	}

	switch m.strategy.Kind {
	case TimeRange:
		if m.strategy.From > m.strategy.To {
			return nil, ErrInvalidTimeRange
		}
		out := make([]*block.Block, 0, len(candidates))
		for _, b := range candidates {
			if b.Timestamp >= m.strategy.From && b.Timestamp <= m.strategy.To {
				out = append(out, b)
			}
		}
		return out, nil

	case SizeLimit:
		out := make([]*block.Block, 0, len(candidates))
		running := m.downloadedBytes
		for _, b := range candidates {
			size := estimateSize(b)
			if running+size > m.strategy.MaxBytes {
				break
			}
			out = append(out, b)
			running += size
		}
		return out, nil

	default: // OnDemand: adopt nothing proactively
		return nil, nil
	}
}

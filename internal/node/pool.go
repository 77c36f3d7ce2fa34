package node

import "github.com/social-production/network/internal/transaction"

// pendingPool is the growing ordered list of transactions not yet sealed
// into a block. Only ever touched from the event loop goroutine.
type pendingPool struct {
	txs []*transaction.Transaction
}

func newPendingPool() *pendingPool {
	return &pendingPool{}
}

func (p *pendingPool) push(tx *transaction.Transaction) {
	p.txs = append(p.txs, tx)
}

func (p *pendingPool) len() int {
	return len(p.txs)
}

// drain removes and returns every pending transaction.
func (p *pendingPool) drain() []*transaction.Transaction {
	out := p.txs
	p.txs = nil
	return out
}

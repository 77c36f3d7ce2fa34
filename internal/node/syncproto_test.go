package node

import (
	"testing"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/transaction"
)

// TestApplySyncBlocksAdoptsReceivedBlocks is the direct regression test for
// the fixed sync-response handling: a batch of received blocks that
// directly extend local genesis must be adopted, not discarded.
func TestApplySyncBlocksAdoptsReceivedBlocks(t *testing.T) {
	n := bareNode(DefaultConfig())

	genesis, err := n.chain.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}

	tx := transaction.New(transaction.PostCreated, []byte("remote"))
	b1, err := block.New(1, genesis.Hash(), []*transaction.Transaction{tx})
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	b2, err := block.New(2, b1.Hash(), []*transaction.Transaction{transaction.New(transaction.PostCreated, []byte("remote2"))})
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}

	if !n.applySyncBlocks([]*block.Block{b1, b2}) {
		t.Fatal("applySyncBlocks must adopt a received chain that extends local genesis")
	}
	if n.chain.Len() != 3 {
		t.Fatalf("chain.Len() = %d, want 3 after adopting two received blocks", n.chain.Len())
	}
}

func TestApplySyncBlocksIgnoresShorterCandidate(t *testing.T) {
	n := bareNode(DefaultConfig())
	if _, err := n.chain.Append([]*transaction.Transaction{transaction.New(transaction.PostCreated, nil)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := n.chain.Append([]*transaction.Transaction{transaction.New(transaction.PostCreated, nil)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// local chain now has 3 blocks (genesis + 2).

	genesis, _ := n.chain.Get(0)
	tx := transaction.New(transaction.PostCreated, []byte("remote"))
	b1, err := block.New(1, genesis.Hash(), []*transaction.Transaction{tx})
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}

	if n.applySyncBlocks([]*block.Block{b1}) {
		t.Fatal("applySyncBlocks must not adopt a candidate that is not strictly longer than local")
	}
	if n.chain.Len() != 3 {
		t.Fatal("a rejected sync must not mutate the local chain")
	}
}

func TestApplySyncBlocksRecordsDownloadedBytes(t *testing.T) {
	n := bareNode(DefaultConfig())
	genesis, _ := n.chain.Get(0)

	tx := transaction.New(transaction.PostCreated, []byte("payload"))
	b1, err := block.New(1, genesis.Hash(), []*transaction.Transaction{tx})
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}

	n.applySyncBlocks([]*block.Block{b1})

	if n.syncMgr.DownloadedBytes() == 0 {
		t.Fatal("applySyncBlocks must record downloaded bytes for each adopted block")
	}
}

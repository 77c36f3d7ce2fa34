package chain

import (
	"testing"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/transaction"
)

func txs(n int) []*transaction.Transaction {
	out := make([]*transaction.Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = transaction.New(transaction.PostCreated, []byte{byte(i)})
	}
	return out
}

func TestNewChainHasOnlyGenesis(t *testing.T) {
	c := New()
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if c.Tip().Height != 0 {
		t.Fatal("a fresh chain's tip must be genesis")
	}
}

func TestAppendGrowsChainAndLinksPrevHash(t *testing.T) {
	c := New()
	genesisHash := c.Tip().Hash()

	b, err := c.Append(txs(1))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if b.PrevHash != genesisHash {
		t.Fatal("appended block must link to the previous tip's hash")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if err := c.IsValid(); err != nil {
		t.Fatalf("IsValid: %v", err)
	}
}

func TestAppendBlockAcceptsDirectExtension(t *testing.T) {
	c := New()
	tip := c.Tip()

	next, err := block.New(1, tip.Hash(), txs(1))
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	if !c.AppendBlock(next) {
		t.Fatal("AppendBlock must accept a block that directly extends the tip")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestAppendBlockRejectsWrongHeight(t *testing.T) {
	c := New()
	bad, err := block.New(5, c.Tip().Hash(), txs(1))
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	if c.AppendBlock(bad) {
		t.Fatal("AppendBlock must reject a block whose height does not extend the tip")
	}
	if c.Len() != 1 {
		t.Fatal("rejected AppendBlock must not mutate the chain")
	}
}

func TestAppendBlockRejectsWrongPrevHash(t *testing.T) {
	c := New()
	bad, err := block.New(1, [32]byte{0xAB}, txs(1))
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	if c.AppendBlock(bad) {
		t.Fatal("AppendBlock must reject a mismatched prev hash")
	}
}

func TestVerifyReportsFinalisation(t *testing.T) {
	c := New()
	if _, err := c.Append(txs(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	for i, peer := range []string{"p1", "p2"} {
		finalised, err := c.Verify(1, peer)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if finalised {
			t.Fatalf("finalised too early after %d verifications", i+1)
		}
	}
	finalised, err := c.Verify(1, "p3")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !finalised {
		t.Fatal("block must be finalised after MinVerifications distinct peers verify it")
	}
}

func TestVerifyUnknownHeight(t *testing.T) {
	c := New()
	if _, err := c.Verify(99, "peer"); err != ErrBlockNotFound {
		t.Fatalf("err = %v, want ErrBlockNotFound", err)
	}
}

func TestSyncFromAdoptsStrictlyLongerChain(t *testing.T) {
	local := New()

	candidate := []*block.Block{block.Genesis()}
	tip := candidate[0]
	for i := 1; i <= 3; i++ {
		b, err := block.New(uint64(i), tip.Hash(), txs(1))
		if err != nil {
			t.Fatalf("block.New: %v", err)
		}
		candidate = append(candidate, b)
		tip = b
	}

	if !local.SyncFrom(candidate) {
		t.Fatal("SyncFrom must adopt a strictly longer, structurally valid candidate")
	}
	if local.Len() != len(candidate) {
		t.Fatalf("Len() = %d, want %d", local.Len(), len(candidate))
	}
}

func TestSyncFromRejectsEqualOrShorterChain(t *testing.T) {
	local := New()
	if _, err := local.Append(txs(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	equalLength := []*block.Block{block.Genesis()}
	b, err := block.New(1, equalLength[0].Hash(), txs(1))
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	equalLength = append(equalLength, b)

	if local.SyncFrom(equalLength) {
		t.Fatal("SyncFrom must not adopt a candidate that is not strictly longer")
	}
	if local.SyncFrom([]*block.Block{block.Genesis()}) {
		t.Fatal("SyncFrom must not adopt a shorter candidate")
	}
}

func TestSyncFromRejectsStructurallyInvalidCandidate(t *testing.T) {
	local := New()

	g := block.Genesis()
	bogus, err := block.New(1, [32]byte{0x01}, txs(1)) // wrong prev hash
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	longerButBroken := []*block.Block{g, bogus,
		mustBlock(t, 2, bogus.Hash()),
		mustBlock(t, 3, [32]byte{}), // broken link again, still "longer"
	}

	if local.SyncFrom(longerButBroken) {
		t.Fatal("SyncFrom must reject a structurally invalid candidate even if longer")
	}
}

func mustBlock(t *testing.T, height uint64, prevHash [32]byte) *block.Block {
	t.Helper()
	b, err := block.New(height, prevHash, txs(1))
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	return b
}

func TestIsValidDetectsBrokenChain(t *testing.T) {
	blocks := []*block.Block{
		block.Genesis(),
		mustBlock(t, 1, [32]byte{0x99}), // wrong prev hash
	}
	if err := isValid(blocks); err != ErrInvalidPrevHash {
		t.Fatalf("err = %v, want ErrInvalidPrevHash", err)
	}
}

func TestBlocksFromReturnsIndependentCopies(t *testing.T) {
	c := New()
	if _, err := c.Append(txs(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got := c.BlocksFrom(0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	got[0].Nonce = 12345
	if c.Tip() == got[0] {
		t.Fatal("BlocksFrom must return copies, not aliases into the chain")
	}
	if err := c.IsValid(); err != nil {
		t.Fatalf("mutating a returned copy must not affect the live chain: %v", err)
	}
}

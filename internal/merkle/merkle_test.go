package merkle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/social-production/network/internal/transaction"
)

func txs(n int) []*transaction.Transaction {
	out := make([]*transaction.Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = transaction.New(transaction.PostCreated, []byte{byte(i)})
	}
	return out
}

func TestBuildRejectsEmpty(t *testing.T) {
	if _, err := Build(nil); err != ErrEmpty {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestRootStableForSameInput(t *testing.T) {
	list := txs(4)
	t1, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t2, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r1, _ := t1.Root()
	r2, _ := t2.Root()
	if r1 != r2 {
		t.Fatal("root must be a pure function of the transaction list")
	}
}

func TestOddWidthDuplicatesLastLeaf(t *testing.T) {
	// three leaves: the tree must pad to four by repeating the last leaf and
	// still produce a single root.
	list := txs(3)
	tree, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root, err := tree.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	h0, _ := list[0].Hash()
	h1, _ := list[1].Hash()
	h2, _ := list[2].Hash()
	if want := hashPair(hashPair(h0, h1), hashPair(h2, h2)); root != want {
		t.Fatal("odd-width level must pair its last leaf with a copy of itself")
	}
}

func TestSingleLeafTreeRootEqualsLeafHash(t *testing.T) {
	list := txs(1)
	tree, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root, _ := tree.Root()
	want, _ := list[0].Hash()
	if root != want {
		t.Fatal("single-leaf tree root must equal the leaf hash")
	}
}

func TestProofVerifiesAgainstRoot(t *testing.T) {
	list := txs(5)
	tree, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root, _ := tree.Root()

	for _, tx := range list {
		proof, err := tree.Proof(list, tx.ID)
		if err != nil {
			t.Fatalf("Proof(%s): %v", tx.ID, err)
		}
		if !proof.Verify(root) {
			t.Fatalf("proof for %s failed to verify against root", tx.ID)
		}
	}
}

func TestProofFailsAgainstWrongRoot(t *testing.T) {
	list := txs(4)
	tree, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	proof, err := tree.Proof(list, list[0].ID)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	if proof.Verify([32]byte{1}) {
		t.Fatal("proof must not verify against an unrelated root")
	}
}

func TestProofNotFound(t *testing.T) {
	list := txs(2)
	tree, err := Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := tree.Proof(list, uuid.New()); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

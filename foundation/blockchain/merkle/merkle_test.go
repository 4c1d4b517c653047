package merkle_test

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func leaf(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

func pair(l, r [32]byte) [32]byte {
	return sha256.Sum256(append(l[:], r[:]...))
}

// =============================================================================

func Test_Root(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")

	type table struct {
		name   string
		leaves [][32]byte
		root   [32]byte
	}

	tt := []table{
		{name: "single", leaves: [][32]byte{a}, root: a},
		{name: "pair", leaves: [][32]byte{a, b}, root: pair(a, b)},
		{name: "odd", leaves: [][32]byte{a, b, c}, root: pair(pair(a, b), pair(c, c))},
	}

	t.Log("Given the need to calculate merkle roots.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				root, err := merkle.Root(tst.leaves)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to calculate the root: %v", failed, testID, err)
				}

				if root != tst.root {
					t.Logf("\t%s\tTest %d:\tgot: %x", failed, testID, root)
					t.Logf("\t%s\tTest %d:\texp: %x", failed, testID, tst.root)
					t.Fatalf("\t%s\tTest %d:\tShould get back the right root.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right root.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_NoLeaves(t *testing.T) {
	if _, err := merkle.Root(nil); !errors.Is(err, merkle.ErrNoLeaves) {
		t.Fatalf("\t%s\tShould reject an empty tree: %v", failed, err)
	}
	t.Logf("\t%s\tShould reject an empty tree.", success)
}

func Test_Proof(t *testing.T) {
	leaves := [][32]byte{leaf("a"), leaf("b"), leaf("c"), leaf("d"), leaf("e")}

	root, err := merkle.Root(leaves)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to calculate the root: %v", failed, err)
	}

	t.Log("Given the need to prove inclusion of every leaf.")
	{
		for i := range leaves {
			proof, err := merkle.Proof(leaves, i)
			if err != nil {
				t.Fatalf("\t%s\tLeaf %d:\tShould be able to build a proof: %v", failed, i, err)
			}

			if !merkle.Verify(root, leaves[i], proof) {
				t.Fatalf("\t%s\tLeaf %d:\tShould be able to verify the proof.", failed, i)
			}
			t.Logf("\t%s\tLeaf %d:\tShould be able to verify the proof.", success, i)

			if merkle.Verify(root, leaf("z"), proof) {
				t.Fatalf("\t%s\tLeaf %d:\tShould not verify a foreign leaf.", failed, i)
			}
		}
	}

	if _, err := merkle.Proof(leaves, len(leaves)); err == nil {
		t.Fatalf("\t%s\tShould reject an out of range index.", failed)
	}
}

// Package merkle computes merkle roots and inclusion proofs over the
// transaction digests of a block.
package merkle

import (
	"crypto/sha256"
	"errors"
)

// ErrNoLeaves is returned when a tree is requested over an empty set of leaves.
var ErrNoLeaves = errors.New("cannot construct tree with no content")

// Step is one sibling hash on the path from a leaf to the root. Left reports
// whether the sibling sits to the left of the running hash.
type Step struct {
	Hash [32]byte
	Left bool
}

// =============================================================================

// Root calculates the merkle root for the specified leaf digests. A level with
// an odd number of nodes duplicates its last node.
func Root(leaves [][32]byte) ([32]byte, error) {
	if len(leaves) == 0 {
		return [32]byte{}, ErrNoLeaves
	}

	level := leaves
	for len(level) > 1 {
		level = nextLevel(level)
	}

	return level[0], nil
}

// Proof returns the sibling path proving the leaf at the specified index is
// part of the tree.
func Proof(leaves [][32]byte, index int) ([]Step, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	if index < 0 || index >= len(leaves) {
		return nil, errors.New("leaf index out of range")
	}

	var steps []Step
	level := leaves
	for len(level) > 1 {
		level = pad(level)

		sibling := index ^ 1
		steps = append(steps, Step{
			Hash: level[sibling],
			Left: sibling < index,
		})

		level = nextLevel(level)
		index /= 2
	}

	return steps, nil
}

// Verify checks the leaf hashes up to the root through the proof.
func Verify(root [32]byte, leaf [32]byte, proof []Step) bool {
	h := leaf
	for _, step := range proof {
		switch step.Left {
		case true:
			h = hashPair(step.Hash, h)
		default:
			h = hashPair(h, step.Hash)
		}
	}

	return h == root
}

// =============================================================================

// pad duplicates the last node when the level holds an odd number of nodes.
func pad(level [][32]byte) [][32]byte {
	if len(level)%2 == 0 {
		return level
	}

	padded := make([][32]byte, len(level)+1)
	copy(padded, level)
	padded[len(level)] = level[len(level)-1]

	return padded
}

// nextLevel hashes every pair of nodes into the level above.
func nextLevel(level [][32]byte) [][32]byte {
	level = pad(level)

	next := make([][32]byte, len(level)/2)
	for i := 0; i < len(level); i += 2 {
		next[i/2] = hashPair(level[i], level[i+1])
	}

	return next
}

func hashPair(left, right [32]byte) [32]byte {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))

	return out
}

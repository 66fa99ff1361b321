// Package merkle implements the sorted-pair keccak256 merkle tree that
// proposal signing hashes and execution proofs are built on. The off-chain
// proposal layer and the on-chain wallet must agree on this construction
// exactly, so the tree sorts each sibling pair before hashing and duplicates
// the last node of odd layers.
package merkle

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoLayers indicates a tree too small to carry proofs. Trees with zero or
// one leaf have a root but no layers.
var ErrNoLayers = errors.New("no layers in the Merkle tree")

// Tree is a merkle tree over a set of leaf hashes.
type Tree struct {
	// Root authorizes the whole leaf set. An empty tree has a zero root and
	// a single leaf tree's root is the leaf itself.
	Root common.Hash

	// Layers holds every non-root level, leaves first. Odd levels carry the
	// duplicated trailing node so siblings always pair up.
	Layers [][]common.Hash
}

// NewTree builds a tree bottom-up from the given leaves.
func NewTree(leaves []common.Hash) *Tree {
	layers := make([][]common.Hash, 0)
	if len(leaves) == 0 {
		return &Tree{Root: common.Hash{}, Layers: layers}
	}

	level := leaves
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		layers = append(layers, level)

		parents := make([]common.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			parents[i/2] = hashPair(level[i], level[i+1])
		}
		level = parents
	}

	return &Tree{Root: level[0], Layers: layers}
}

// GetProof returns the sibling hashes that fold the given leaf back up to
// the root.
func (t *Tree) GetProof(hash common.Hash) ([]common.Hash, error) {
	proof := make([]common.Hash, 0)
	target := hash

	for _, layer := range t.Layers {
		found := false
		for i, node := range layer {
			if node != target {
				continue
			}

			sibling := layer[i^1]
			proof = append(proof, sibling)
			target = hashPair(target, sibling)
			found = true

			break
		}

		if !found {
			return nil, NewTreeNodeNotFoundError(target)
		}
	}

	return proof, nil
}

// GetProofs returns a proof per leaf, keyed by the leaf hash.
func (t *Tree) GetProofs() (map[common.Hash][]common.Hash, error) {
	if len(t.Layers) == 0 {
		return nil, ErrNoLayers
	}

	proofs := make(map[common.Hash][]common.Hash)
	for _, leaf := range t.Layers[0] {
		proof, err := t.GetProof(leaf)
		if err != nil {
			return nil, err
		}
		proofs[leaf] = proof
	}

	return proofs, nil
}

// VerifyProof folds a leaf hash through a proof and reports whether the
// result equals the expected root. An empty proof verifies only the root
// itself, which covers single leaf trees.
func VerifyProof(leaf common.Hash, proof []common.Hash, root common.Hash) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}

	return computed == root
}

// TreeNodeNotFoundError indicates that a hash is not a node of the tree.
type TreeNodeNotFoundError struct {
	TargetHash common.Hash
}

func NewTreeNodeNotFoundError(targetHash common.Hash) *TreeNodeNotFoundError {
	return &TreeNodeNotFoundError{TargetHash: targetHash}
}

func (e *TreeNodeNotFoundError) Error() string {
	return "merkle tree does not contain hash: " + e.TargetHash.String()
}

// hashPair hashes the concatenation of a and b with the smaller hash first,
// so proofs do not need direction bits.
func hashPair(a, b common.Hash) common.Hash {
	var buf [64]byte
	if a.Cmp(b) < 0 {
		copy(buf[:32], a[:])
		copy(buf[32:], b[:])
	} else {
		copy(buf[:32], b[:])
		copy(buf[32:], a[:])
	}

	return crypto.Keccak256Hash(buf[:])
}

// Copyright 2024 The go-equa Authors
// Block Chain and GHOST Estimator

package casper

import "github.com/equa/casper-core/common"

// Block is the blockchain estimator's value type (spec.md §3): a
// content-addressed node with an optional parent and caller-supplied
// opaque data, shared by pointer the way Message is. The genesis block has
// Prev == nil. Mirrors engine/types.go's Fork tracking a tip plus a
// parent-chain walk, specialized to a content-addressed chain.
type Block struct {
	Prev *Block
	Data []byte
	id   common.Hash
}

// NewBlock constructs a block and computes its content id once.
func NewBlock(prev *Block, data []byte) *Block {
	b := &Block{Prev: prev, Data: data}
	prevID := common.Hash{}
	if prev != nil {
		prevID = prev.id
	}
	b.id = Hash(encodeBlock(prevID, data))
	return b
}

// ID returns the cached content id.
func (b *Block) ID() common.Hash { return b.id }

// CanonicalEncode implements Estimate: a block is identified by its own
// content id, the way Message.CanonicalEncode works.
func (b *Block) CanonicalEncode() []byte { return b.id.Bytes() }

// Equal compares two blocks by id (or pointer identity as a fast path).
func (b *Block) Equal(other *Block) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	return b.id == other.id
}

// IsMember reports whether b is rhs or one of rhs's ancestors, walking the
// Prev chain.
func (b *Block) IsMember(rhs *Block) bool {
	for cur := rhs; cur != nil; cur = cur.Prev {
		if b.Equal(cur) {
			return true
		}
	}
	return false
}

// BlockEstimator is the blockchain GHOST estimator of spec.md §4.7. An
// optional Finalized floor restricts descent to never re-pick a block
// behind an already-finalized one (see SPEC_FULL.md §10).
type BlockEstimator struct {
	Finalized *Block
}

var _ Estimator[*Block] = BlockEstimator{}

func (e BlockEstimator) Estimate(honest *LatestMessagesHonest[*Block], weights *Weights) (*Block, error) {
	msgs := honest.Messages()
	switch len(msgs) {
	case 0:
		return nil, &EstimatorError{Detail: ErrNoPrevblock}
	case 1:
		// Single-parent fast path: build directly on the lone tip without
		// invoking GHOST, matching the original's Block::mk_estimate
		// single-message case (see SPEC_FULL.md §10).
		return msgs[0].Estimate(), nil
	default:
		return Ghost(msgs, weights, e.Finalized)
	}
}

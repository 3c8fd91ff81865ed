// Copyright 2024 The go-equa Authors
// Vote-Count Tally Estimator

package casper

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// VoteCount is a yes/no tally estimate.
type VoteCount struct {
	Yes uint64
	No  uint64
}

// CanonicalEncode implements Estimate.
func (v VoteCount) CanonicalEncode() []byte {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], v.Yes)
	binary.BigEndian.PutUint64(buf[8:16], v.No)
	return buf[:]
}

// VoteCountEstimator sums each honest message's yes/no fields, weighted by
// the sender's weight, into a combined tally (spec.md §4.6).
type VoteCountEstimator struct{}

var _ Estimator[VoteCount] = VoteCountEstimator{}

func (VoteCountEstimator) Estimate(honest *LatestMessagesHonest[VoteCount], weights *Weights) (VoteCount, error) {
	yesTotal := uint256.NewInt(0)
	noTotal := uint256.NewInt(0)
	for _, m := range honest.Messages() {
		w, err := weights.Weight(m.Sender())
		if err != nil || w.IsInf() || w.IsNaN() {
			continue
		}
		vote := m.Estimate()
		yesTotal.Add(yesTotal, new(uint256.Int).Mul(w.val, uint256.NewInt(vote.Yes)))
		noTotal.Add(noTotal, new(uint256.Int).Mul(w.val, uint256.NewInt(vote.No)))
	}
	return VoteCount{Yes: saturateUint64(yesTotal), No: saturateUint64(noTotal)}, nil
}

func saturateUint64(v *uint256.Int) uint64 {
	if v.IsUint64() {
		return v.Uint64()
	}
	return ^uint64(0)
}

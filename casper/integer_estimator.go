// Copyright 2024 The go-equa Authors
// Integer Weighted-Median Estimator

package casper

import (
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"
)

// Integer is a scalar integer-valued estimate.
type Integer int64

// CanonicalEncode implements Estimate: fixed-width big-endian two's
// complement, matching the teacher's big-endian byte-packing idiom in
// engine/attestation.go's attestationSigningMessage.
func (i Integer) CanonicalEncode() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(i))
	return buf[:]
}

// IntegerEstimator is the weighted-median estimator of spec.md §4.6: honest
// messages are sorted by sender weight ascending (ties broken by message
// id), then scanned summing sender weight until the running total exceeds
// half the total known weight; the estimate of the next message after that
// point is the median. Grounded on original_source/src/example/integer.rs,
// which sorts via senders_weights.get_weight(a.get_sender()) rather than
// by the estimate value itself.
type IntegerEstimator struct{}

var _ Estimator[Integer] = IntegerEstimator{}

func (IntegerEstimator) Estimate(honest *LatestMessagesHonest[Integer], weights *Weights) (Integer, error) {
	type weighted struct {
		msg *Message[Integer]
		w   *uint256.Int
	}

	msgs := honest.Messages()
	entries := make([]weighted, 0, len(msgs))
	total := uint256.NewInt(0)
	for _, m := range msgs {
		w, err := weights.Weight(m.Sender())
		if err != nil || w.IsInf() || w.IsNaN() {
			continue // unknown/unbounded validators do not count in the median
		}
		entries = append(entries, weighted{msg: m, w: w.val})
		total.Add(total, w.val)
	}

	sort.Slice(entries, func(i, j int) bool {
		c := entries[i].w.Cmp(entries[j].w)
		if c != 0 {
			return c < 0
		}
		return entries[i].msg.ID().Cmp(entries[j].msg.ID()) < 0
	})

	running := uint256.NewInt(0)
	twiceRunning := uint256.NewInt(0)
	for _, e := range entries {
		if twiceRunning.Cmp(total) > 0 {
			return e.msg.Estimate(), nil
		}
		running.Add(running, e.w)
		twiceRunning = new(uint256.Int).Lsh(running, 1)
	}
	if len(entries) == 0 {
		return 0, &EstimatorError{Detail: ErrNoNewMessage}
	}
	// The running total exceeded half only after the last entry (or the
	// total weight is zero), so there is no next entry: the heaviest entry
	// is the median.
	return entries[len(entries)-1].msg.Estimate(), nil
}

// Copyright 2024 The go-equa Authors
// Ternary Plurality Estimator

package casper

// TernaryValue is a small closed set of discrete values (e.g. three
// ballot options); ordered numerically, where a higher value is treated
// as "more recently declared" for tie-breaking.
type TernaryValue uint8

// CanonicalEncode implements Estimate.
func (t TernaryValue) CanonicalEncode() []byte { return []byte{byte(t)} }

// TernaryEstimator is the weighted-plurality-with-tiebreak estimator of
// spec.md §4.6: accumulate per-value weight, choose the highest-weight
// value, breaking ties by preferring the numerically greatest (documented
// as "lexicographically-latest declared") value.
type TernaryEstimator struct{}

var _ Estimator[TernaryValue] = TernaryEstimator{}

func (TernaryEstimator) Estimate(honest *LatestMessagesHonest[TernaryValue], weights *Weights) (TernaryValue, error) {
	totals := make(map[TernaryValue]Weight)
	for _, m := range honest.Messages() {
		w, err := weights.Weight(m.Sender())
		if err != nil {
			continue
		}
		v := m.Estimate()
		cur, ok := totals[v]
		if !ok {
			cur = WeightZero()
		}
		totals[v] = cur.Add(w)
	}
	if len(totals) == 0 {
		return 0, &EstimatorError{Detail: ErrNoNewMessage}
	}

	var best TernaryValue
	bestWeight := WeightZero()
	first := true
	for v, w := range totals {
		if first {
			best, bestWeight, first = v, w, false
			continue
		}
		c, ok := w.Cmp(bestWeight)
		if (ok && c > 0) || (ok && c == 0 && v > best) || (!ok && v > best) {
			best, bestWeight = v, w
		}
	}
	return best, nil
}

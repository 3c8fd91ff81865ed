// Copyright 2024 The go-equa Authors
// Binary Weighted-Majority Estimator

package casper

// Binary is a boolean-valued estimate.
type Binary bool

// CanonicalEncode implements Estimate.
func (b Binary) CanonicalEncode() []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// BinaryEstimator is the weighted-majority-vote estimator of spec.md §4.6:
// accumulate true/false weight over the honest frontier, estimate is
// true_w >= false_w (ties go to true).
type BinaryEstimator struct{}

var _ Estimator[Binary] = BinaryEstimator{}

func (BinaryEstimator) Estimate(honest *LatestMessagesHonest[Binary], weights *Weights) (Binary, error) {
	trueW := WeightZero()
	falseW := WeightZero()
	for _, m := range honest.Messages() {
		w, err := weights.Weight(m.Sender())
		if err != nil {
			continue // unknown validator does not count, spec.md §7
		}
		if bool(m.Estimate()) {
			trueW = trueW.Add(w)
		} else {
			falseW = falseW.Add(w)
		}
	}
	return Binary(falseW.LessOrEqual(trueW)), nil
}

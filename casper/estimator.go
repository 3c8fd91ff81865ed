// Copyright 2024 The go-equa Authors
// Estimator Interface

package casper

// Estimator is the pluggable rule of spec.md C7: a pure, deterministic,
// side-effect-free reduction from the honest frontier plus a weight
// distribution to a new estimate. Every concrete estimator (Binary,
// Integer, VoteCount, Ternary, Block/GHOST) is a distinct type implementing
// this single-method capability interface, the same shape as the teacher's
// consensus.Engine-style capability interfaces in consensus/equa/equa.go —
// no inheritance hierarchy, per spec.md §9.
type Estimator[E Estimate] interface {
	Estimate(honest *LatestMessagesHonest[E], weights *Weights) (E, error)
}

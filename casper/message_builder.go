// Copyright 2024 The go-equa Authors
// Message Construction From State

package casper

// FromState constructs a new message for sender by snapshotting the
// honest frontier, invoking the estimator, and wrapping the result
// (spec.md C12 / §4.5). Grounded on engine/engine.go's proposeBlock:
// snapshot state, build, append. The resulting estimate is reproducible
// by any party holding only the returned message's justification, since
// the estimator is a pure function of the honest frontier and weights.
//
// As a fast path equivalent to proposeBlock's parent-hash shortcut, sender's
// own last message (ValidatorState.Own) is folded into the justification
// directly rather than rediscovered by scanning the honest frontier: this
// matters when sender itself is a recorded equivocator and so is excluded
// from Honest, in which case its own prior message would otherwise be
// dropped from the new message's justification entirely.
func FromState[E Estimate](sender ValidatorID, state *ValidatorState[E], estimator Estimator[E]) (*Message[E], error) {
	honest := state.Honest()
	own, hasOwn := state.Own()
	hasOwn = hasOwn && own.Sender() == sender

	if honest.IsEmpty() && !hasOwn {
		return nil, ErrNoNewMessage
	}

	estimate, err := estimator.Estimate(honest, state.Weights())
	if err != nil {
		return nil, &EstimatorError{Detail: err}
	}

	justification := honest.Justification()
	if hasOwn {
		justification.Insert(own)
	}
	return NewMessage(sender, justification, estimate), nil
}

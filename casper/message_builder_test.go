// Copyright 2024 The go-equa Authors
// Message Construction From State Tests

package casper

import "testing"

func TestFromStateFoldsOwnEquivocatorMessageIntoJustification(t *testing.T) {
	w := weightsOf(t, map[ValidatorID]uint64{1: 10, 2: 10})
	vs := NewValidatorState[Binary](w, WeightZero(), nil, WeightFromUint64(10), nil)
	vs.SetSelf(1)

	m1 := NewMessage[Binary](1, nil, Binary(true))
	m2 := NewMessage[Binary](1, nil, Binary(false)) // equivocates with m1, admitted within threshold
	vs.Update([]*Message[Binary]{m1})
	vs.Update([]*Message[Binary]{m2})

	if !vs.Equivocators().Contains(1) {
		t.Fatalf("validator 1 should be a recorded equivocator")
	}
	vs.Update([]*Message[Binary]{NewMessage[Binary](2, nil, Binary(true))})

	own, ok := vs.Own()
	if !ok {
		t.Fatalf("expected an own message to be tracked")
	}

	msg, err := FromState[Binary](1, vs, BinaryEstimator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !msg.Justification().ContainsID(own.ID()) {
		t.Fatalf("FromState must fold sender's own message into the justification even though validator 1 is excluded from the honest frontier")
	}
}

func TestFromStateNoNewMessageWhenFrontierAndOwnAreEmpty(t *testing.T) {
	w := weightsOf(t, map[ValidatorID]uint64{1: 10})
	vs := NewValidatorState[Binary](w, WeightZero(), nil, WeightZero(), nil)
	vs.SetSelf(1)

	_, err := FromState[Binary](1, vs, BinaryEstimator{})
	if err != ErrNoNewMessage {
		t.Fatalf("expected ErrNoNewMessage, got %v", err)
	}
}

func TestFromStateOrdinaryCaseMatchesHonestJustification(t *testing.T) {
	w := weightsOf(t, map[ValidatorID]uint64{1: 10, 2: 10})
	vs := NewValidatorState[Binary](w, WeightZero(), nil, WeightZero(), nil)
	vs.SetSelf(2)
	vs.Update([]*Message[Binary]{NewMessage[Binary](1, nil, Binary(true))})

	msg, err := FromState[Binary](2, vs, BinaryEstimator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Justification().Len() != 1 {
		t.Fatalf("expected the single honest message from validator 1 in the justification, got %d members", msg.Justification().Len())
	}
}

// Copyright 2024 The go-equa Authors
// Validator Weight Registry Tests

package casper

import "testing"

func TestWeightUnknownValidatorIsNaN(t *testing.T) {
	w := NewWeights(nil)
	got, err := w.Weight(1)
	if err != ErrUnknownValidator {
		t.Fatalf("expected ErrUnknownValidator, got %v", err)
	}
	if !got.IsNaN() {
		t.Fatalf("an unknown validator's weight must report IsNaN")
	}
}

func TestWeightSumSkipsUnknownValidators(t *testing.T) {
	w := NewWeights(map[ValidatorID]Weight{1: WeightFromUint64(5), 2: WeightFromUint64(7)})
	total := w.Sum([]ValidatorID{1, 2, 99})
	if !total.LessOrEqual(WeightFromUint64(12)) || !WeightFromUint64(12).LessOrEqual(total) {
		t.Fatalf("expected sum 12 skipping the unknown validator 99, got %s", total)
	}
}

func TestWeightSlashZeroesInPlace(t *testing.T) {
	w := NewWeights(map[ValidatorID]Weight{1: WeightFromUint64(5)})
	w.Slash(1)
	got, err := w.Weight(1)
	if err != nil {
		t.Fatalf("a slashed validator must remain a known entry: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("a slashed validator's weight must be zero, got %s", got)
	}
}

func TestWeightCmpIncomparableOnNaN(t *testing.T) {
	_, ok := WeightNaN().Cmp(WeightFromUint64(1))
	if ok {
		t.Fatalf("comparing against NaN must report incomparable")
	}
	if !WeightNaN().LessOrEqual(WeightFromUint64(1)) {
		t.Fatalf("LessOrEqual must treat an incomparable operand as equal (tie), per the GHOST tie-break resolution")
	}
}

func TestWeightInfDominatesFinite(t *testing.T) {
	c, ok := WeightInf().Cmp(WeightFromUint64(1_000_000_000))
	if !ok || c <= 0 {
		t.Fatalf("Inf must compare greater than any finite weight")
	}
}

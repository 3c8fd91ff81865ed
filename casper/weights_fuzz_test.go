// Copyright 2024 The go-equa Authors
// Validator Weight Registry Fuzz Tests

package casper

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

// TestWeightsSumMatchesIndividualLookupsFuzzed generates random validator
// weight tables with gofuzz (a teacher-pack fuzzing dependency) and asserts,
// via testify, that Sum over the full validator set always equals the
// sequential addition of each validator's individually looked-up weight -
// the invariant Weights.Sum is built to preserve.
func TestWeightsSumMatchesIndividualLookupsFuzzed(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 20).Funcs(
		func(w *uint64, c fuzz.Continue) {
			*w = c.Uint64() % 1_000_000
		},
	)

	for i := 0; i < 50; i++ {
		var raw map[ValidatorID]uint64
		f.Fuzz(&raw)

		init := make(map[ValidatorID]Weight, len(raw))
		ids := make([]ValidatorID, 0, len(raw))
		for v, w := range raw {
			init[v] = WeightFromUint64(w)
			ids = append(ids, v)
		}
		weights := NewWeights(init)

		want := WeightZero()
		for _, v := range ids {
			w, err := weights.Weight(v)
			require.NoError(t, err)
			want = want.Add(w)
		}

		got := weights.Sum(ids)
		c, ok := got.Cmp(want)
		require.True(t, ok, "fuzzed sums must be comparable (finite): got=%s want=%s", got, want)
		require.Zero(t, c, "Sum(%v) = %s, want %s", ids, got, want)
	}
}

// TestWeightsSumFuzzedIgnoresUnknownValidators extends the fuzzed table with
// a disjoint set of unknown validator ids and checks that Sum over the
// combined set still equals the sum restricted to the known ids.
func TestWeightsSumFuzzedIgnoresUnknownValidators(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 10)

	var raw map[ValidatorID]uint64
	f.Fuzz(&raw)

	init := make(map[ValidatorID]Weight, len(raw))
	known := make([]ValidatorID, 0, len(raw))
	for v, w := range raw {
		init[v] = WeightFromUint64(w % 1_000_000)
		known = append(known, v)
	}
	weights := NewWeights(init)

	unknown := []ValidatorID{^ValidatorID(0), ^ValidatorID(0) - 1, ^ValidatorID(0) - 2}
	combined := append(append([]ValidatorID{}, known...), unknown...)

	require.True(t, weightEqual(weights.Sum(known), weights.Sum(combined)),
		"unknown validators must not change the sum")
}

func weightEqual(a, b Weight) bool {
	c, ok := a.Cmp(b)
	return ok && c == 0
}

// Copyright 2024 The go-equa Authors
// Bron-Kerbosch Safety Oracle Tests

package casper

import "testing"

// buildMutualAgreement constructs three validators whose own messages each
// justify the full honest set, so each sees the other two agreeing on the
// candidate block and vice versa — a mutual-agreement triangle.
func buildMutualAgreement(t *testing.T, candidate *Block) []*Message[*Block] {
	t.Helper()
	a := NewMessage[*Block](1, nil, candidate)
	b := NewMessage[*Block](2, nil, candidate)
	c := NewMessage[*Block](3, nil, candidate)

	j := JustificationOf([]*Message[*Block]{a, b, c})
	a2 := NewMessage[*Block](1, j, candidate)
	b2 := NewMessage[*Block](2, j, candidate)
	c2 := NewMessage[*Block](3, j, candidate)
	return []*Message[*Block]{a2, b2, c2}
}

func TestSafetyOracleFindsCliqueAboveThreshold(t *testing.T) {
	w := weightsOf(t, map[ValidatorID]uint64{1: 10, 2: 10, 3: 10})
	genesis := NewBlock(nil, []byte("genesis"))
	candidate := NewBlock(genesis, []byte("candidate"))

	msgs := buildMutualAgreement(t, candidate)
	honest := honestOf(msgs...)

	cliques := SafetyOracles(candidate, honest, w, WeightFromUint64(20))
	if len(cliques) == 0 {
		t.Fatalf("expected at least one clique exceeding weight 20 (total mutual weight is 30)")
	}
	found := false
	for _, c := range cliques {
		if len(c.Validators) == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the full 3-validator mutual-agreement clique to be reported, got %+v", cliques)
	}
}

func TestSafetyOracleEmptyWhenBelowThreshold(t *testing.T) {
	w := weightsOf(t, map[ValidatorID]uint64{1: 10, 2: 10, 3: 10})
	genesis := NewBlock(nil, []byte("genesis"))
	candidate := NewBlock(genesis, []byte("candidate"))

	msgs := buildMutualAgreement(t, candidate)
	honest := honestOf(msgs...)

	cliques := SafetyOracles(candidate, honest, w, WeightFromUint64(1_000_000))
	if len(cliques) != 0 {
		t.Fatalf("no clique should exceed an unreachable threshold, got %+v", cliques)
	}
}

func TestSafetyOracleIgnoresNonAgreeingValidators(t *testing.T) {
	w := weightsOf(t, map[ValidatorID]uint64{1: 10, 2: 10, 3: 10})
	genesis := NewBlock(nil, []byte("genesis"))
	candidate := NewBlock(genesis, []byte("candidate"))
	other := NewBlock(genesis, []byte("other"))

	a := NewMessage[*Block](1, nil, candidate)
	b := NewMessage[*Block](2, nil, candidate)
	c := NewMessage[*Block](3, nil, other) // disagrees

	j := JustificationOf([]*Message[*Block]{a, b, c})
	a2 := NewMessage[*Block](1, j, candidate)
	b2 := NewMessage[*Block](2, j, candidate)

	honest := honestOf(a2, b2, c)

	cliques := SafetyOracles(candidate, honest, w, WeightZero())
	for _, clique := range cliques {
		for _, v := range clique.Validators {
			if v == 3 {
				t.Fatalf("validator 3 disagreed with the candidate and must never appear in a reported clique")
			}
		}
	}
}

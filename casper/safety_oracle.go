// Copyright 2024 The go-equa Authors
// Bron-Kerbosch Safety Oracle

package casper

import mapset "github.com/deckarep/golang-set/v2"

// Clique is a maximal set of validators mutually agreeing on a candidate
// block, together with its total weight.
type Clique struct {
	Validators []ValidatorID
	Weight     Weight
}

// SafetyOracles implements spec.md §4.8's Bron-Kerbosch safety oracle,
// grounded on the "mutual-view-agreement" graph the spec describes and on
// engine/finality.go's weight-threshold filtering idiom (the same 2/3-stake
// style check, generalized to an arbitrary threshold here). A non-empty
// result certifies candidate (and its ancestors) as locally final for this
// observer.
func SafetyOracles(candidate *Block, honest *LatestMessagesHonest[*Block], weights *Weights, threshold Weight) []Clique {
	agreeing := make(map[ValidatorID]*Message[*Block])
	for _, m := range honest.Messages() {
		if candidate.IsMember(m.Estimate()) {
			agreeing[m.Sender()] = m
		}
	}

	// M[v] = the set of senders v saw (through v's own justification) as
	// agreeing on candidate, from v's point of view.
	seenAgreeing := make(map[ValidatorID]mapset.Set[ValidatorID], len(agreeing))
	for v, m := range agreeing {
		localLatest := LatestMessagesFromJustification(m.Justification())
		localEquivocators := make(map[ValidatorID]bool)
		for _, sender := range localLatest.Senders() {
			msgs, _ := localLatest.Get(sender)
			if len(msgs) > 1 {
				localEquivocators[sender] = true
			}
		}
		localHonest := NewLatestMessagesHonest(localLatest, localEquivocators)

		seen := mapset.NewThreadUnsafeSet[ValidatorID]()
		for _, lm := range localHonest.Messages() {
			if candidate.IsMember(lm.Estimate()) {
				seen.Add(lm.Sender())
			}
		}
		seenAgreeing[v] = seen
	}

	// Undirected edge v--w iff each has seen the other agreeing on B.
	neighbors := make(map[ValidatorID]mapset.Set[ValidatorID], len(agreeing))
	for v := range agreeing {
		neighbors[v] = mapset.NewThreadUnsafeSet[ValidatorID]()
	}
	for v, seenByV := range seenAgreeing {
		for _, w := range seenByV.ToSlice() {
			if w == v {
				continue
			}
			seenByW, ok := seenAgreeing[w]
			if !ok {
				continue
			}
			if seenByW.Contains(v) {
				neighbors[v].Add(w)
				neighbors[w].Add(v)
			}
		}
	}

	vertices := mapset.NewThreadUnsafeSet[ValidatorID]()
	for v := range agreeing {
		vertices.Add(v)
	}

	var cliques [][]ValidatorID
	bronKerbosch(mapset.NewThreadUnsafeSet[ValidatorID](), vertices, mapset.NewThreadUnsafeSet[ValidatorID](), neighbors, &cliques)

	out := make([]Clique, 0, len(cliques))
	for _, clique := range cliques {
		w := weights.Sum(clique)
		if c, ok := w.Cmp(threshold); ok && c > 0 {
			out = append(out, Clique{Validators: clique, Weight: w})
		} else if !ok {
			// incomparable (NaN threshold side): treat as not exceeding.
			continue
		}
	}
	return out
}

// bronKerbosch is the classical recursive maximal-clique enumeration
// without pivoting (spec.md §9: pivoting is a performance tweak, not a
// correctness requirement, given small validator sets).
func bronKerbosch(r, p, x mapset.Set[ValidatorID], neighbors map[ValidatorID]mapset.Set[ValidatorID], out *[][]ValidatorID) {
	if p.Cardinality() == 0 && x.Cardinality() == 0 {
		*out = append(*out, r.ToSlice())
		return
	}
	for _, v := range p.ToSlice() {
		nv := neighbors[v]
		newR := r.Clone()
		newR.Add(v)
		bronKerbosch(newR, p.Intersect(nv), x.Intersect(nv), neighbors, out)
		p.Remove(v)
		x.Add(v)
	}
}

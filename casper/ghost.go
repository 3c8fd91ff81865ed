// Copyright 2024 The go-equa Authors
// GHOST Fork Choice

package casper

import "github.com/equa/casper-core/common"

// Ghost implements spec.md §4.7's Greedy Heaviest-Observed SubTree rule
// over the block chains reachable from the honest frontier's tips,
// grounded on engine/fork_reputation.go's ForkChoice weight-based descent.
//
// 1. Parse: walk each tip's Prev chain, scoring every visited block by the
//    sum of weights of validators whose tip descends from (or equals) it,
//    and recording the children relation.
// 2. Pick heaviest: starting at the genesis set (or at finalized, if
//    given and present on one of the parsed chains, as a lower bound; a
//    finalized block on no parsed chain is ignored), repeatedly descend
//    into the highest-scoring child, breaking ties by block id descending, until a
//    block with no children is reached.
// 3. Return that chain tip.
func Ghost(tips []*Message[*Block], weights *Weights, finalized *Block) (*Block, error) {
	if len(tips) == 0 {
		return nil, &EstimatorError{Detail: ErrNoPrevblock}
	}

	score := make(map[common.Hash]Weight)
	children := make(map[common.Hash][]*Block)
	blocksByID := make(map[common.Hash]*Block)
	genesisSet := make(map[common.Hash]*Block)

	for _, tip := range tips {
		w, err := weights.Weight(tip.Sender())
		if err != nil {
			continue // unknown validator's tip does not count, spec.md §7
		}
		for cur := tip.Estimate(); cur != nil; cur = cur.Prev {
			id := cur.ID()
			blocksByID[id] = cur
			if existing, ok := score[id]; ok {
				score[id] = existing.Add(w)
			} else {
				score[id] = w
			}
			if cur.Prev != nil {
				pid := cur.Prev.ID()
				if !containsBlock(children[pid], cur) {
					children[pid] = append(children[pid], cur)
				}
			} else {
				genesisSet[id] = cur
			}
		}
	}

	if len(blocksByID) == 0 {
		return nil, &EstimatorError{Detail: ErrNoPrevblock}
	}

	candidates := make([]*Block, 0, len(genesisSet))
	for _, b := range genesisSet {
		candidates = append(candidates, b)
	}
	if finalized != nil {
		if _, ok := blocksByID[finalized.ID()]; ok {
			candidates = []*Block{finalized}
		}
	}
	if len(candidates) == 0 {
		return nil, &EstimatorError{Detail: ErrNoPrevblock}
	}

	current := pickHeaviest(candidates, score)
	for {
		kids := children[current.ID()]
		if len(kids) == 0 {
			return current, nil
		}
		current = pickHeaviest(kids, score)
	}
}

// pickHeaviest selects the highest-scored candidate, breaking ties (equal
// or incomparable score) by block id descending, per spec.md §4.7 and
// §9's GHOST tie-break resolution.
func pickHeaviest(candidates []*Block, score map[common.Hash]Weight) *Block {
	best := candidates[0]
	bestScore := score[best.ID()]
	for _, c := range candidates[1:] {
		cScore := score[c.ID()]
		cmp, ok := cScore.Cmp(bestScore)
		switch {
		case ok && cmp > 0:
			best, bestScore = c, cScore
		case (!ok || cmp == 0) && c.ID().Cmp(best.ID()) > 0:
			best, bestScore = c, cScore
		}
	}
	return best
}

func containsBlock(blocks []*Block, b *Block) bool {
	for _, existing := range blocks {
		if existing.Equal(b) {
			return true
		}
	}
	return false
}

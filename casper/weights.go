// Copyright 2024 The go-equa Authors
// Validator Weight Registry

package casper

import (
	"fmt"
	"sort"
	"sync"

	"github.com/holiman/uint256"
)

// ValidatorID identifies a validator. It is ordered and hashable, usable
// directly as a map key or a mapset.Set element.
type ValidatorID uint32

// Weight is a non-negative validator weight with two sentinel states beyond
// an ordinary finite value: NaN (the registry has no entry for a validator)
// and Inf (used by fault-weight accounting to represent an unknown
// validator's contribution, per spec.md §7's UnknownValidator handling).
// Backed by holiman/uint256.Int for the finite case, the teacher's weight
// arithmetic type throughout consensus/equa and engine/types.go.
type Weight struct {
	val *uint256.Int
	inf bool
	nan bool
}

// WeightZero returns the additive identity.
func WeightZero() Weight { return Weight{val: uint256.NewInt(0)} }

// WeightFromUint64 builds a finite weight.
func WeightFromUint64(v uint64) Weight { return Weight{val: uint256.NewInt(v)} }

// WeightInf returns the sentinel used for an unknown validator's
// fault-weight contribution: any finite threshold rejects it.
func WeightInf() Weight { return Weight{inf: true} }

// WeightNaN returns the sentinel for "no entry", spec.md §3's "not a
// number" weight.
func WeightNaN() Weight { return Weight{nan: true} }

// IsNaN reports whether w is the no-entry sentinel.
func (w Weight) IsNaN() bool { return w.nan }

// IsInf reports whether w is the unknown-validator fault-budget sentinel.
func (w Weight) IsInf() bool { return w.inf }

// IsZero reports whether w is the finite zero weight.
func (w Weight) IsZero() bool { return !w.nan && !w.inf && w.val.IsZero() }

// Add returns w+o. NaN propagates; Inf dominates any finite value.
func (w Weight) Add(o Weight) Weight {
	if w.nan || o.nan {
		return WeightNaN()
	}
	if w.inf || o.inf {
		return WeightInf()
	}
	return Weight{val: new(uint256.Int).Add(w.val, o.val)}
}

// Cmp orders two weights. The second return value is false when either
// operand is NaN, i.e. the two are incomparable.
func (w Weight) Cmp(o Weight) (int, bool) {
	if w.nan || o.nan {
		return 0, false
	}
	switch {
	case w.inf && o.inf:
		return 0, true
	case w.inf:
		return 1, true
	case o.inf:
		return -1, true
	default:
		return w.val.Cmp(o.val), true
	}
}

// LessOrEqual reports w <= o, treating incomparable (NaN) operands as
// equal, per spec.md §9's prescribed GHOST tie-break resolution applied
// uniformly to weight comparisons.
func (w Weight) LessOrEqual(o Weight) bool {
	c, ok := w.Cmp(o)
	if !ok {
		return true
	}
	return c <= 0
}

// String implements fmt.Stringer for logging.
func (w Weight) String() string {
	switch {
	case w.nan:
		return "NaN"
	case w.inf:
		return "+Inf"
	default:
		return w.val.Dec()
	}
}

// ErrUnknownValidator is returned by Weights.Weight for a sender with no
// registry entry.
var ErrUnknownValidator = fmt.Errorf("casper: unknown validator")

// Weights is a mutable validator -> weight registry. Grounded on
// consensus/equa/stake.go's StakeManager: RWMutex-guarded map with lookup,
// sum-over-subset, and in-place mutation (slashing).
type Weights struct {
	mu sync.RWMutex
	m  map[ValidatorID]Weight
}

// NewWeights builds a registry from an initial validator -> weight mapping.
func NewWeights(init map[ValidatorID]Weight) *Weights {
	w := &Weights{m: make(map[ValidatorID]Weight, len(init))}
	for k, v := range init {
		w.m[k] = v
	}
	return w
}

// Weight returns v's weight, or ErrUnknownValidator if v has no entry.
func (w *Weights) Weight(v ValidatorID) (Weight, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	weight, ok := w.m[v]
	if !ok {
		return WeightNaN(), ErrUnknownValidator
	}
	return weight, nil
}

// Sum returns the total weight of the given subset, skipping unknown
// validators (they contribute nothing, per spec.md §7's estimator-weighting
// rule for UnknownValidator).
func (w *Weights) Sum(subset []ValidatorID) Weight {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := WeightZero()
	for _, v := range subset {
		if weight, ok := w.m[v]; ok {
			total = total.Add(weight)
		}
	}
	return total
}

// Total returns the sum of every registered validator's weight.
func (w *Weights) Total() Weight {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := WeightZero()
	for _, weight := range w.m {
		total = total.Add(weight)
	}
	return total
}

// Insert sets (or overwrites) v's weight.
func (w *Weights) Insert(v ValidatorID, weight Weight) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.m[v] = weight
}

// Slash zeroes v's weight in place, the mechanism by which an observer
// "forgets" an equivocator's future fault-weight contribution (spec.md
// §4.4's slashing insertion path), grounded on stake.go's
// percentage-of-stake SlashValidator but specialized to the full-zero case
// the casper insertion discipline needs.
func (w *Weights) Slash(v ValidatorID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.m[v] = WeightZero()
}

// Iter returns a deterministically ordered snapshot of (validator, weight)
// pairs.
func (w *Weights) Iter() []ValidatorWeight {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]ValidatorWeight, 0, len(w.m))
	for k, v := range w.m {
		out = append(out, ValidatorWeight{Validator: k, Weight: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Validator < out[j].Validator })
	return out
}

// ValidatorWeight pairs a validator with its weight, used by Iter and by
// cmd/casper-inspect's table rendering.
type ValidatorWeight struct {
	Validator ValidatorID
	Weight    Weight
}

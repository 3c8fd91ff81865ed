// Copyright 2024 The go-equa Authors
// Validator State Machine

package casper

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/equa/casper-core/common"
)

// ValidatorState aggregates one observer's view of the protocol (spec.md
// C8): a weight registry, the raw frontier, the equivocator set, and a
// fault-weight budget. Guarded by sync.RWMutex for the single-writer/
// many-reader discipline of spec.md §5, matching every stateful component
// in the teacher (engine.Engine, FinalityEngine, ForkChoice all use
// sync.RWMutex the same way).
type ValidatorState[E Estimate] struct {
	mu sync.RWMutex

	weights      *Weights
	latest       *LatestMessages[E]
	equivocators mapset.Set[ValidatorID]
	faultWeight  Weight
	threshold    Weight

	// self is this observer's own validator id, used to track Own below.
	// Zero-valued states that never construct their own messages leave
	// this unset; Own is then always nil.
	self    ValidatorID
	hasSelf bool
	// Own is the last message this validator authored, tracked the way the
	// original's SenderState carries my_last_msg alongside latest_msgs, so
	// Message construction can justify a new message against its own prior
	// one without a full frontier scan (see SPEC_FULL.md §10).
	own *Message[E]
}

// NewValidatorState builds a state from its component parts, mirroring the
// original's SenderState::new(weights, state_fault_weight, threshold,
// latest_msgs, equivocators) constructor order.
func NewValidatorState[E Estimate](weights *Weights, faultWeight Weight, latest *LatestMessages[E], threshold Weight, equivocators mapset.Set[ValidatorID]) *ValidatorState[E] {
	if latest == nil {
		latest = NewLatestMessages[E]()
	}
	if equivocators == nil {
		equivocators = mapset.NewThreadUnsafeSet[ValidatorID]()
	}
	return &ValidatorState[E]{
		weights:      weights,
		latest:       latest,
		equivocators: equivocators,
		faultWeight:  faultWeight,
		threshold:    threshold,
	}
}

// SetSelf designates which validator this state tracks Own messages for.
func (vs *ValidatorState[E]) SetSelf(v ValidatorID) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.self = v
	vs.hasSelf = true
}

// Weights returns the validator weight registry.
func (vs *ValidatorState[E]) Weights() *Weights { return vs.weights }

// LatestMessages returns a snapshot of the raw frontier for validator v.
func (vs *ValidatorState[E]) LatestMessages(v ValidatorID) ([]*Message[E], bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.latest.Get(v)
}

// FaultWeight returns the accumulated fault weight.
func (vs *ValidatorState[E]) FaultWeight() Weight {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.faultWeight
}

// Threshold returns the fault-weight cap.
func (vs *ValidatorState[E]) Threshold() Weight {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.threshold
}

// Equivocators returns a snapshot of the equivocator set.
func (vs *ValidatorState[E]) Equivocators() mapset.Set[ValidatorID] {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.equivocators.Clone()
}

// Own returns this validator's last authored message, if tracked.
func (vs *ValidatorState[E]) Own() (*Message[E], bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.own, vs.own != nil
}

// Honest snapshots the current honest frontier under the read lock.
func (vs *ValidatorState[E]) Honest() *LatestMessagesHonest[E] {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	equivocators := make(map[ValidatorID]bool, vs.equivocators.Cardinality())
	for _, v := range vs.equivocators.ToSlice() {
		equivocators[v] = true
	}
	return NewLatestMessagesHonest(vs.latest, equivocators)
}

// Update inserts a batch of messages using the insertion discipline of
// spec.md §4.4: the batch is first sorted by fault-weight overhead
// (ascending, zero for a non-equivocating sender, else that sender's
// weight) with ties broken by content id, then applied in order. Returns
// the subset actually admitted.
func (vs *ValidatorState[E]) Update(msgs []*Message[E]) []*Message[E] {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	sorted := append([]*Message[E]{}, msgs...)
	sort.Slice(sorted, func(i, j int) bool {
		wi := vs.faultWeightOverheadLocked(sorted[i])
		wj := vs.faultWeightOverheadLocked(sorted[j])
		c, ok := wi.Cmp(wj)
		if !ok || c == 0 {
			return sorted[i].ID().Cmp(sorted[j].ID()) < 0
		}
		return c < 0
	})

	admitted := make([]*Message[E], 0, len(sorted))
	for _, m := range sorted {
		if vs.insertLocked(m) {
			admitted = append(admitted, m)
			if vs.hasSelf && m.Sender() == vs.self {
				vs.own = m
			}
		}
	}
	return admitted
}

// faultWeightOverheadLocked returns the sort key of spec.md §4.4: zero
// unless m's sender is a not-yet-known equivocator whose message
// equivocates with the current frontier, in which case it is that
// sender's weight (or +Inf if unknown), matching
// SenderState::sort_by_faultweight exactly (see SPEC_FULL.md §10).
func (vs *ValidatorState[E]) faultWeightOverheadLocked(m *Message[E]) Weight {
	if vs.equivocators.Contains(m.Sender()) {
		return WeightZero()
	}
	if !vs.latest.Equivocates(m) {
		return WeightZero()
	}
	w, err := vs.weights.Weight(m.Sender())
	if err != nil {
		return WeightInf()
	}
	return w
}

// insertLocked applies spec.md §4.4's per-message admission rule. Caller
// must hold vs.mu.
func (vs *ValidatorState[E]) insertLocked(m *Message[E]) bool {
	sender := m.Sender()
	w, err := vs.weights.Weight(sender)
	unknown := err != nil
	if unknown {
		w = WeightInf()
	}

	isEquivocation := vs.latest.Equivocates(m)
	alreadyEquivocator := vs.equivocators.Contains(sender)

	if !isEquivocation || alreadyEquivocator {
		vs.latest.Update(m)
		return true
	}

	// New equivocation: only admit if the fault budget allows it.
	newFaultWeight := vs.faultWeight.Add(w)
	if !newFaultWeight.LessOrEqual(vs.threshold) {
		return false
	}
	vs.equivocators.Add(sender)
	vs.faultWeight = newFaultWeight
	vs.latest.Update(m)
	return true
}

// UpdateWithSlash is the alternative insertion discipline of spec.md §4.4:
// admits an equivocating message unconditionally, adds its sender to
// equivocators, and zeroes that sender's weight in the registry so future
// frontier updates no longer count toward fault_weight. Grounded on the
// original's Justification::faulty_insert_with_slash (see SPEC_FULL.md
// §10) and on consensus/equa/stake.go's percentage-of-stake SlashValidator,
// specialized here to the full-zero case the discipline calls for.
func (vs *ValidatorState[E]) UpdateWithSlash(msgs []*Message[E]) []*Message[E] {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	admitted := make([]*Message[E], 0, len(msgs))
	for _, m := range msgs {
		sender := m.Sender()
		if vs.latest.Equivocates(m) {
			vs.equivocators.Add(sender)
			vs.weights.Slash(sender)
		}
		vs.latest.Update(m)
		admitted = append(admitted, m)
		if vs.hasSelf && sender == vs.self {
			vs.own = m
		}
	}
	return admitted
}

// EquivocatorIDs returns a plain slice of the equivocator set, used by
// cmd/casper-inspect's table rendering and GraphQL resolver.
func (vs *ValidatorState[E]) EquivocatorIDs() []ValidatorID {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.equivocators.ToSlice()
}

// messageIDSet indexes msgs by content id for set-membership tests. No
// caller in the package uses it at present.
func messageIDSet[E Estimate](msgs []*Message[E]) map[common.Hash]*Message[E] {
	out := make(map[common.Hash]*Message[E], len(msgs))
	for _, m := range msgs {
		out[m.ID()] = m
	}
	return out
}

// Copyright 2024 The go-equa Authors
// Honest Frontier Filter

package casper

import "sort"

// LatestMessagesHonest is a read-only, filtered projection of
// LatestMessages: include a sender's single message iff the sender is not
// a known equivocator and has exactly one frontier message (spec.md §4.3).
// Estimators only ever see this view, never the raw frontier, so a
// validator's ambiguous state can never leak into an estimate.
type LatestMessagesHonest[E Estimate] struct {
	m map[ValidatorID]*Message[E]
}

// NewLatestMessagesHonest builds the honest projection from a frontier and
// an equivocator set.
func NewLatestMessagesHonest[E Estimate](lm *LatestMessages[E], equivocators map[ValidatorID]bool) *LatestMessagesHonest[E] {
	h := &LatestMessagesHonest[E]{m: make(map[ValidatorID]*Message[E])}
	for sender, msgs := range lm.m {
		if equivocators[sender] {
			continue
		}
		if len(msgs) == 1 {
			h.m[sender] = msgs[0]
		}
	}
	return h
}

// IsEmpty reports whether no sender contributed an honest message.
func (h *LatestMessagesHonest[E]) IsEmpty() bool { return len(h.m) == 0 }

// Len returns the number of honest senders.
func (h *LatestMessagesHonest[E]) Len() int { return len(h.m) }

// Get returns the honest message for v, if any.
func (h *LatestMessagesHonest[E]) Get(v ValidatorID) (*Message[E], bool) {
	m, ok := h.m[v]
	return m, ok
}

// Messages returns the honest frontier's messages ordered by sender id,
// the deterministic order spec.md §4.5 requires when building a new
// Justification from the honest frontier.
func (h *LatestMessagesHonest[E]) Messages() []*Message[E] {
	senders := make([]ValidatorID, 0, len(h.m))
	for v := range h.m {
		senders = append(senders, v)
	}
	sort.Slice(senders, func(i, j int) bool { return senders[i] < senders[j] })
	out := make([]*Message[E], 0, len(senders))
	for _, v := range senders {
		out = append(out, h.m[v])
	}
	return out
}

// Justification builds a deterministic Justification from the honest
// frontier, ordered by sender id then message id (spec.md §4.5).
func (h *LatestMessagesHonest[E]) Justification() *Justification[E] {
	return JustificationOf(h.Messages())
}

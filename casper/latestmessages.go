// Copyright 2024 The go-equa Authors
// Latest-Messages Frontier

package casper

import (
	"container/list"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/equa/casper-core/common"
)

// LatestMessages is the per-sender frontier of non-dominated messages
// (spec.md C5): for each validator, the messages not dominated by another
// message of theirs already in the store. Honest senders keep exactly one
// entry; equivocating senders accumulate two or more mutually-independent
// entries.
type LatestMessages[E Estimate] struct {
	m map[ValidatorID][]*Message[E]
}

// NewLatestMessages returns an empty frontier.
func NewLatestMessages[E Estimate]() *LatestMessages[E] {
	return &LatestMessages[E]{m: make(map[ValidatorID][]*Message[E])}
}

// Get returns the current frontier messages for v and whether v is known.
func (lm *LatestMessages[E]) Get(v ValidatorID) ([]*Message[E], bool) {
	msgs, ok := lm.m[v]
	return msgs, ok
}

// Senders returns the known validator ids.
func (lm *LatestMessages[E]) Senders() []ValidatorID {
	out := make([]ValidatorID, 0, len(lm.m))
	for v := range lm.m {
		out = append(out, v)
	}
	return out
}

// Len returns the number of known senders.
func (lm *LatestMessages[E]) Len() int { return len(lm.m) }

// Equivocates reports whether msg equivocates with any of its sender's
// current frontier messages (spec.md §4.2).
func (lm *LatestMessages[E]) Equivocates(msg *Message[E]) bool {
	existing, ok := lm.m[msg.sender]
	if !ok {
		return false
	}
	for _, old := range existing {
		if old.Equivocates(msg) {
			return true
		}
	}
	return false
}

// Update applies the LatestMessages::update rule of spec.md §4.2 for a
// newly observed message and reports whether the frontier changed. Each
// existing message for the sender is compared against newMsg
// independently and the outcomes are merged into a single id-keyed set, the
// way the original's fold-based update accumulates over a HashSet: an
// equivocation or a supersession against any one old message is enough to
// admit newMsg even if another old message would, on its own, call newMsg
// stale.
func (lm *LatestMessages[E]) Update(newMsg *Message[E]) bool {
	existing, ok := lm.m[newMsg.sender]
	if !ok {
		lm.m[newMsg.sender] = []*Message[E]{newMsg}
		return true
	}

	current := make(map[common.Hash]*Message[E], len(existing)+1)
	for _, m := range existing {
		current[m.ID()] = m
	}
	beforeIDs := idSetOf(current)

	for _, old := range existing {
		if old.Equal(newMsg) {
			continue
		}
		newDependsOnOld := newMsg.Depends(old)
		oldDependsOnNew := old.Depends(newMsg)
		switch {
		case !newDependsOnOld && !oldDependsOnNew:
			// neither depends on the other: equivocation, keep both.
			current[newMsg.ID()] = newMsg
		case !newDependsOnOld && oldDependsOnNew:
			// new predates old: stale relative to this old, no-op.
		default:
			// new depends on old: new supersedes old.
			delete(current, old.ID())
			current[newMsg.ID()] = newMsg
		}
	}

	result := make([]*Message[E], 0, len(current))
	for _, m := range current {
		result = append(result, m)
	}
	lm.m[newMsg.sender] = result

	return !idSetOf(current).Equal(beforeIDs)
}

// idSetOf collects a message map's content ids into a mapset.Set, the same
// set type Justification and ValidatorState use for id-keyed bookkeeping
// throughout the package.
func idSetOf[E Estimate](m map[common.Hash]*Message[E]) mapset.Set[common.Hash] {
	s := mapset.NewThreadUnsafeSet[common.Hash]()
	for id := range m {
		s.Add(id)
	}
	return s
}

// LatestMessagesFromJustification walks the DAG rooted at j's members
// breadth-first, applying Update to each distinct message, producing the
// frontier exactly as j sees the world (spec.md §4.2's extraction rule).
// Grounded on the original's From<&Justification<M>> for LatestMsgs<M>: a
// message's own justification members are enqueued for visiting only when
// Update reports the message was actually newer, mirroring the original's
// short-circuit.
func LatestMessagesFromJustification[E Estimate](j *Justification[E]) *LatestMessages[E] {
	lm := NewLatestMessages[E]()
	queue := list.New()
	for _, m := range j.Members() {
		queue.PushBack(m)
	}
	seen := make(map[*Message[E]]bool)
	for queue.Len() > 0 {
		front := queue.Remove(queue.Front()).(*Message[E])
		if seen[front] {
			continue
		}
		seen[front] = true
		if lm.Update(front) {
			for _, child := range front.Justification().Members() {
				queue.PushBack(child)
			}
		}
	}
	return lm
}

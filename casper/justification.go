// Copyright 2024 The go-equa Authors
// Justification Set

package casper

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/equa/casper-core/common"
)

// Justification is an insertion-ordered, duplicate-free sequence of
// message handles forming one node's in-edges (spec.md C4). Order is
// retained for deterministic canonical encoding; membership testing is
// O(1) via a mapset.Set of content ids, the teacher-pack idiom for
// set/dedup bookkeeping (deckarep/golang-set/v2, seen used for similar
// DAG-adjacent bookkeeping in the retrieval pack's core/worker.go).
type Justification[E Estimate] struct {
	members []*Message[E]
	ids     mapset.Set[common.Hash]
}

// NewJustification returns an empty justification.
func NewJustification[E Estimate]() *Justification[E] {
	return &Justification[E]{ids: mapset.NewThreadUnsafeSet[common.Hash]()}
}

// JustificationOf builds a justification from a slice of messages,
// inserting each in order and silently skipping exact duplicates.
func JustificationOf[E Estimate](msgs []*Message[E]) *Justification[E] {
	j := NewJustification[E]()
	for _, m := range msgs {
		j.Insert(m)
	}
	return j
}

// Insert appends m unless a message with the same content id is already
// present. Only dedups on exact content equality, matching the original's
// Justification::insert (a same-sender-rejecting variant was considered
// and dropped upstream; this module preserves the adopted behavior).
func (j *Justification[E]) Insert(m *Message[E]) bool {
	if j.ids.Contains(m.ID()) {
		return false
	}
	j.ids.Add(m.ID())
	j.members = append(j.members, m)
	return true
}

// Contains reports whether m (by content id) is a direct member.
func (j *Justification[E]) Contains(m *Message[E]) bool {
	return j.ids.Contains(m.ID())
}

// ContainsID reports whether id is a direct member's content id.
func (j *Justification[E]) ContainsID(id common.Hash) bool {
	return j.ids.Contains(id)
}

// Members returns the justification's messages in insertion order. The
// returned slice must not be mutated by the caller.
func (j *Justification[E]) Members() []*Message[E] {
	return j.members
}

// IDs returns the content ids of the members in insertion order, the
// sequence canonical encoding uses.
func (j *Justification[E]) IDs() []common.Hash {
	ids := make([]common.Hash, len(j.members))
	for i, m := range j.members {
		ids[i] = m.ID()
	}
	return ids
}

// Len returns the number of direct members.
func (j *Justification[E]) Len() int { return len(j.members) }

// Copyright 2024 The go-equa Authors
// Message DAG Node

package casper

import (
	"fmt"

	"github.com/equa/casper-core/common"
)

// Message is the immutable (sender, estimate, justification) triple of
// spec.md §3. It is generic over the estimate type E so Message,
// Justification, and LatestMessages need no inheritance hierarchy across
// the five concrete estimators (spec.md §9's polymorphism design note). The
// handle is simply a *Message[E] pointer: Go's garbage collector makes the
// manual atomic reference count spec.md §9 describes for other languages
// unnecessary (see DESIGN.md).
type Message[E Estimate] struct {
	sender        ValidatorID
	estimate      E
	justification *Justification[E]
	id            common.Hash
}

// NewMessage constructs a message and computes its content id once, at
// construction, the way the original's Message::new never recomputes the
// hash afterward.
func NewMessage[E Estimate](sender ValidatorID, justification *Justification[E], estimate E) *Message[E] {
	if justification == nil {
		justification = NewJustification[E]()
	}
	m := &Message[E]{sender: sender, estimate: estimate, justification: justification}
	m.id = Hash(encodeMessage(sender, estimate.CanonicalEncode(), justification.IDs()))
	return m
}

// Sender returns the message's author.
func (m *Message[E]) Sender() ValidatorID { return m.sender }

// Estimate returns the message's value.
func (m *Message[E]) Estimate() E { return m.estimate }

// Justification returns the message's in-edges.
func (m *Message[E]) Justification() *Justification[E] { return m.justification }

// ID returns the cached content id.
func (m *Message[E]) ID() common.Hash { return m.id }

// Equal reports whether two messages are the same content (spec.md §3:
// "two messages are equal iff their content ids are equal"). Pointer
// identity is checked first as a fast path.
func (m *Message[E]) Equal(other *Message[E]) bool {
	if m == other {
		return true
	}
	if other == nil {
		return false
	}
	return m.id == other.id
}

// CanonicalEncode lets a Message itself be used as an Estimate value (e.g.
// a justification member id list referencing message handles, or an
// estimator whose value type is itself a message). Encodes to the content
// id, a message's own unique fingerprint.
func (m *Message[E]) CanonicalEncode() []byte {
	return m.id.Bytes()
}

func (m *Message[E]) String() string {
	return fmt.Sprintf("M%d(%v)", m.sender, m.estimate)
}

// Depends reports whether other is reachable from m's justification,
// directly or transitively (spec.md §4.2). Sequential depth-first search
// with a visited set keyed by content id, short-circuiting on first hit.
func (m *Message[E]) Depends(other *Message[E]) bool {
	if cached, ok := dependsCacheGet(m.id, other.id); ok {
		return cached
	}
	visited := make(map[common.Hash]bool)
	result := dependsDFS(m, other, visited)
	dependsCacheSet(m.id, other.id, result)
	return result
}

func dependsDFS[E Estimate](lhs, rhs *Message[E], visited map[common.Hash]bool) bool {
	if lhs.justification.ContainsID(rhs.id) {
		return true
	}
	for _, child := range lhs.justification.Members() {
		if visited[child.id] {
			continue
		}
		visited[child.id] = true
		if dependsDFS(child, rhs, visited) {
			return true
		}
	}
	return false
}

// Equivocates is the mathematical definition of equivocation (spec.md
// §4.2): same sender, distinct messages, neither depends on the other.
func (m *Message[E]) Equivocates(other *Message[E]) bool {
	return !m.Equal(other) &&
		m.sender == other.sender &&
		!other.Depends(m) &&
		!m.Depends(other)
}

// EquivocatesIndirect walks every message reachable from m and other,
// groups them by sender, and reports true iff any sender's reachable
// messages contain a mutually-independent pair. This is the "sound"
// resolution of spec.md §9's first open question: the original reference
// implementation's equivalent method is non-commutative, compares messages
// with themselves, and misses reachable equivocations (see DESIGN.md); this
// version fixes all three by computing the full reachable set up front
// instead of descending pairwise.
func (m *Message[E]) EquivocatesIndirect(other *Message[E]) (bool, map[ValidatorID]bool) {
	reachable := make(map[common.Hash]*Message[E])
	collectReachable(m, reachable)
	collectReachable(other, reachable)

	bySender := make(map[ValidatorID][]*Message[E])
	for _, msg := range reachable {
		bySender[msg.sender] = append(bySender[msg.sender], msg)
	}

	found := false
	equivocators := make(map[ValidatorID]bool)
	for sender, msgs := range bySender {
		if len(msgs) < 2 {
			continue
		}
		for i := 0; i < len(msgs); i++ {
			for j := i + 1; j < len(msgs); j++ {
				if msgs[i].Equivocates(msgs[j]) {
					found = true
					equivocators[sender] = true
				}
			}
		}
	}
	return found, equivocators
}

func collectReachable[E Estimate](m *Message[E], seen map[common.Hash]*Message[E]) {
	if _, ok := seen[m.id]; ok {
		return
	}
	seen[m.id] = m
	for _, child := range m.justification.Members() {
		collectReachable(child, seen)
	}
}

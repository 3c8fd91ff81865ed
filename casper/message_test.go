// Copyright 2024 The go-equa Authors
// Message DAG Node Tests

package casper

import "testing"

func TestMessageIDIsDeterministic(t *testing.T) {
	j := NewJustification[Binary]()
	a := NewMessage[Binary](1, j, Binary(true))
	b := NewMessage[Binary](1, j, Binary(true))
	if a.ID() != b.ID() {
		t.Fatalf("identical (sender, estimate, justification) produced different ids: %s vs %s", a.ID(), b.ID())
	}
	if !a.Equal(b) {
		t.Fatalf("messages with equal ids should compare equal")
	}
}

func TestMessageIDDistinguishesSender(t *testing.T) {
	j := NewJustification[Binary]()
	a := NewMessage[Binary](1, j, Binary(true))
	b := NewMessage[Binary](2, j, Binary(true))
	if a.ID() == b.ID() {
		t.Fatalf("different senders produced the same content id")
	}
}

func TestDependsOnDirectJustificationMember(t *testing.T) {
	root := NewMessage[Binary](1, nil, Binary(true))
	j := JustificationOf([]*Message[Binary]{root})
	child := NewMessage[Binary](2, j, Binary(false))

	if !child.Depends(root) {
		t.Fatalf("child should depend on a direct justification member")
	}
	if root.Depends(child) {
		t.Fatalf("root must not depend on a message that cites it")
	}
}

func TestDependsIsTransitive(t *testing.T) {
	root := NewMessage[Binary](1, nil, Binary(true))
	mid := NewMessage[Binary](2, JustificationOf([]*Message[Binary]{root}), Binary(false))
	tip := NewMessage[Binary](3, JustificationOf([]*Message[Binary]{mid}), Binary(true))

	if !tip.Depends(root) {
		t.Fatalf("tip should transitively depend on root through mid")
	}
}

func TestEquivocatesRequiresSameSenderAndNoDependency(t *testing.T) {
	root := NewMessage[Binary](1, nil, Binary(true))
	j := JustificationOf([]*Message[Binary]{root})

	a := NewMessage[Binary](2, j, Binary(true))
	b := NewMessage[Binary](2, j, Binary(false))
	if !a.Equivocates(b) {
		t.Fatalf("same sender, same justification, distinct estimates should equivocate")
	}

	c := NewMessage[Binary](3, j, Binary(true))
	if a.Equivocates(c) {
		t.Fatalf("distinct senders never equivocate")
	}

	d := NewMessage[Binary](2, JustificationOf([]*Message[Binary]{a}), Binary(false))
	if a.Equivocates(d) {
		t.Fatalf("a message depending on the other does not equivocate with it")
	}
}

func TestEquivocatesIndirectIsCommutativeAndFindsReachableFaults(t *testing.T) {
	root := NewMessage[Binary](1, nil, Binary(true))
	j := JustificationOf([]*Message[Binary]{root})

	fault1 := NewMessage[Binary](9, j, Binary(true))
	fault2 := NewMessage[Binary](9, j, Binary(false))

	left := NewMessage[Binary](2, JustificationOf([]*Message[Binary]{fault1}), Binary(true))
	right := NewMessage[Binary](3, JustificationOf([]*Message[Binary]{fault2}), Binary(false))

	found1, who1 := left.EquivocatesIndirect(right)
	found2, who2 := right.EquivocatesIndirect(left)

	if !found1 || !found2 {
		t.Fatalf("indirect equivocation through validator 9 should be found from either side")
	}
	if !who1[9] || !who2[9] {
		t.Fatalf("validator 9 should be named as the equivocator from either side")
	}
}

func TestEquivocatesIndirectDoesNotFlagSelf(t *testing.T) {
	root := NewMessage[Binary](1, nil, Binary(true))
	j := JustificationOf([]*Message[Binary]{root})
	m := NewMessage[Binary](2, j, Binary(true))

	found, _ := m.EquivocatesIndirect(m)
	if found {
		t.Fatalf("a message does not equivocate with itself, even transitively")
	}
}

// Copyright 2024 The go-equa Authors
// Content Hash Primitive Tests

package common

import "testing"

func TestHexRoundTrip(t *testing.T) {
	h := BytesToHash([]byte("some arbitrary content identifying bytes, padded or truncated"))
	parsed, err := HexToHash(h.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != h {
		t.Fatalf("hex round trip mismatch: got %s want %s", parsed.Hex(), h.Hex())
	}
}

func TestHexToHashAcceptsMissing0xPrefix(t *testing.T) {
	h := BytesToHash([]byte("x"))
	withPrefix := h.Hex()
	withoutPrefix := withPrefix[2:]

	parsed, err := HexToHash(withoutPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != h {
		t.Fatalf("expected hex parsing to tolerate a missing 0x prefix")
	}
}

func TestHashCmpOrdersBytewise(t *testing.T) {
	a := Hash{}
	b := Hash{}
	b[HashLength-1] = 1
	if a.Cmp(b) >= 0 {
		t.Fatalf("expected a < b")
	}
	if b.Cmp(a) <= 0 {
		t.Fatalf("expected b > a")
	}
	if a.Cmp(a) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Fatalf("zero-value Hash must report IsZero")
	}
	h[0] = 1
	if h.IsZero() {
		t.Fatalf("a non-zero byte must make IsZero false")
	}
}

// Copyright 2024 The go-equa Authors
// Content Hash Primitive

// Package common holds the primitive types shared across the casper-core
// module: a fixed-width content hash and helpers to move it in and out of
// hex text.
package common

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the width in bytes of a content id, matching the 64-byte
// (512-bit) hash output the consensus core requires for collision resistance.
const HashLength = 64

// Hash is a fixed-size content identifier. Zero value is the all-zero hash.
type Hash [HashLength]byte

// BytesToHash converts b to a Hash, left-truncating or zero-padding on the
// left as geth's common.BytesToHash does for its 32-byte Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash decodes a hex string (with or without the 0x prefix) into a Hash.
func HexToHash(s string) (Hash, error) {
	s = trim0x(s)
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("common: invalid hash hex %q: %w", s, err)
	}
	if len(raw) != HashLength {
		return Hash{}, fmt.Errorf("common: hash %q has %d bytes, want %d", s, len(raw), HashLength)
	}
	return BytesToHash(raw), nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// Bytes returns a copy of the hash bytes.
func (h Hash) Bytes() []byte { return h[:] }

// Hex renders the hash as a 0x-prefixed hex string.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// Cmp orders two hashes byte-wise, used to break GHOST and fault-weight
// sort ties deterministically.
func (h Hash) Cmp(other Hash) int {
	for i := range h {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := HexToHash(string(text))
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

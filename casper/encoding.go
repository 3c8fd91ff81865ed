// Copyright 2024 The go-equa Authors
// Canonical Encoding and Content Hashing

package casper

import (
	"encoding/binary"

	"github.com/equa/casper-core/common"
	"golang.org/x/crypto/sha3"
)

// Estimate is implemented by every value type usable as a message's
// estimate (bool-wrapping Binary, Integer, VoteCount, TernaryValue, *Block).
// CanonicalEncode MUST return the same bytes for semantically equal values
// and MUST NOT admit a second valid encoding for the same value, per
// spec.md §4.1's malleability-free requirement.
type Estimate interface {
	CanonicalEncode() []byte
}

// Hash computes the spec-mandated 64-byte content id of canonically
// encoded bytes. golang.org/x/crypto/sha3's Sum512 is the teacher
// dependency (golang.org/x/crypto) chosen for its 512-bit, collision
// resistant output.
func Hash(data []byte) common.Hash {
	return sha3.Sum512(data)
}

// encodeMessage builds the canonical byte encoding of a message: sender,
// then the estimate's own canonical bytes length-prefixed, then a
// length-prefixed list of justification member ids in insertion order.
// Never nests payloads, per spec.md §4.1.
func encodeMessage(sender ValidatorID, estimateBytes []byte, justificationIDs []common.Hash) []byte {
	buf := make([]byte, 0, 4+4+len(estimateBytes)+4+len(justificationIDs)*common.HashLength)

	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(sender))
	buf = append(buf, tmp[:]...)

	binary.BigEndian.PutUint32(tmp[:], uint32(len(estimateBytes)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, estimateBytes...)

	binary.BigEndian.PutUint32(tmp[:], uint32(len(justificationIDs)))
	buf = append(buf, tmp[:]...)
	for _, id := range justificationIDs {
		buf = append(buf, id.Bytes()...)
	}
	return buf
}

// encodeBlock builds the canonical encoding of a Block: prevblock id (or
// the zero hash for genesis) followed by the length-prefixed
// caller-supplied opaque data.
func encodeBlock(prev common.Hash, data []byte) []byte {
	buf := make([]byte, 0, common.HashLength+4+len(data))
	buf = append(buf, prev.Bytes()...)
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(data)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, data...)
	return buf
}

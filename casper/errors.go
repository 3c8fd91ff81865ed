// Copyright 2024 The go-equa Authors
// Sentinel Errors

package casper

import "errors"

// Sentinel errors surfaced by the core, per spec.md §7. Callers match with
// errors.Is; EstimatorError wraps a detail error via %w so the original
// cause survives.
var (
	// ErrNoNewMessage is returned by FromState when the honest frontier is
	// empty and the state tracks no own message for the sender: there is
	// nothing new to justify a message with.
	ErrNoNewMessage = errors.New("casper: no new message, honest frontier is empty")

	// ErrMalleableEncoding is returned by decoders when the input bytes are
	// not the unique canonical representation of their content.
	ErrMalleableEncoding = errors.New("casper: encoding is not canonical")

	// ErrNoPrevblock is returned by Ghost when no block can be chosen: an
	// empty frontier or a frontier with no resolvable block chain. Only
	// reachable with malformed inputs, per spec.md §4.9.
	ErrNoPrevblock = errors.New("casper: ghost found no block to build on")
)

// EstimatorError wraps a domain-specific estimator failure, non-fatal to
// the caller, which may simply skip the round.
type EstimatorError struct {
	Detail error
}

func (e *EstimatorError) Error() string { return "casper: estimator error: " + e.Detail.Error() }
func (e *EstimatorError) Unwrap() error { return e.Detail }

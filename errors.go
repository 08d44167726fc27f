// Package pre is the Umbral-family threshold proxy re-encryption façade:
// Encapsulate/DecapsulateOriginal, SplitReKey, ReEncrypt, OpenCapsule, and
// the hybrid Encrypt/Decrypt wrapper around them (spec.md §4.2-§4.11).
//
// The teacher (coinbase/cb-mpc demos-go/cb-mpc-go) returns plain `error`
// built with fmt.Errorf/%w-wrapping throughout api/mpc; this package keeps
// that shape but needs the typed error *kinds* spec.md §7 calls for so a
// caller can distinguish "this capsule was never valid"
// (InvalidCapsuleError/NotValidError) from "these specific proxies cheated"
// (CorrectnessFailureError, which names the offending cfrags the way the
// source's UmbralCorrectnessError(offending_cfrags) does) from an ordinary
// wrapped downstream failure (GenericCryptoError, SerialisationError).
package pre

import (
	"fmt"

	"github.com/umbral-go/pre/fragments"
)

// InvalidCapsuleError reports that an Original capsule failed its
// s*G == V + H2(E,V)*E self-check (spec.md §4.3).
type InvalidCapsuleError struct{}

func (e *InvalidCapsuleError) Error() string {
	return "pre: capsule failed its correctness check (invalid s, E, V)"
}

// NotValidError reports that a proxy rejected a capsule before
// re-encrypting it (spec.md §4.6).
type NotValidError struct{}

func (e *NotValidError) Error() string {
	return "pre: capsule rejected by proxy before re-encryption"
}

// CorrectnessFailureError reports that one or more attached cfrags failed
// their correctness proof. Offending names exactly which ones, in the
// order they were supplied to OpenCapsule, so the caller can blame (and
// stop using) those specific proxies.
type CorrectnessFailureError struct {
	Offending []*fragments.CFrag
}

func (e *CorrectnessFailureError) Error() string {
	return fmt.Sprintf("pre: %d cfrag(s) failed correctness verification", len(e.Offending))
}

// GenericCryptoError wraps a downstream cryptographic failure: an AEAD tag
// mismatch, or activation reconstructing a meaningless key because the
// attached cfrags didn't share a common precursor (spec.md §7).
type GenericCryptoError struct {
	Err error
}

func (e *GenericCryptoError) Error() string { return fmt.Sprintf("pre: %v", e.Err) }
func (e *GenericCryptoError) Unwrap() error { return e.Err }

// MissingProofError reports that decryption needed a correctness proof
// (to activate an un-activated capsule) but at least one supplied cfrag
// was produced with provideProof=false (spec.md §4.6, §7).
type MissingProofError struct{}

func (e *MissingProofError) Error() string {
	return "pre: cfrag has no correctness proof, cannot safely activate capsule"
}

// SerialisationError wraps a malformed byte input rejected by a decoder.
// Constructed by the Decode* functions in serialisation.go, which are the
// boundary between this façade's typed error kinds and the bare errors
// keys/fragments report locally.
type SerialisationError struct {
	Err error
}

func (e *SerialisationError) Error() string { return fmt.Sprintf("pre: serialisation: %v", e.Err) }
func (e *SerialisationError) Unwrap() error { return e.Err }

// Package fragments implements KFrag, CFrag and CorrectnessProof: the
// re-encryption key fragment a proxy holds, the re-encrypted capsule
// fragment it produces, and the non-interactive proof binding the two.
// Grounded on the teacher's request/response-handle style (api/mpc/pve.go,
// api/mpc/ecdsa_2p.go) adapted to plain value types, since kfrags/cfrags
// are meant to be copied and serialised rather than held as opaque native
// handles.
package fragments

import (
	"encoding/binary"
	"fmt"

	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/keys"
	"github.com/umbral-go/pre/signing"
)

// KFrag is a single re-encryption key fragment: one Shamir share `rk` of
// the delegation secret, bound to the delegating/receiving keys and this
// specific proxy slot by a signature (spec.md §3, §4.4).
type KFrag struct {
	ID         *curve.Scalar
	RK         *curve.Scalar
	Commitment *curve.Point
	Precursor  *curve.Point
	Signature  *signing.Signature
}

// bindingMessage is the canonical encoding signed over a kfrag: the
// identifier, both correctness-context keys, the commitment to rk, and the
// precursor. CFrag.VerifyCorrectness later rebuilds this same message with
// the proof's U1 (= rk*U) in the commitment slot, so the relayed signature
// verifies there only if U1 equals the commitment Alice signed (spec.md §4.5).
func bindingMessage(id *curve.Scalar, delegatingPK, receivingPK *keys.PublicKey, commitment, precursor *curve.Point) []byte {
	return signing.CanonicalMessage(
		id.Bytes(),
		delegatingPK.Bytes(),
		receivingPK.Bytes(),
		commitment.Bytes(),
		precursor.Bytes(),
	)
}

// Verify checks that Signature verifies under verifyingPK over this
// kfrag's canonical binding message. It does not (and cannot) check
// Commitment == RK*U, because RK is private to the proxy holding this
// kfrag; that binding is instead enforced transitively, at cfrag
// correctness-verification time, via the proof's U1 term (spec.md §4.5).
func (k *KFrag) Verify(verifyingPK *keys.PublicKey, delegatingPK, receivingPK *keys.PublicKey) bool {
	v, err := signing.NewVerifier(verifyingPK)
	if err != nil {
		return false
	}
	msg := bindingMessage(k.ID, delegatingPK, receivingPK, k.Commitment, k.Precursor)
	return v.Verify(msg, k.Signature)
}

// Bytes serialises a KFrag as id || rk || commitment || precursor ||
// len(signature) || signature. The signature is DER-encoded ECDSA (the
// library backing package signing produces variable-length DER, unlike
// the fixed 64-byte raw (r,s) slot a from-scratch ECDSA implementation
// would use), so it is length-prefixed rather than fixed-width.
func (k *KFrag) Bytes() []byte {
	out := make([]byte, 0, curve.ScalarSize*2+curve.PointSize*2+4+len(k.Signature.Bytes()))
	out = append(out, k.ID.Bytes()...)
	out = append(out, k.RK.Bytes()...)
	out = append(out, k.Commitment.Bytes()...)
	out = append(out, k.Precursor.Bytes()...)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(k.Signature.Bytes())))
	out = append(out, n[:]...)
	out = append(out, k.Signature.Bytes()...)
	return out
}

// KFragFromBytes parses the wire format produced by Bytes.
func KFragFromBytes(b []byte) (*KFrag, error) {
	const head = curve.ScalarSize*2 + curve.PointSize*2 + 4
	if len(b) < head {
		return nil, fmt.Errorf("fragments: kfrag encoding too short")
	}
	off := 0
	id, err := curve.ScalarFromNonZeroBytes(b[off : off+curve.ScalarSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: kfrag id: %w", err)
	}
	off += curve.ScalarSize
	rk, err := curve.ScalarFromBytes(b[off : off+curve.ScalarSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: kfrag rk: %w", err)
	}
	off += curve.ScalarSize
	commitment, err := curve.PointFromBytes(b[off : off+curve.PointSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: kfrag commitment: %w", err)
	}
	off += curve.PointSize
	precursor, err := curve.PointFromBytes(b[off : off+curve.PointSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: kfrag precursor: %w", err)
	}
	off += curve.PointSize
	sigLen := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	if uint32(len(b)-off) < sigLen {
		return nil, fmt.Errorf("fragments: kfrag signature truncated")
	}
	sig := signing.SignatureFromBytes(b[off : off+int(sigLen)])

	return &KFrag{ID: id, RK: rk, Commitment: commitment, Precursor: precursor, Signature: sig}, nil
}

package fragments

import (
	"fmt"

	"github.com/umbral-go/pre/capsule"
	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/internal/params"
	"github.com/umbral-go/pre/keys"
	"github.com/umbral-go/pre/signing"
)

// CFrag is a single proxy's re-encryption of a Capsule under one KFrag:
// E1 = rk*E, V1 = rk*V, plus the fragment identity and (usually) a
// correctness proof binding it to that specific kfrag (spec.md §3, §4.6).
type CFrag struct {
	E1        *curve.Point
	V1        *curve.Point
	KFragID   *curve.Scalar
	Precursor *curve.Point
	Proof     *CorrectnessProof // nil if the proxy was asked to skip proof generation
}

// ToAttachment extracts the subset of fields the capsule's Shamir
// reconstruction needs. It deliberately drops the proof: reconstruction is
// pure algebra and never consults it (verification happens separately, in
// VerifyCorrectness, before a cfrag is trusted enough to attach).
func (c *CFrag) ToAttachment() capsule.AttachedFragment {
	return capsule.AttachedFragment{
		KFragID:   c.KFragID,
		E1:        c.E1,
		V1:        c.V1,
		Precursor: c.Precursor,
	}
}

// VerifyCorrectness checks that this cfrag was honestly produced by
// re-encrypting cap (which must still be in the Original state — a
// cfrag's proof only makes sense against the (E, V) it was computed over)
// under the kfrag it claims, per spec.md §4.7:
//
//  1. z*E  == E2 + h*E1
//  2. z*V  == V2 + h*V1
//  3. z*U  == U2 + h*U1
//  4. the relayed kfrag signature verifies over (kfrag_id, delegatingPK,
//     receivingPK, U1, precursor) under verifyingPK.
//
// (1)-(3) jointly prove E1, V1 and U1 were all produced using the same
// rk; (4) ties that rk to the one Alice actually authorised via the
// kfrag's own signature, since U1 == commitment == rk*U. This is a pure
// boolean predicate: malformed proof data or a nil proof simply yields
// false, never a panic or an error return (spec.md §9).
func (c *CFrag) VerifyCorrectness(cap *capsule.Capsule, delegatingPK, verifyingPK, receivingPK *keys.PublicKey) bool {
	if c.Proof == nil {
		return false
	}
	if cap == nil || cap.IsActivated() {
		return false
	}

	e, v := cap.E(), cap.V()
	u := params.U()

	h := curve.HChal(e, c.E1, c.Proof.E2, v, c.V1, c.Proof.V2, u, c.Proof.U1, c.Proof.U2, c.Proof.Metadata)

	if !e.Mul(c.Proof.Z).Equal(c.Proof.E2.Add(c.E1.Mul(h))) {
		return false
	}
	if !v.Mul(c.Proof.Z).Equal(c.Proof.V2.Add(c.V1.Mul(h))) {
		return false
	}
	if !u.Mul(c.Proof.Z).Equal(c.Proof.U2.Add(c.Proof.U1.Mul(h))) {
		return false
	}

	verifier, err := signing.NewVerifier(verifyingPK)
	if err != nil {
		return false
	}
	msg := bindingMessage(c.KFragID, delegatingPK, receivingPK, c.Proof.U1, c.Precursor)
	return verifier.Verify(msg, c.Proof.KFragSignature)
}

// Bytes serialises a CFrag as E1||V1||kfrag_id||precursor||hasProof||
// [proof bytes if hasProof].
func (c *CFrag) Bytes() []byte {
	out := make([]byte, 0, curve.PointSize*2+curve.ScalarSize+curve.PointSize+1)
	out = append(out, c.E1.Bytes()...)
	out = append(out, c.V1.Bytes()...)
	out = append(out, c.KFragID.Bytes()...)
	out = append(out, c.Precursor.Bytes()...)
	if c.Proof == nil {
		return append(out, 0)
	}
	out = append(out, 1)
	return append(out, c.Proof.Bytes()...)
}

// CFragFromBytes parses the wire format produced by Bytes.
func CFragFromBytes(b []byte) (*CFrag, error) {
	const head = curve.PointSize*2 + curve.ScalarSize + curve.PointSize + 1
	if len(b) < head {
		return nil, fmt.Errorf("fragments: cfrag encoding too short")
	}
	off := 0
	e1, err := curve.PointFromBytes(b[off : off+curve.PointSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: cfrag E1: %w", err)
	}
	off += curve.PointSize
	v1, err := curve.PointFromBytes(b[off : off+curve.PointSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: cfrag V1: %w", err)
	}
	off += curve.PointSize
	id, err := curve.ScalarFromNonZeroBytes(b[off : off+curve.ScalarSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: cfrag kfrag_id: %w", err)
	}
	off += curve.ScalarSize
	precursor, err := curve.PointFromBytes(b[off : off+curve.PointSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: cfrag precursor: %w", err)
	}
	off += curve.PointSize
	hasProof := b[off]
	off++

	cf := &CFrag{E1: e1, V1: v1, KFragID: id, Precursor: precursor}
	if hasProof == 0 {
		return cf, nil
	}
	proof, err := CorrectnessProofFromBytes(b[off:])
	if err != nil {
		return nil, fmt.Errorf("fragments: cfrag proof: %w", err)
	}
	cf.Proof = proof
	return cf, nil
}

package curve

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Domain-separation tags. Every distinct hash use in the protocol gets its
// own tag; reusing a tag across two uses would let an attacker replay a
// transcript element from one context into another.
const (
	tagH2    = "umbral-pre/h2/capsule-s-challenge"
	tagH3    = "umbral-pre/h3/kfrag-precursor-binding"
	tagH5    = "umbral-pre/h5/kfrag-share-index"
	tagHChal = "umbral-pre/hchal/correctness-proof"
	tagKDF   = "umbral-pre/kdf/symmetric-key"
)

// TagSecondGenerator is the domain-separation tag package params hashes to
// derive the second generator U, kept here alongside this package's other
// hash tags. The HKDF info string of the symmetric-key KDF is not one of
// them: it is kdfInfo in package pre, and tagKDF above is not read by any
// code.
const TagSecondGenerator = "umbral-pre/params/second-generator-u"

func lenPrefixed(h interface{ Write([]byte) (int, error) }, parts ...[]byte) {
	for _, p := range parts {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(p)
	}
}

// hashToScalar hashes tag and parts with SHA-256 under length-prefixed
// domain separation and reduces the digest modulo the group order. A
// digest equal to zero mod q is vanishingly unlikely; callers that require
// strict non-zero semantics should re-derive with a tweaked tag, but no
// operation in this protocol depends on that edge case.
func hashToScalar(tag string, parts ...[]byte) *Scalar {
	h := sha256.New()
	_, _ = h.Write([]byte(tag))
	lenPrefixed(h, parts...)
	digest := h.Sum(nil)
	var s secp256k1.ModNScalar
	s.SetByteSlice(digest) // reduces mod q; overflow is expected and harmless here
	return &Scalar{inner: s}
}

// H2 is the Original-capsule challenge hash: s = v + e*H2(E, V).
func H2(e, v *Point) *Scalar {
	return hashToScalar(tagH2, e.Bytes(), v.Bytes())
}

// H3 is the precursor-binding hash used both at split_rekey time
// (D = H3(X, B, x*B)) and at activation time
// (D = H3(precursor, B, b*precursor)).
func H3(precursor, receivingPK, sharedPoint *Point) *Scalar {
	return hashToScalar(tagH3, precursor.Bytes(), receivingPK.Bytes(), sharedPoint.Bytes())
}

// H5 derives a kfrag's Shamir share index from its identifier and the
// delegation's precursor-binding scalar D.
func H5(id *Scalar, d *Scalar) *Scalar {
	return hashToScalar(tagH5, id.Bytes(), d.Bytes())
}

// HChal is the Chaum-Pedersen challenge binding every correctness-proof
// commitment and any caller-supplied metadata.
func HChal(e, e1, e2, v, v1, v2, u, u1, u2 *Point, metadata []byte) *Scalar {
	return hashToScalar(tagHChal,
		e.Bytes(), e1.Bytes(), e2.Bytes(),
		v.Bytes(), v1.Bytes(), v2.Bytes(),
		u.Bytes(), u1.Bytes(), u2.Bytes(),
		metadata,
	)
}

// HashToPoint deterministically derives a group element from tag via
// try-and-increment: candidate x-coordinates are SHA-256 digests of
// tag||counter, tried as SEC1-compressed points until one decodes to a
// valid non-identity curve point. The discrete log of the result with
// respect to any other fixed point (in particular G) is unknown to anyone,
// which is exactly the property Parameters.U needs.
func HashToPoint(tag string) *Point {
	for counter := uint32(0); ; counter++ {
		h := sha256.New()
		_, _ = h.Write([]byte(tag))
		var c [4]byte
		binary.BigEndian.PutUint32(c[:], counter)
		_, _ = h.Write(c[:])
		digest := h.Sum(nil)

		candidate := make([]byte, PointSize)
		candidate[0] = 0x02 // even-Y compressed prefix
		copy(candidate[1:], digest)

		p, err := PointFromBytes(candidate)
		if err != nil {
			continue
		}
		return p
	}
}

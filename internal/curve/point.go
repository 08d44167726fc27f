package curve

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PointSize is the byte length of a canonical SEC1-compressed point.
const PointSize = 33

// Point is a non-identity element of the secp256k1 group, carried
// internally in Jacobian coordinates so chains of Add/ScalarMult avoid
// repeated affine conversions; only serialisation and equality force a
// conversion to affine.
type Point struct {
	jac secp256k1.JacobianPoint
}

// BasePoint returns the standard secp256k1 generator G.
func BasePoint() *Point {
	one := ScalarFromUint32(1)
	var jac secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(one.modN(), &jac)
	return &Point{jac: jac}
}

// PointFromBytes decodes a canonical 33-byte SEC1-compressed point and
// rejects the point at infinity, matching the spec's "points are
// non-identity elements of G" invariant.
func PointFromBytes(b []byte) (*Point, error) {
	if len(b) != PointSize {
		return nil, fmt.Errorf("curve: point must be %d bytes, got %d", PointSize, len(b))
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("curve: invalid point encoding: %w", err)
	}
	var jac secp256k1.JacobianPoint
	pub.AsJacobian(&jac)
	if jac.Z.IsZero() {
		return nil, fmt.Errorf("curve: point at infinity is not a valid group element")
	}
	return &Point{jac: jac}, nil
}

// Bytes returns the canonical 33-byte SEC1-compressed encoding.
func (p *Point) Bytes() []byte {
	aff := p.affine()
	pub := secp256k1.NewPublicKey(&aff.X, &aff.Y)
	return pub.SerializeCompressed()
}

func (p *Point) affine() secp256k1.JacobianPoint {
	aff := p.jac
	aff.ToAffine()
	return aff
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	j := p.jac
	j.X.Normalize()
	j.Y.Normalize()
	j.Z.Normalize()
	return (j.X.IsZero() && j.Y.IsZero()) || j.Z.IsZero()
}

// Add returns p + other as a new Point.
func (p *Point) Add(other *Point) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.jac, &other.jac, &r)
	return &Point{jac: r}
}

// Mul returns scalar * p as a new Point (scalar multiplication).
func (p *Point) Mul(scalar *Scalar) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(scalar.modN(), &p.jac, &r)
	return &Point{jac: r}
}

// MulBase returns scalar * G as a new Point.
func MulBase(scalar *Scalar) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(scalar.modN(), &r)
	return &Point{jac: r}
}

// Equal reports whether p and other are the same group element.
func (p *Point) Equal(other *Point) bool {
	if p == nil || other == nil {
		return p == other
	}
	a, b := p.affine(), other.affine()
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y) && a.Z.Equals(&b.Z)
}

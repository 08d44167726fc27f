package curve

import (
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ScalarSize is the byte length of a canonical, big-endian encoded scalar.
const ScalarSize = 32

// Scalar is an element of Z/qZ, q the order of the secp256k1 group.
// The zero value is the scalar 0 and is not valid input to any operation
// that requires a non-zero scalar (e.g. RandomScalar, FromBytes reject it
// where the caller asks for non-zero semantics explicitly).
type Scalar struct {
	inner secp256k1.ModNScalar
}

// RandomScalar draws a uniformly random non-zero scalar from a
// cryptographically secure source, rejection-sampling away both modular
// overflow (which would bias the distribution) and the zero scalar.
func RandomScalar() (*Scalar, error) {
	var buf [ScalarSize]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, fmt.Errorf("curve: reading random scalar: %w", err)
		}
		var s secp256k1.ModNScalar
		overflow := s.SetByteSlice(buf[:])
		if overflow || s.IsZero() {
			continue
		}
		return &Scalar{inner: s}, nil
	}
}

// ScalarFromBytes decodes a canonical 32-byte big-endian scalar. It rejects
// out-of-range encodings (value >= q) so that deserialisation is never
// silently lossy.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, fmt.Errorf("curve: scalar must be %d bytes, got %d", ScalarSize, len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		return nil, fmt.Errorf("curve: scalar encoding is not canonical (>= group order)")
	}
	return &Scalar{inner: s}, nil
}

// ScalarFromNonZeroBytes is ScalarFromBytes but additionally rejects the
// zero scalar, for wire positions the spec requires to be non-zero (e.g.
// kfrag identifiers).
func ScalarFromNonZeroBytes(b []byte) (*Scalar, error) {
	s, err := ScalarFromBytes(b)
	if err != nil {
		return nil, err
	}
	if s.IsZero() {
		return nil, fmt.Errorf("curve: scalar must be non-zero")
	}
	return s, nil
}

// Bytes returns the canonical 32-byte big-endian encoding.
func (s *Scalar) Bytes() []byte {
	raw := s.inner.Bytes()
	out := make([]byte, ScalarSize)
	copy(out, raw[:])
	return out
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool { return s.inner.IsZero() }

// Equal reports whether s and other represent the same residue mod q.
func (s *Scalar) Equal(other *Scalar) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.inner.Equals(&other.inner)
}

// Add returns s + other (mod q) as a new Scalar.
func (s *Scalar) Add(other *Scalar) *Scalar {
	var r secp256k1.ModNScalar
	r.Set(&s.inner)
	r.Add(&other.inner)
	return &Scalar{inner: r}
}

// Sub returns s - other (mod q) as a new Scalar.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	var neg secp256k1.ModNScalar
	neg.Set(&other.inner)
	neg.Negate()
	var r secp256k1.ModNScalar
	r.Set(&s.inner)
	r.Add(&neg)
	return &Scalar{inner: r}
}

// Mul returns s * other (mod q) as a new Scalar.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	var r secp256k1.ModNScalar
	r.Set(&s.inner)
	r.Mul(&other.inner)
	return &Scalar{inner: r}
}

// Negate returns -s (mod q) as a new Scalar.
func (s *Scalar) Negate() *Scalar {
	var r secp256k1.ModNScalar
	r.Set(&s.inner)
	r.Negate()
	return &Scalar{inner: r}
}

// Invert returns the multiplicative inverse of s (mod q). The caller must
// ensure s is non-zero; inverting zero is undefined and returns zero.
func (s *Scalar) Invert() *Scalar {
	var r secp256k1.ModNScalar
	r.Set(&s.inner)
	r.InverseNonConst()
	return &Scalar{inner: r}
}

// Zeroize overwrites the scalar's internal state with zeros. Call this on
// every ephemeral secret scalar (e, v, x, t, polynomial coefficients) as
// soon as it is no longer needed.
func (s *Scalar) Zeroize() {
	if s == nil {
		return
	}
	s.inner.Zero()
}

// ScalarFromUint32 builds a small scalar, used for the constants 0 and 1 in
// polynomial evaluation, Lagrange bookkeeping and base-point derivation,
// and in tests.
func ScalarFromUint32(v uint32) *Scalar {
	var s secp256k1.ModNScalar
	s.SetInt(v)
	return &Scalar{inner: s}
}

func (s *Scalar) modN() *secp256k1.ModNScalar { return &s.inner }

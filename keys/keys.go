// Package keys implements the Umbral delegating/receiving keypair: a
// secp256k1 scalar private key and its point public key, with canonical
// serialisation. It mirrors the shape of the teacher's ECDSA2PCKey handle
// (api/mpc/ecdsa_2p.go) but for an ordinary (non-distributed) keypair.
package keys

import (
	"fmt"

	"github.com/umbral-go/pre/internal/curve"
)

// PrivateKey is the delegator's or receiver's secret scalar `a`/`b`.
// It is immutable after construction; owners that need to discard a key
// should call Zeroize to scrub the underlying scalar.
type PrivateKey struct {
	scalar *curve.Scalar
}

// PublicKey is the corresponding group element A = a*G (or B = b*G).
type PublicKey struct {
	point *curve.Point
}

// GenerateKey draws a fresh uniformly random private key.
func GenerateKey() (*PrivateKey, error) {
	s, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("keys: generating private key: %w", err)
	}
	return &PrivateKey{scalar: s}, nil
}

// PrivateKeyFromBytes decodes a canonical 32-byte scalar as a private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	s, err := curve.ScalarFromNonZeroBytes(b)
	if err != nil {
		return nil, fmt.Errorf("keys: decoding private key: %w", err)
	}
	return &PrivateKey{scalar: s}, nil
}

// Bytes returns the canonical 32-byte encoding of the private scalar.
func (k *PrivateKey) Bytes() []byte { return k.scalar.Bytes() }

// Scalar exposes the underlying curve scalar for use by packages
// implementing the protocol (split_rekey, decapsulate, signing). Not
// intended for use outside this module.
func (k *PrivateKey) Scalar() *curve.Scalar { return k.scalar }

// PublicKey derives the corresponding public key A = a*G.
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{point: curve.MulBase(k.scalar)}
}

// Zeroize scrubs the private scalar. The key must not be used afterwards.
func (k *PrivateKey) Zeroize() {
	if k == nil {
		return
	}
	k.scalar.Zeroize()
}

// PublicKeyFromBytes decodes a canonical 33-byte compressed point as a
// public key, rejecting the point at infinity.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	p, err := curve.PointFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("keys: decoding public key: %w", err)
	}
	return &PublicKey{point: p}, nil
}

// Bytes returns the canonical 33-byte compressed encoding.
func (k *PublicKey) Bytes() []byte { return k.point.Bytes() }

// Point exposes the underlying curve point for use by packages
// implementing the protocol. Not intended for use outside this module.
func (k *PublicKey) Point() *curve.Point { return k.point }

// Equal reports whether two public keys are the same group element.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.point.Equal(other.point)
}

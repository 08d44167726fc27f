package fragments

import (
	"encoding/binary"
	"fmt"

	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/signing"
)

// CorrectnessProof is the non-interactive Chaum-Pedersen-style proof a
// proxy attaches to a CFrag, binding (E, V) to (E1, V1) via the rk it used
// without revealing rk, and relaying the kfrag's own signature so the
// verifier can additionally confirm which kfrag authorised this specific
// re-encryption (spec.md §3, §4.6, §4.7).
type CorrectnessProof struct {
	E2             *curve.Point
	V2             *curve.Point
	U1             *curve.Point
	U2             *curve.Point
	Z              *curve.Scalar
	KFragSignature *signing.Signature
	Metadata       []byte
}

// Bytes serialises the proof as E2||V2||U1||U2||Z||len(sig)||sig||metadata.
// Metadata is the remainder of the buffer (it is always the last field and
// Bytes is only ever called on a value the caller already possesses in
// full, so no further length prefix is needed for it).
func (p *CorrectnessProof) Bytes() []byte {
	sig := p.KFragSignature.Bytes()
	out := make([]byte, 0, curve.PointSize*4+curve.ScalarSize+4+len(sig)+len(p.Metadata))
	out = append(out, p.E2.Bytes()...)
	out = append(out, p.V2.Bytes()...)
	out = append(out, p.U1.Bytes()...)
	out = append(out, p.U2.Bytes()...)
	out = append(out, p.Z.Bytes()...)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(sig)))
	out = append(out, n[:]...)
	out = append(out, sig...)
	out = append(out, p.Metadata...)
	return out
}

// CorrectnessProofFromBytes parses the wire format produced by Bytes.
func CorrectnessProofFromBytes(b []byte) (*CorrectnessProof, error) {
	const head = curve.PointSize*4 + curve.ScalarSize + 4
	if len(b) < head {
		return nil, fmt.Errorf("fragments: correctness proof encoding too short")
	}
	off := 0
	readPoint := func() (*curve.Point, error) {
		p, err := curve.PointFromBytes(b[off : off+curve.PointSize])
		off += curve.PointSize
		return p, err
	}
	e2, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("fragments: proof E2: %w", err)
	}
	v2, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("fragments: proof V2: %w", err)
	}
	u1, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("fragments: proof U1: %w", err)
	}
	u2, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("fragments: proof U2: %w", err)
	}
	z, err := curve.ScalarFromBytes(b[off : off+curve.ScalarSize])
	if err != nil {
		return nil, fmt.Errorf("fragments: proof Z: %w", err)
	}
	off += curve.ScalarSize
	sigLen := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	if uint32(len(b)-off) < sigLen {
		return nil, fmt.Errorf("fragments: proof signature truncated")
	}
	sig := signing.SignatureFromBytes(b[off : off+int(sigLen)])
	off += int(sigLen)
	metadata := append([]byte(nil), b[off:]...)

	return &CorrectnessProof{
		E2: e2, V2: v2, U1: u1, U2: u2, Z: z,
		KFragSignature: sig, Metadata: metadata,
	}, nil
}

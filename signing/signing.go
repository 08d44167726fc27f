// Package signing provides the ECDSA signer/verifier used to bind kfrags
// to their delegating/receiving keys and to relay that binding through a
// correctness proof. It wraps github.com/btcsuite/btcd/btcec/v2/ecdsa the
// same way the teacher's ECDSA2PCSignResponse.Verify (api/mpc/ecdsa_2p.go)
// wraps the native verifier: build a canonical digest, call into the
// library, surface a plain error.
package signing

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/umbral-go/pre/keys"
)

// Signature is an ECDSA signature in DER encoding.
type Signature struct {
	DER []byte
}

// Bytes returns the DER-encoded signature.
func (s *Signature) Bytes() []byte { return s.DER }

// SignatureFromBytes wraps a previously serialised DER signature.
func SignatureFromBytes(b []byte) *Signature { return &Signature{DER: append([]byte(nil), b...)} }

// Signer signs canonical messages on behalf of the delegator's signing
// keypair.
type Signer struct {
	priv *btcec.PrivateKey
}

// NewSigner builds a Signer from the delegator's signing private key.
func NewSigner(sk *keys.PrivateKey) (*Signer, error) {
	if sk == nil {
		return nil, fmt.Errorf("signing: private key cannot be nil")
	}
	priv, _ := btcec.PrivKeyFromBytes(sk.Bytes())
	return &Signer{priv: priv}, nil
}

// Sign signs an arbitrary-length message with ECDSA over SHA-256(message).
func (s *Signer) Sign(message []byte) (*Signature, error) {
	digest := sha256.Sum256(message)
	sig := btcecdsa.Sign(s.priv, digest[:])
	return &Signature{DER: sig.Serialize()}, nil
}

// Verifier checks signatures produced by a Signer against the matching
// public key.
type Verifier struct {
	pub *btcec.PublicKey
}

// NewVerifier builds a Verifier from the delegator's signing public key.
func NewVerifier(pk *keys.PublicKey) (*Verifier, error) {
	if pk == nil {
		return nil, fmt.Errorf("signing: public key cannot be nil")
	}
	pub, err := btcec.ParsePubKey(pk.Bytes())
	if err != nil {
		return nil, fmt.Errorf("signing: invalid verifying key: %w", err)
	}
	return &Verifier{pub: pub}, nil
}

// Verify reports whether sig is a valid signature over message under the
// verifier's public key. Malformed signature encodings are treated as a
// simple false rather than surfaced as an error, matching the "verify is a
// pure predicate" design rule (spec.md §9).
func (v *Verifier) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(sig.DER) == 0 {
		return false
	}
	parsed, err := btcecdsa.ParseDERSignature(sig.DER)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return parsed.Verify(digest[:], v.pub)
}

// CanonicalMessage builds the canonical, length-prefixed encoding of an
// ordered sequence of byte strings. Every signed/verified message in this
// protocol (kfrag-binding signatures, the relayed signature inside a
// correctness proof) is built this way so that field boundaries can never
// be confused by concatenation ambiguity.
func CanonicalMessage(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(p)))
		out = append(out, n[:]...)
		out = append(out, p...)
	}
	return out
}

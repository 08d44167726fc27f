package pre

import (
	"github.com/umbral-go/pre/fragments"
	"github.com/umbral-go/pre/keys"
)

// The leaf packages (keys, fragments) each expose their own *Bytes/FromBytes
// pair and report malformed input with a bare, locally wrapped error — they
// sit below this façade and have no business knowing about its typed error
// kinds. DecodePrivateKey/DecodePublicKey/DecodeKFrag/DecodeCFrag/
// DecodeCorrectnessProof are the boundary where a caller-facing decode
// failure is normalised into SerialisationError (spec.md §7), the same way
// GenericCryptoError and MissingProofError are only ever constructed here.

// DecodePrivateKey parses a canonical private key encoding.
func DecodePrivateKey(b []byte) (*keys.PrivateKey, error) {
	k, err := keys.PrivateKeyFromBytes(b)
	if err != nil {
		return nil, &SerialisationError{Err: err}
	}
	return k, nil
}

// DecodePublicKey parses a canonical public key encoding.
func DecodePublicKey(b []byte) (*keys.PublicKey, error) {
	k, err := keys.PublicKeyFromBytes(b)
	if err != nil {
		return nil, &SerialisationError{Err: err}
	}
	return k, nil
}

// DecodeKFrag parses the wire format produced by (*fragments.KFrag).Bytes.
func DecodeKFrag(b []byte) (*fragments.KFrag, error) {
	kf, err := fragments.KFragFromBytes(b)
	if err != nil {
		return nil, &SerialisationError{Err: err}
	}
	return kf, nil
}

// DecodeCFrag parses the wire format produced by (*fragments.CFrag).Bytes.
func DecodeCFrag(b []byte) (*fragments.CFrag, error) {
	cf, err := fragments.CFragFromBytes(b)
	if err != nil {
		return nil, &SerialisationError{Err: err}
	}
	return cf, nil
}

// DecodeCorrectnessProof parses the wire format produced by
// (*fragments.CorrectnessProof).Bytes.
func DecodeCorrectnessProof(b []byte) (*fragments.CorrectnessProof, error) {
	p, err := fragments.CorrectnessProofFromBytes(b)
	if err != nil {
		return nil, &SerialisationError{Err: err}
	}
	return p, nil
}

package pre

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// fixedNonce is the all-zero 12-byte ChaCha20-Poly1305 nonce used for every
// message. This is safe only because K is freshly derived per Capsule and
// never reused across more than one AEAD operation (spec.md §9 Open
// Question, §4.11): encrypt and decrypt both derive K once per capsule,
// seal/open it exactly once, and the capsule is never re-encapsulated.
var fixedNonce = make([]byte, chacha20poly1305.NonceSize)

func aeadSeal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("pre: constructing AEAD: %w", err)
	}
	return aead.Seal(nil, fixedNonce, plaintext, nil), nil
}

func aeadOpen(key, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, &GenericCryptoError{Err: fmt.Errorf("constructing AEAD: %w", err)}
	}
	plaintext, err := aead.Open(nil, fixedNonce, ciphertext, nil)
	if err != nil {
		return nil, &GenericCryptoError{Err: fmt.Errorf("AEAD tag mismatch: %w", err)}
	}
	return plaintext, nil
}

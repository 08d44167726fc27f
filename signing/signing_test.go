package signing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umbral-go/pre/keys"
)

func TestSignAndVerify(t *testing.T) {
	sk, err := keys.GenerateKey()
	require.NoError(t, err)

	signer, err := NewSigner(sk)
	require.NoError(t, err)
	verifier, err := NewVerifier(sk.PublicKey())
	require.NoError(t, err)

	msg := CanonicalMessage([]byte("id"), []byte("A"), []byte("B"))
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	require.True(t, verifier.Verify(msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	sk, err := keys.GenerateKey()
	require.NoError(t, err)
	signer, err := NewSigner(sk)
	require.NoError(t, err)
	verifier, err := NewVerifier(sk.PublicKey())
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("original"))
	require.NoError(t, err)
	require.False(t, verifier.Verify([]byte("tampered"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk1, err := keys.GenerateKey()
	require.NoError(t, err)
	sk2, err := keys.GenerateKey()
	require.NoError(t, err)

	signer, err := NewSigner(sk1)
	require.NoError(t, err)
	verifier, err := NewVerifier(sk2.PublicKey())
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("hello"))
	require.NoError(t, err)
	require.False(t, verifier.Verify([]byte("hello"), sig))
}

func TestCanonicalMessageDisambiguatesBoundaries(t *testing.T) {
	a := CanonicalMessage([]byte("ab"), []byte("c"))
	b := CanonicalMessage([]byte("a"), []byte("bc"))
	require.NotEqual(t, a, b)
}

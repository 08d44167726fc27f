package fragments

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umbral-go/pre/capsule"
	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/internal/params"
	"github.com/umbral-go/pre/keys"
	"github.com/umbral-go/pre/signing"
)

// buildKFrag is a minimal, self-contained stand-in for split_rekey used to
// exercise KFrag/CFrag/CorrectnessProof in isolation, without pulling in
// the full pre façade (which has its own, more thorough tests).
func buildKFrag(t *testing.T, delegatingPK, receivingPK *keys.PublicKey, signer *signing.Signer, rk *curve.Scalar) *KFrag {
	t.Helper()
	id, err := curve.RandomScalar()
	require.NoError(t, err)
	precursor := curve.MulBase(mustScalar(t))
	commitment := params.U().Mul(rk)
	msg := bindingMessage(id, delegatingPK, receivingPK, commitment, precursor)
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	return &KFrag{ID: id, RK: rk, Commitment: commitment, Precursor: precursor, Signature: sig}
}

func mustScalar(t *testing.T) *curve.Scalar {
	t.Helper()
	s, err := curve.RandomScalar()
	require.NoError(t, err)
	return s
}

func TestKFragVerifyRoundTrip(t *testing.T) {
	delegSK, err := keys.GenerateKey()
	require.NoError(t, err)
	verifySK, err := keys.GenerateKey()
	require.NoError(t, err)
	recvSK, err := keys.GenerateKey()
	require.NoError(t, err)

	signer, err := signing.NewSigner(verifySK)
	require.NoError(t, err)

	rk := mustScalar(t)
	kf := buildKFrag(t, delegSK.PublicKey(), recvSK.PublicKey(), signer, rk)

	require.True(t, kf.Verify(verifySK.PublicKey(), delegSK.PublicKey(), recvSK.PublicKey()))
}

func TestKFragSerializationRoundTrip(t *testing.T) {
	delegSK, err := keys.GenerateKey()
	require.NoError(t, err)
	verifySK, err := keys.GenerateKey()
	require.NoError(t, err)
	recvSK, err := keys.GenerateKey()
	require.NoError(t, err)

	signer, err := signing.NewSigner(verifySK)
	require.NoError(t, err)

	kf := buildKFrag(t, delegSK.PublicKey(), recvSK.PublicKey(), signer, mustScalar(t))
	encoded := kf.Bytes()
	decoded, err := KFragFromBytes(encoded)
	require.NoError(t, err)

	require.True(t, kf.ID.Equal(decoded.ID))
	require.True(t, kf.RK.Equal(decoded.RK))
	require.True(t, kf.Commitment.Equal(decoded.Commitment))
	require.True(t, kf.Precursor.Equal(decoded.Precursor))
	require.True(t, decoded.Verify(verifySK.PublicKey(), delegSK.PublicKey(), recvSK.PublicKey()))
}

func TestCorrectnessProofSerializationPreservesMetadata(t *testing.T) {
	delegSK, err := keys.GenerateKey()
	require.NoError(t, err)
	verifySK, err := keys.GenerateKey()
	require.NoError(t, err)
	recvSK, err := keys.GenerateKey()
	require.NoError(t, err)
	signer, err := signing.NewSigner(verifySK)
	require.NoError(t, err)

	rk := mustScalar(t)
	kf := buildKFrag(t, delegSK.PublicKey(), recvSK.PublicKey(), signer, rk)

	t_, err := curve.RandomScalar()
	require.NoError(t, err)
	e := curve.MulBase(mustScalar(t))
	v := curve.MulBase(mustScalar(t))
	e1 := e.Mul(rk)
	v1 := v.Mul(rk)
	e2 := e.Mul(t_)
	v2 := v.Mul(t_)
	u1 := params.U().Mul(rk)
	u2 := params.U().Mul(t_)
	metadata := []byte("example metadata for re-encryption request")
	h := curve.HChal(e, e1, e2, v, v1, v2, params.U(), u1, u2, metadata)
	z := t_.Add(h.Mul(rk))

	proof := &CorrectnessProof{E2: e2, V2: v2, U1: u1, U2: u2, Z: z, KFragSignature: kf.Signature, Metadata: metadata}
	encoded := proof.Bytes()
	decoded, err := CorrectnessProofFromBytes(encoded)
	require.NoError(t, err)

	require.True(t, proof.E2.Equal(decoded.E2))
	require.True(t, proof.V2.Equal(decoded.V2))
	require.True(t, proof.U1.Equal(decoded.U1))
	require.True(t, proof.U2.Equal(decoded.U2))
	require.True(t, proof.Z.Equal(decoded.Z))
	require.Equal(t, proof.Metadata, decoded.Metadata)
	require.Equal(t, proof.KFragSignature.Bytes(), decoded.KFragSignature.Bytes())
}

func TestCFragVerifyCorrectnessHonestProof(t *testing.T) {
	delegSK, err := keys.GenerateKey()
	require.NoError(t, err)
	verifySK, err := keys.GenerateKey()
	require.NoError(t, err)
	recvSK, err := keys.GenerateKey()
	require.NoError(t, err)
	signer, err := signing.NewSigner(verifySK)
	require.NoError(t, err)

	e := curve.MulBase(mustScalar(t))
	v := curve.MulBase(mustScalar(t))
	s := mustScalar(t)
	cap := capsule.NewOriginal(e, v, s)

	rk := mustScalar(t)
	kf := buildKFrag(t, delegSK.PublicKey(), recvSK.PublicKey(), signer, rk)

	e1 := e.Mul(rk)
	v1 := v.Mul(rk)
	tScalar := mustScalar(t)
	e2 := e.Mul(tScalar)
	v2 := v.Mul(tScalar)
	u1 := params.U().Mul(rk)
	u2 := params.U().Mul(tScalar)
	metadata := []byte("req-1")
	h := curve.HChal(e, e1, e2, v, v1, v2, params.U(), u1, u2, metadata)
	z := tScalar.Add(h.Mul(rk))

	cf := &CFrag{
		E1: e1, V1: v1, KFragID: kf.ID, Precursor: kf.Precursor,
		Proof: &CorrectnessProof{E2: e2, V2: v2, U1: u1, U2: u2, Z: z, KFragSignature: kf.Signature, Metadata: metadata},
	}

	require.True(t, cf.VerifyCorrectness(cap, delegSK.PublicKey(), verifySK.PublicKey(), recvSK.PublicKey()))
}

func TestCFragVerifyCorrectnessRejectsTamperedPoint(t *testing.T) {
	delegSK, err := keys.GenerateKey()
	require.NoError(t, err)
	verifySK, err := keys.GenerateKey()
	require.NoError(t, err)
	recvSK, err := keys.GenerateKey()
	require.NoError(t, err)
	signer, err := signing.NewSigner(verifySK)
	require.NoError(t, err)

	e := curve.MulBase(mustScalar(t))
	v := curve.MulBase(mustScalar(t))
	cap := capsule.NewOriginal(e, v, mustScalar(t))

	rk := mustScalar(t)
	kf := buildKFrag(t, delegSK.PublicKey(), recvSK.PublicKey(), signer, rk)

	e1 := e.Mul(rk)
	v1 := v.Mul(rk)
	tScalar := mustScalar(t)
	e2 := e.Mul(tScalar)
	v2 := v.Mul(tScalar)
	u1 := params.U().Mul(rk)
	u2 := params.U().Mul(tScalar)
	h := curve.HChal(e, e1, e2, v, v1, v2, params.U(), u1, u2, nil)
	z := tScalar.Add(h.Mul(rk))

	cf := &CFrag{
		E1: curve.MulBase(mustScalar(t)), // garbage E1
		V1: v1, KFragID: kf.ID, Precursor: kf.Precursor,
		Proof: &CorrectnessProof{E2: e2, V2: v2, U1: u1, U2: u2, Z: z, KFragSignature: kf.Signature},
	}

	require.False(t, cf.VerifyCorrectness(cap, delegSK.PublicKey(), verifySK.PublicKey(), recvSK.PublicKey()))
}

func TestCFragSerializationRoundTrip(t *testing.T) {
	e1 := curve.MulBase(mustScalar(t))
	v1 := curve.MulBase(mustScalar(t))
	id := mustScalar(t)
	precursor := curve.MulBase(mustScalar(t))

	cf := &CFrag{E1: e1, V1: v1, KFragID: id, Precursor: precursor}
	encoded := cf.Bytes()
	decoded, err := CFragFromBytes(encoded)
	require.NoError(t, err)
	require.True(t, cf.E1.Equal(decoded.E1))
	require.True(t, cf.V1.Equal(decoded.V1))
	require.True(t, cf.KFragID.Equal(decoded.KFragID))
	require.True(t, cf.Precursor.Equal(decoded.Precursor))
	require.Nil(t, decoded.Proof)
}

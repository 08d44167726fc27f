package capsule

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/keys"
)

func randPoint(t *testing.T) *curve.Point {
	t.Helper()
	s, err := curve.RandomScalar()
	require.NoError(t, err)
	return curve.MulBase(s)
}

func randScalar(t *testing.T) *curve.Scalar {
	t.Helper()
	s, err := curve.RandomScalar()
	require.NoError(t, err)
	return s
}

func TestCapsuleEqualityIgnoresMutableCargo(t *testing.T) {
	e, v, s := randPoint(t), randPoint(t), randScalar(t)
	c1 := NewOriginal(e, v, s)
	c2 := NewOriginal(e, v, s)
	require.True(t, c1.Equal(c2))

	pk, err := keys.GenerateKey()
	require.NoError(t, err)
	c1.GetOrSetDelegatingKey(pk.PublicKey())
	require.True(t, c1.Equal(c2), "setting a context key must not change identity")

	require.NoError(t, c1.AttachCFrag(AttachedFragment{
		KFragID: randScalar(t), E1: randPoint(t), V1: randPoint(t), Precursor: randPoint(t),
	}))
	require.True(t, c1.Equal(c2), "attaching a cfrag must not change identity")
}

func TestDistinctCapsulesAreNotEqual(t *testing.T) {
	c1 := NewOriginal(randPoint(t), randPoint(t), randScalar(t))
	c2 := NewOriginal(randPoint(t), randPoint(t), randScalar(t))
	require.False(t, c1.Equal(c2))
}

func TestGetOrSetIsIdempotent(t *testing.T) {
	c := NewOriginal(randPoint(t), randPoint(t), randScalar(t))
	pk1, err := keys.GenerateKey()
	require.NoError(t, err)
	pk2, err := keys.GenerateKey()
	require.NoError(t, err)

	got := c.GetOrSetDelegatingKey(pk1.PublicKey())
	require.True(t, got.Equal(pk1.PublicKey()))

	got2 := c.GetOrSetDelegatingKey(pk2.PublicKey())
	require.True(t, got2.Equal(pk1.PublicKey()), "second set must be ignored")
}

func TestAttachCFragRejectedAfterActivation(t *testing.T) {
	receiverSK, err := keys.GenerateKey()
	require.NoError(t, err)
	receiverPK := receiverSK.PublicKey()

	c := NewOriginal(randPoint(t), randPoint(t), randScalar(t))
	precursor := randPoint(t)
	require.NoError(t, c.AttachCFrag(AttachedFragment{
		KFragID: randScalar(t), E1: randPoint(t), V1: randPoint(t), Precursor: precursor,
	}))
	require.NoError(t, c.Reconstruct(receiverSK, receiverPK))
	require.True(t, c.IsActivated())

	err = c.AttachCFrag(AttachedFragment{
		KFragID: randScalar(t), E1: randPoint(t), V1: randPoint(t), Precursor: precursor,
	})
	require.Error(t, err)
}

func TestEqualityAndKeySurviveActivation(t *testing.T) {
	receiverSK, err := keys.GenerateKey()
	require.NoError(t, err)
	receiverPK := receiverSK.PublicKey()

	c := NewOriginal(randPoint(t), randPoint(t), randScalar(t))
	keyBeforeActivation := c.AsKey()

	require.NoError(t, c.AttachCFrag(AttachedFragment{
		KFragID: randScalar(t), E1: randPoint(t), V1: randPoint(t), Precursor: randPoint(t),
	}))
	require.NoError(t, c.Reconstruct(receiverSK, receiverPK))
	require.True(t, c.IsActivated())

	require.Equal(t, keyBeforeActivation, c.AsKey(), "AsKey must not change when the capsule activates")
}

func TestReconstructIsIdempotent(t *testing.T) {
	receiverSK, err := keys.GenerateKey()
	require.NoError(t, err)
	receiverPK := receiverSK.PublicKey()

	c := NewOriginal(randPoint(t), randPoint(t), randScalar(t))
	require.NoError(t, c.AttachCFrag(AttachedFragment{
		KFragID: randScalar(t), E1: randPoint(t), V1: randPoint(t), Precursor: randPoint(t),
	}))
	require.NoError(t, c.Reconstruct(receiverSK, receiverPK))
	eprime := c.EPrime()
	require.NoError(t, c.Reconstruct(receiverSK, receiverPK))
	require.True(t, eprime.Equal(c.EPrime()))
}

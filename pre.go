package pre

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/umbral-go/pre/capsule"
	"github.com/umbral-go/pre/fragments"
	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/internal/params"
	"github.com/umbral-go/pre/keys"
	"github.com/umbral-go/pre/signing"
)

// Encapsulate draws a fresh Original Capsule under the delegating public
// key A and the symmetric key it encodes (spec.md §4.2).
func Encapsulate(delegatingPK *keys.PublicKey) ([]byte, *capsule.Capsule, error) {
	e, err := curve.RandomScalar()
	if err != nil {
		return nil, nil, fmt.Errorf("pre: encapsulate: %w", err)
	}
	v, err := curve.RandomScalar()
	if err != nil {
		return nil, nil, fmt.Errorf("pre: encapsulate: %w", err)
	}
	defer e.Zeroize()
	defer v.Zeroize()

	E := curve.MulBase(e)
	V := curve.MulBase(v)
	h := curve.H2(E, V)
	s := v.Add(e.Mul(h))

	sumEV := e.Add(v)
	defer sumEV.Zeroize()
	shared := delegatingPK.Point().Mul(sumEV)

	key, err := deriveSymmetricKey(shared)
	if err != nil {
		return nil, nil, err
	}
	return key, capsule.NewOriginal(E, V, s), nil
}

// DecapsulateOriginal recovers the symmetric key from an Original capsule
// using the delegating private key, per spec.md §4.3.
func DecapsulateOriginal(delegatingSK *keys.PrivateKey, cap *capsule.Capsule) ([]byte, error) {
	if !cap.CheckOriginalCorrectness() {
		return nil, &InvalidCapsuleError{}
	}
	sum := cap.E().Add(cap.V())
	shared := sum.Mul(delegatingSK.Scalar())
	return deriveSymmetricKey(shared)
}

// SplitReKey generates N kfrags delegating decryption from (a, A) to B,
// any M of which suffice for reconstruction, per spec.md §4.4.
func SplitReKey(delegatingSK *keys.PrivateKey, signer *signing.Signer, delegatingPK, receivingPK *keys.PublicKey, m, n int) ([]*fragments.KFrag, error) {
	if m < 1 || m > n {
		return nil, fmt.Errorf("pre: split_rekey: need 1 <= M <= N, got M=%d N=%d", m, n)
	}

	x, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("pre: split_rekey: %w", err)
	}
	defer x.Zeroize()
	X := curve.MulBase(x)

	sharedXB := receivingPK.Point().Mul(x)
	d := curve.H3(X, receivingPK.Point(), sharedXB)
	defer d.Zeroize()
	if d.IsZero() {
		return nil, fmt.Errorf("pre: split_rekey: degenerate precursor binding, retry")
	}

	coeffs := make([]*curve.Scalar, m)
	coeffs[0] = delegatingSK.Scalar().Mul(d.Invert())
	for i := 1; i < m; i++ {
		c, err := curve.RandomScalar()
		if err != nil {
			return nil, fmt.Errorf("pre: split_rekey: %w", err)
		}
		coeffs[i] = c
	}
	defer func() {
		for _, c := range coeffs {
			c.Zeroize()
		}
	}()

	out := make([]*fragments.KFrag, n)
	for i := 0; i < n; i++ {
		id, err := curve.RandomScalar()
		if err != nil {
			return nil, fmt.Errorf("pre: split_rekey: %w", err)
		}
		yi := curve.H5(id, d)
		rk := evalPolynomial(coeffs, yi)
		commitment := params.U().Mul(rk)

		msg := signing.CanonicalMessage(
			id.Bytes(), delegatingPK.Bytes(), receivingPK.Bytes(), commitment.Bytes(), X.Bytes(),
		)
		sig, err := signer.Sign(msg)
		if err != nil {
			return nil, fmt.Errorf("pre: split_rekey: signing kfrag %d: %w", i, err)
		}

		out[i] = &fragments.KFrag{ID: id, RK: rk, Commitment: commitment, Precursor: X, Signature: sig}
	}
	return out, nil
}

// evalPolynomial evaluates Σ coeffs[i]·y^i via Horner's method.
func evalPolynomial(coeffs []*curve.Scalar, y *curve.Scalar) *curve.Scalar {
	acc := curve.ScalarFromUint32(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(y).Add(coeffs[i])
	}
	return acc
}

// ReEncrypt transforms cap into a CFrag under kf, optionally attaching a
// correctness proof, per spec.md §4.6.
func ReEncrypt(kf *fragments.KFrag, cap *capsule.Capsule, metadata []byte, provideProof bool) (*fragments.CFrag, error) {
	if !cap.CheckOriginalCorrectness() {
		return nil, &NotValidError{}
	}

	e1 := cap.E().Mul(kf.RK)
	v1 := cap.V().Mul(kf.RK)

	cf := &fragments.CFrag{E1: e1, V1: v1, KFragID: kf.ID, Precursor: kf.Precursor}
	if !provideProof {
		return cf, nil
	}

	t, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("pre: reencrypt: %w", err)
	}
	defer t.Zeroize()

	e2 := cap.E().Mul(t)
	v2 := cap.V().Mul(t)
	u1 := params.U().Mul(kf.RK)
	u2 := params.U().Mul(t)

	h := curve.HChal(cap.E(), e1, e2, cap.V(), v1, v2, params.U(), u1, u2, metadata)
	z := t.Add(h.Mul(kf.RK))

	cf.Proof = &fragments.CorrectnessProof{
		E2: e2, V2: v2, U1: u1, U2: u2, Z: z,
		KFragSignature: kf.Signature, Metadata: metadata,
	}
	return cf, nil
}

// OpenCapsule recovers the symmetric key from cap (spec.md §4.8-§4.10). If
// cap is not yet Activated, it first verifies every supplied cfrag's
// correctness proof, attaches the cfrags and activates cap; on an already
// Activated capsule cfrags is not consulted and no proof is checked.
// cfrags is the caller's full collection of cfrags for this capsule;
// OpenCapsule is responsible for both verification and
// activation since the capsule itself only stores the proof-free algebra
// a cfrag reduces to (package capsule's AttachedFragment).
func OpenCapsule(cap *capsule.Capsule, cfrags []*fragments.CFrag, receivingSK *keys.PrivateKey, receivingPK, delegatingPK, verifyingPK *keys.PublicKey) ([]byte, error) {
	cap.GetOrSetDelegatingKey(delegatingPK)
	cap.GetOrSetReceivingKey(receivingPK)
	cap.GetOrSetVerifyingKey(verifyingPK)

	if !cap.IsActivated() {
		if len(cfrags) == 0 {
			return nil, fmt.Errorf("pre: open_capsule: no cfrags to activate capsule with")
		}
		for _, cf := range cfrags {
			if cf.Proof == nil {
				return nil, &MissingProofError{}
			}
		}

		offending, err := verifyCFragsConcurrently(cfrags, cap, delegatingPK, verifyingPK, receivingPK)
		if err != nil {
			return nil, err
		}
		if len(offending) > 0 {
			return nil, &CorrectnessFailureError{Offending: offending}
		}

		for _, cf := range cfrags {
			if err := cap.AttachCFrag(cf.ToAttachment()); err != nil {
				return nil, fmt.Errorf("pre: open_capsule: %w", err)
			}
		}
		if err := cap.Reconstruct(receivingSK, receivingPK); err != nil {
			return nil, fmt.Errorf("pre: open_capsule: activating capsule: %w", err)
		}
	}

	return decapsulateReencrypted(receivingPK, receivingSK, delegatingPK, cap)
}

// verifyCFragsConcurrently verifies every cfrag's correctness proof in
// parallel (each check is an independent handful of scalar multiplications,
// a natural fit for fan-out) and returns, in input order, those that
// failed.
func verifyCFragsConcurrently(cfrags []*fragments.CFrag, cap *capsule.Capsule, delegatingPK, verifyingPK, receivingPK *keys.PublicKey) ([]*fragments.CFrag, error) {
	results := make([]bool, len(cfrags))
	var g errgroup.Group
	for i, cf := range cfrags {
		i, cf := i, cf
		g.Go(func() error {
			results[i] = cf.VerifyCorrectness(cap, delegatingPK, verifyingPK, receivingPK)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var offending []*fragments.CFrag
	for i, ok := range results {
		if !ok {
			offending = append(offending, cfrags[i])
		}
	}
	return offending, nil
}

// decapsulateReencrypted recovers K from an Activated capsule, per
// spec.md §4.9. delegatingPK is accepted (but not needed algebraically,
// since the Shamir reconstruction identity already folds A in) to keep the
// same call shape as DecapsulateOriginal at the OpenCapsule call site.
func decapsulateReencrypted(receivingPK *keys.PublicKey, receivingSK *keys.PrivateKey, delegatingPK *keys.PublicKey, cap *capsule.Capsule) ([]byte, error) {
	shared := cap.NI().Mul(receivingSK.Scalar())
	omega := curve.H3(cap.NI(), receivingPK.Point(), shared)
	defer omega.Zeroize()

	sumEV := cap.EPrime().Add(cap.VPrime())
	sharedPoint := sumEV.Mul(omega)
	return deriveSymmetricKey(sharedPoint)
}

// Encrypt derives a fresh capsule for delegatingPK and seals plaintext
// under the resulting key, per spec.md §4.11.
func Encrypt(delegatingPK *keys.PublicKey, plaintext []byte) ([]byte, *capsule.Capsule, error) {
	key, cap, err := Encapsulate(delegatingPK)
	if err != nil {
		return nil, nil, err
	}
	ciphertext, err := aeadSeal(key, plaintext)
	if err != nil {
		return nil, nil, &GenericCryptoError{Err: err}
	}
	return ciphertext, cap, nil
}

// Decrypt opens ciphertext against cap using sk, choosing the delegator's
// direct decapsulation path or Bob's open_capsule path depending on which
// key sk is and whether cap is already Activated (spec.md §4.11). cfrags
// is only consulted when cap still needs activating.
func Decrypt(ciphertext []byte, cap *capsule.Capsule, sk *keys.PrivateKey, delegatingPK, verifyingPK *keys.PublicKey, cfrags []*fragments.CFrag) ([]byte, error) {
	var key []byte
	var err error

	if !cap.IsActivated() && sk.PublicKey().Equal(delegatingPK) {
		key, err = DecapsulateOriginal(sk, cap)
	} else {
		receivingPK := sk.PublicKey()
		key, err = OpenCapsule(cap, cfrags, sk, receivingPK, delegatingPK, verifyingPK)
	}
	if err != nil {
		return nil, err
	}
	return aeadOpen(key, ciphertext)
}

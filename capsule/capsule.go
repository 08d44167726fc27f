// Package capsule implements the Umbral Capsule: the public ciphertext
// header produced by encapsulation, in its two states (Original,
// Activated), plus the mutable cargo (correctness-context keys, attached
// fragments) that must never participate in the capsule's identity.
//
// This follows the teacher's state-handle pattern (api/mpc.ECDSA2PCKey is
// an opaque handle around immutable wire data with a handful of derived
// accessors) generalised to a proper tagged sum type, per spec.md §9's
// design note: "a tagged variant Capsule = Original{...} | Activated{...}
// with an explicit transition method models the two states cleanly".
package capsule

import (
	"fmt"
	"sync"

	"github.com/umbral-go/pre/internal/curve"
	"github.com/umbral-go/pre/keys"
)

type state int

const (
	stateOriginal state = iota
	stateActivated
)

// AttachedFragment is the minimal algebraic content of a CFrag that the
// capsule's Shamir reconstruction needs: the re-encrypted points, the
// identifier of the kfrag that produced them, and the shared precursor.
// It intentionally omits the correctness proof and kfrag signature — those
// belong to fragment verification (package fragments), a concern the
// capsule itself never performs.
type AttachedFragment struct {
	KFragID   *curve.Scalar
	E1        *curve.Point
	V1        *curve.Point
	Precursor *curve.Point
}

// Key is a stable, comparable value derived from a Capsule's defining
// attributes. Because every field is a fixed-size array (not a slice), it
// can be used directly as a Go map key, which is the idiomatic equivalent
// of the source's "Capsule is hashable and survives mutation" behaviour
// (spec.md §9).
type Key struct {
	Variant byte // always 'O': identity is fixed at construction, never at current state
	First   [33]byte
	Second  [33]byte
	Third   [33]byte // scalar fields are right-aligned with a leading zero byte
}

// Capsule is either in the Original state (E, V, s — the output of
// encapsulation) or the Activated state (E', V', NI — the output of
// Shamir reconstruction over attached cfrags). The defining attributes of
// whichever state the capsule was constructed in are immutable and fix
// its equality/hash forever; everything else (correctness-context keys,
// the attached-fragment list) is mutable cargo that must never be
// consulted by Equal or Key.
type Capsule struct {
	st state

	// Original-state fields.
	e *curve.Point
	v *curve.Point
	s *curve.Scalar

	// Activated-state fields.
	ePrime *curve.Point
	vPrime *curve.Point
	ni     *curve.Point

	mu           sync.Mutex
	delegatingPK *keys.PublicKey
	receivingPK  *keys.PublicKey
	verifyingPK  *keys.PublicKey
	attached     []AttachedFragment
}

// NewOriginal constructs an Original-state capsule from its three defining
// attributes. No algebraic check is performed here; use
// CheckOriginalCorrectness to validate the s*G = V + H2(E,V)*E invariant
// before relying on the capsule (reencrypt and decapsulate_original do this
// internally).
func NewOriginal(e, v *curve.Point, s *curve.Scalar) *Capsule {
	return &Capsule{st: stateOriginal, e: e, v: v, s: s}
}

// IsActivated reports whether the capsule has transitioned to the
// Activated state.
func (c *Capsule) IsActivated() bool { return c.st == stateActivated }

// E returns the Original-state E point. Panics if the capsule is Activated;
// callers must check IsActivated first (mirrors the source's variant
// discrimination by field presence).
func (c *Capsule) E() *curve.Point { c.mustOriginal(); return c.e }

// V returns the Original-state V point.
func (c *Capsule) V() *curve.Point { c.mustOriginal(); return c.v }

// S returns the Original-state challenge response scalar.
func (c *Capsule) S() *curve.Scalar { c.mustOriginal(); return c.s }

// EPrime returns the Activated-state reconstructed E' point.
func (c *Capsule) EPrime() *curve.Point { c.mustActivated(); return c.ePrime }

// VPrime returns the Activated-state reconstructed V' point.
func (c *Capsule) VPrime() *curve.Point { c.mustActivated(); return c.vPrime }

// NI returns the Activated-state precursor (carried over from
// reconstruction, renamed NI for "non-interactive" per the source).
func (c *Capsule) NI() *curve.Point { c.mustActivated(); return c.ni }

func (c *Capsule) mustOriginal() {
	if c.st != stateOriginal {
		panic("capsule: field only valid in Original state")
	}
}

func (c *Capsule) mustActivated() {
	if c.st != stateActivated {
		panic("capsule: field only valid in Activated state")
	}
}

// CheckOriginalCorrectness verifies s*G == V + H2(E,V)*E, the invariant
// that binds an Original capsule to the delegating key that produced it
// (spec.md §3). It is a pure predicate, never an error: malformed inputs
// that reach this point are a logic bug upstream, not a caller mistake to
// report.
func (c *Capsule) CheckOriginalCorrectness() bool {
	c.mustOriginal()
	h := curve.H2(c.e, c.v)
	lhs := curve.MulBase(c.s)
	rhs := c.v.Add(c.e.Mul(h))
	return lhs.Equal(rhs)
}

// GetOrSetDelegatingKey idempotently records the delegating public key
// used in this capsule's correctness context and returns whichever value
// is now stored (the one just passed, or a previously set one).
func (c *Capsule) GetOrSetDelegatingKey(pk *keys.PublicKey) *keys.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delegatingPK == nil {
		c.delegatingPK = pk
	}
	return c.delegatingPK
}

// GetOrSetReceivingKey idempotently records the receiving (Bob's)
// public key.
func (c *Capsule) GetOrSetReceivingKey(pk *keys.PublicKey) *keys.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.receivingPK == nil {
		c.receivingPK = pk
	}
	return c.receivingPK
}

// GetOrSetVerifyingKey idempotently records Alice's signature-verifying
// public key.
func (c *Capsule) GetOrSetVerifyingKey(pk *keys.PublicKey) *keys.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verifyingPK == nil {
		c.verifyingPK = pk
	}
	return c.verifyingPK
}

// DelegatingKey, ReceivingKey and VerifyingKey return whatever
// correctness-context key is currently set, or nil.
func (c *Capsule) DelegatingKey() *keys.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegatingPK
}

func (c *Capsule) ReceivingKey() *keys.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receivingPK
}

func (c *Capsule) VerifyingKey() *keys.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifyingPK
}

// AttachCFrag appends a fragment to the capsule's reconstruction list.
// Legal only while the capsule is Original (spec.md §4.12).
func (c *Capsule) AttachCFrag(f AttachedFragment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st != stateOriginal {
		return fmt.Errorf("capsule: cannot attach a cfrag to an already-activated capsule")
	}
	c.attached = append(c.attached, f)
	return nil
}

// AttachedFragments returns a snapshot of the currently attached
// fragments. The returned slice is a copy; mutating it does not affect
// the capsule.
func (c *Capsule) AttachedFragments() []AttachedFragment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AttachedFragment, len(c.attached))
	copy(out, c.attached)
	return out
}

// Reconstruct performs Shamir reconstruction over the currently attached
// fragments (spec.md §4.8) and transitions the capsule to Activated. It
// requires at least one attached fragment to derive the precursor-binding
// scalar D; whether the attached set actually reaches the scheme's
// threshold M is not something a Capsule can check on its own (it holds no
// record of M) — supplying fewer than M genuine shares simply yields a
// reconstructed key that later fails AEAD decryption, which is the
// intended failure mode (spec.md §8 scenario: "with 3, activation yields a
// key that fails AEAD").
//
// Reconstruction is idempotent: calling it again on an already-Activated
// capsule is a no-op that returns nil.
func (c *Capsule) Reconstruct(receiverSK *keys.PrivateKey, receiverPK *keys.PublicKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st == stateActivated {
		return nil
	}
	if len(c.attached) == 0 {
		return fmt.Errorf("capsule: cannot activate with no attached fragments")
	}

	precursor := c.attached[0].Precursor
	shared := precursor.Mul(receiverSK.Scalar())
	d := curve.H3(precursor, receiverPK.Point(), shared)
	defer d.Zeroize()

	shareIndices := make([]*curve.Scalar, len(c.attached))
	for i, f := range c.attached {
		shareIndices[i] = curve.H5(f.KFragID, d)
	}

	var ePrime, vPrime *curve.Point
	for i, f := range c.attached {
		lambda := lagrangeCoefficientAtZero(shareIndices, i)
		defer lambda.Zeroize()

		e1 := f.E1.Mul(lambda)
		v1 := f.V1.Mul(lambda)
		if ePrime == nil {
			ePrime, vPrime = e1, v1
		} else {
			ePrime = ePrime.Add(e1)
			vPrime = vPrime.Add(v1)
		}
	}

	c.st = stateActivated
	c.ePrime = ePrime
	c.vPrime = vPrime
	c.ni = precursor
	c.attached = nil
	return nil
}

// lagrangeCoefficientAtZero computes lambda_i = prod_{j != i} y_j / (y_j - y_i)
// for the Lagrange basis polynomial evaluated at y = 0, used to reconstruct
// f(0) from the threshold polynomial's shares (spec.md §4.8).
func lagrangeCoefficientAtZero(shareIndices []*curve.Scalar, i int) *curve.Scalar {
	yi := shareIndices[i]
	num := curve.ScalarFromUint32(1)
	den := curve.ScalarFromUint32(1)
	for j, yj := range shareIndices {
		if j == i {
			continue
		}
		num = num.Mul(yj)
		den = den.Mul(yj.Sub(yi))
	}
	return num.Mul(den.Invert())
}

// AsKey returns a stable, comparable value for use as a map key, derived
// from the capsule's construction-time (E, V, s) regardless of its current
// state. Every capsule in this module is constructed Original, and
// Reconstruct never discards e/v/s when it transitions the capsule to
// Activated — so keying off them here means a capsule's identity survives
// cfrag attachment and activation alike, not just the former (spec.md §3:
// "the hash must not change ... when the capsule activates"; §9: "define
// hash(capsule) and equals(capsule) over the immutable defining attributes
// of the state at construction").
func (c *Capsule) AsKey() Key {
	var k Key
	k.Variant = 'O'
	copy(k.First[:], c.e.Bytes())
	copy(k.Second[:], c.v.Bytes())
	copy(k.Third[1:], c.s.Bytes())
	return k
}

// Equal reports whether two capsules were constructed from the same
// (E, V, s). Mutable cargo (context keys, attached fragments) and the
// current activation state never participate.
func (c *Capsule) Equal(other *Capsule) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.AsKey() == other.AsKey()
}

// Package params holds the process-wide curve parameters every other
// package in this module builds on: the generator G, a second independent
// generator U, and the group order q. This mirrors the teacher's
// `api/curve.Curve` handle (there "process-wide" meant "one native context
// per curve choice"); here it's a package-level singleton because this
// module supports exactly one curve.
package params

import (
	"encoding/hex"
	"sync"

	"github.com/umbral-go/pre/internal/curve"
)

// groupOrderHex is the well-known order of the secp256k1 group, i.e. the
// number of points on the curve (SEC 2, section 2.4.1).
const groupOrderHex = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"

var (
	once       sync.Once
	generator  *curve.Point
	secondGen  *curve.Point
	groupOrder []byte
)

func initParams() {
	generator = curve.BasePoint()
	secondGen = curve.HashToPoint(curve.TagSecondGenerator)
	groupOrder, _ = hex.DecodeString(groupOrderHex)
}

// G returns the standard secp256k1 generator.
func G() *curve.Point {
	once.Do(initParams)
	return generator
}

// U returns the second generator, derived once via a domain-separated
// hash-to-curve of a fixed string so that nobody — including the scheme's
// designers — knows log_G(U).
func U() *curve.Point {
	once.Do(initParams)
	return secondGen
}

// Order returns the big-endian encoding of the group order q.
func Order() []byte {
	once.Do(initParams)
	return groupOrder
}

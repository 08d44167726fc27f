// Package curve wraps the secp256k1 group and scalar field with the thin
// Scalar/Point vocabulary the rest of this module is built on.
//
// The teacher repo (coinbase/cb-mpc demos-go/cb-mpc-go, api/curve) binds the
// same Point/Scalar shape onto a native cgo engine. There is no native
// library to link here, so the group arithmetic is rebound onto the
// pure-Go stack the teacher's own sibling example already imports directly
// (demos-go/examples/ecdsa-2pc/main.go). This package uses
// github.com/decred/dcrd/dcrec/secp256k1/v4 for field/scalar/point
// operations; github.com/btcsuite/btcd/btcec/v2, for the key encodings
// ECDSA needs, is used by package signing, not here.
package curve

package pre

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/umbral-go/pre/internal/curve"
)

// kdfInfo is the fixed HKDF info string binding every derived symmetric key
// to this scheme. Its value differs from every hash domain tag in the curve
// package, including that package's (unused) tagKDF.
var kdfInfo = []byte("umbral-pre/facade/symmetric-key")

// deriveSymmetricKey runs HKDF-SHA256 over sharedPoint's compressed
// encoding, with no salt and a fixed info string, producing the 32-byte
// key both encapsulate and decapsulate_original/_reencrypted agree on
// (spec.md §4.2, §6).
func deriveSymmetricKey(sharedPoint *curve.Point) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedPoint.Bytes(), nil, kdfInfo)
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("pre: deriving symmetric key: %w", err)
	}
	return key, nil
}

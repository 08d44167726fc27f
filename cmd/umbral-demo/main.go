// Command umbral-demo walks through end-to-end delegation scenarios against
// the pre façade: an honest M-of-N round trip, a below-threshold failure,
// and a cheating-proxy detection. Configuration follows the teacher's
// env-var loading idiom (mustEnv/envDefault, log.Fatalf on misconfiguration)
// from its HTTP signer entry point, adapted here to a one-shot CLI since
// this module has no networked proxies to orchestrate (spec.md §1
// Non-goals: no proxy networking, discovery, or trust management).
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/umbral-go/pre"
	"github.com/umbral-go/pre/fragments"
	"github.com/umbral-go/pre/keys"
	"github.com/umbral-go/pre/signing"
)

type config struct {
	Shares    int
	Threshold int
	Plaintext []byte
}

func envDefault(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(name string, def int) int {
	raw := envDefault(name, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("invalid %s=%q: %v", name, raw, err)
	}
	return n
}

func loadConfig() config {
	return config{
		Shares:    envIntDefault("UMBRAL_DEMO_SHARES", 6),
		Threshold: envIntDefault("UMBRAL_DEMO_THRESHOLD", 4),
		Plaintext: []byte(envDefault("UMBRAL_DEMO_PLAINTEXT", "peace at dawn")),
	}
}

func main() {
	cfg := loadConfig()

	log.Printf("umbral-demo: generating delegator (Alice), receiver (Bob) and verifying keypairs")
	alice, err := keys.GenerateKey()
	if err != nil {
		log.Fatalf("generating delegating key: %v", err)
	}
	bob, err := keys.GenerateKey()
	if err != nil {
		log.Fatalf("generating receiving key: %v", err)
	}
	verifySK, err := keys.GenerateKey()
	if err != nil {
		log.Fatalf("generating verifying key: %v", err)
	}
	signer, err := signing.NewSigner(verifySK)
	if err != nil {
		log.Fatalf("building signer: %v", err)
	}

	runHonestRoundTrip(cfg, alice, bob, verifySK, signer)
	runBelowThreshold(alice, bob, verifySK, signer)
	runCheatingProxy(alice, bob, verifySK, signer)
}

func runHonestRoundTrip(cfg config, alice, bob, verifySK *keys.PrivateKey, signer *signing.Signer) {
	log.Printf("--- honest round trip: N=%d, M=%d ---", cfg.Shares, cfg.Threshold)

	ciphertext, cap, err := pre.Encrypt(alice.PublicKey(), cfg.Plaintext)
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}

	kfrags, err := pre.SplitReKey(alice, signer, alice.PublicKey(), bob.PublicKey(), cfg.Threshold, cfg.Shares)
	if err != nil {
		log.Fatalf("split_rekey: %v", err)
	}

	cfrags := make([]*fragments.CFrag, 0, cfg.Threshold)
	for i := 0; i < cfg.Threshold; i++ {
		cf, err := pre.ReEncrypt(kfrags[i], cap, []byte(fmt.Sprintf("proxy-%d", i)), true)
		if err != nil {
			log.Fatalf("reencrypt at proxy %d: %v", i, err)
		}
		cfrags = append(cfrags, cf)
	}

	plaintext, err := pre.Decrypt(ciphertext, cap, bob, alice.PublicKey(), verifySK.PublicKey(), cfrags)
	if err != nil {
		log.Fatalf("decrypt: %v", err)
	}
	log.Printf("Bob recovered: %q", plaintext)
}

func runBelowThreshold(alice, bob, verifySK *keys.PrivateKey, signer *signing.Signer) {
	log.Printf("--- below-threshold activation: N=6, M=4, Bob only collects 3 ---")

	ciphertext, cap, err := pre.Encrypt(alice.PublicKey(), []byte("peace at dawn"))
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}
	kfrags, err := pre.SplitReKey(alice, signer, alice.PublicKey(), bob.PublicKey(), 4, 6)
	if err != nil {
		log.Fatalf("split_rekey: %v", err)
	}

	cfrags := make([]*fragments.CFrag, 0, 3)
	for i := 0; i < 3; i++ {
		cf, err := pre.ReEncrypt(kfrags[i], cap, nil, true)
		if err != nil {
			log.Fatalf("reencrypt: %v", err)
		}
		cfrags = append(cfrags, cf)
	}

	_, err = pre.Decrypt(ciphertext, cap, bob, alice.PublicKey(), verifySK.PublicKey(), cfrags)
	if err == nil {
		log.Fatalf("expected decrypt to fail with only 3 of 4 required cfrags, it did not")
	}
	log.Printf("decrypt correctly failed below threshold: %v", err)
}

func runCheatingProxy(alice, bob, verifySK *keys.PrivateKey, signer *signing.Signer) {
	log.Printf("--- cheating proxy detection ---")

	_, cap, err := pre.Encapsulate(alice.PublicKey())
	if err != nil {
		log.Fatalf("encapsulate: %v", err)
	}
	_, otherCap, err := pre.Encapsulate(alice.PublicKey())
	if err != nil {
		log.Fatalf("encapsulate: %v", err)
	}

	kfrags, err := pre.SplitReKey(alice, signer, alice.PublicKey(), bob.PublicKey(), 2, 3)
	if err != nil {
		log.Fatalf("split_rekey: %v", err)
	}

	cheater, err := pre.ReEncrypt(kfrags[0], otherCap, nil, true) // re-encrypts the wrong capsule
	if err != nil {
		log.Fatalf("reencrypt: %v", err)
	}
	honest, err := pre.ReEncrypt(kfrags[1], cap, nil, true)
	if err != nil {
		log.Fatalf("reencrypt: %v", err)
	}

	_, err = pre.OpenCapsule(cap, []*fragments.CFrag{cheater, honest}, bob, bob.PublicKey(), alice.PublicKey(), verifySK.PublicKey())
	if err == nil {
		log.Fatalf("expected open_capsule to detect the cheating proxy, it did not")
	}
	var failure *pre.CorrectnessFailureError
	if !errors.As(err, &failure) {
		log.Fatalf("expected a correctness failure, got: %v", err)
	}
	log.Printf("open_capsule correctly named %d offending cfrag(s)", len(failure.Offending))
}

// Package keys implements the signing identities the toolkit accepts and a
// small filesystem seed store.
//
// Two schemes exist, fixed by the remote verifier: Ed25519 and secp256k1
// ECDSA. A signer is built from externally supplied seed material, used for
// the signing call, and dropped; it keeps no mutable state, so concurrent use
// over independent messages is safe.
package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"xdao.co/glacier/principal"
)

// Algorithm names a supported signature scheme.
type Algorithm string

const (
	Ed25519   Algorithm = "ed25519"
	Secp256k1 Algorithm = "secp256k1"
)

// SeedSize is the seed length both schemes take.
const SeedSize = 32

// DER prefixes for SubjectPublicKeyInfo encodings. The replica derives the
// caller principal from these exact bytes; they are protocol constants.
var (
	ed25519DERPrefix   = []byte{0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70, 0x03, 0x21, 0x00}
	secp256k1DERPrefix = []byte{
		0x30, 0x56, 0x30, 0x10, 0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
		0x06, 0x05, 0x2b, 0x81, 0x04, 0x00, 0x0a, 0x03, 0x42, 0x00,
	}
)

// Signer signs ingress payloads and identifies the caller.
//
// Sign takes the full domain-separated payload; each scheme applies its own
// digest discipline (Ed25519 hashes internally, secp256k1 signs the SHA-256
// of the payload).
type Signer interface {
	Sign(payload []byte) ([]byte, error)
	PublicKeyDER() []byte
	Principal() principal.Principal
	Algorithm() Algorithm
}

// NewSigner builds a signer for the given scheme from a 32-byte seed.
// A wrong-length seed and an unknown algorithm are distinct failures.
func NewSigner(alg Algorithm, seed []byte) (Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("keys: malformed seed: expected %d bytes, got %d", SeedSize, len(seed))
	}
	switch alg {
	case Ed25519:
		return newEd25519Signer(seed), nil
	case Secp256k1:
		return newSecp256k1Signer(seed)
	default:
		return nil, fmt.Errorf("keys: unsupported algorithm %q", alg)
	}
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
	der  []byte
}

func newEd25519Signer(seed []byte) *ed25519Signer {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	der := make([]byte, 0, len(ed25519DERPrefix)+ed25519.PublicKeySize)
	der = append(der, ed25519DERPrefix...)
	der = append(der, pub...)
	return &ed25519Signer{priv: priv, der: der}
}

func (s *ed25519Signer) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, payload), nil
}

func (s *ed25519Signer) PublicKeyDER() []byte {
	return append([]byte(nil), s.der...)
}

func (s *ed25519Signer) Principal() principal.Principal {
	return principal.SelfAuthenticating(s.der)
}

func (s *ed25519Signer) Algorithm() Algorithm { return Ed25519 }

type secp256k1Signer struct {
	priv *btcec.PrivateKey
	der  []byte
}

func newSecp256k1Signer(seed []byte) (*secp256k1Signer, error) {
	priv, _ := btcec.PrivKeyFromBytes(seed)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("keys: malformed seed: zero secp256k1 scalar")
	}
	point := priv.PubKey().SerializeUncompressed()
	der := make([]byte, 0, len(secp256k1DERPrefix)+len(point))
	der = append(der, secp256k1DERPrefix...)
	der = append(der, point...)
	return &secp256k1Signer{priv: priv, der: der}, nil
}

func (s *secp256k1Signer) Sign(payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	// SignCompact yields [recovery, r(32), s(32)]; the replica wants r || s.
	compact := btcecdsa.SignCompact(s.priv, digest[:], false)
	if len(compact) != 65 {
		return nil, fmt.Errorf("keys: unexpected compact signature length %d", len(compact))
	}
	return append([]byte(nil), compact[1:]...), nil
}

func (s *secp256k1Signer) PublicKeyDER() []byte {
	return append([]byte(nil), s.der...)
}

func (s *secp256k1Signer) Principal() principal.Principal {
	return principal.SelfAuthenticating(s.der)
}

func (s *secp256k1Signer) Algorithm() Algorithm { return Secp256k1 }

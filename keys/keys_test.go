package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSeed() []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestEd25519Signer(t *testing.T) {
	signer, err := NewSigner(Ed25519, testSeed())
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	const wantPubkey = "03a107bff3ce10be1d70dd18e74bc09967e4d6309ba50d5f1ddc8664125531b8"
	der := signer.PublicKeyDER()
	if !bytes.HasPrefix(der, ed25519DERPrefix) {
		t.Fatalf("DER missing SPKI prefix: %x", der)
	}
	if hex.EncodeToString(der[len(ed25519DERPrefix):]) != wantPubkey {
		t.Errorf("pubkey = %x, want %s", der[len(ed25519DERPrefix):], wantPubkey)
	}

	const wantPrincipal = "yavxl-ppty4-enezb-hcalr-cdgzv-zoexx-7od3c-urvk6-rfzs4-552ct-7ae"
	if got := signer.Principal().String(); got != wantPrincipal {
		t.Errorf("principal = %s, want %s", got, wantPrincipal)
	}

	payload := []byte("test payload")
	sig, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	const wantSig = "bcfbe2ea6c9b1e66fbf1048992d552570db0564f97746b8c899cd38238e9e546df8b271a065ee9d57cd7bb0e3adf10bd20da4ce1b461e31643d5ba68c3a7d00c"
	if hex.EncodeToString(sig) != wantSig {
		t.Errorf("signature = %x, want %s", sig, wantSig)
	}
	if !ed25519.Verify(ed25519.PublicKey(der[len(ed25519DERPrefix):]), payload, sig) {
		t.Error("signature does not verify")
	}
}

func TestSecp256k1Signer(t *testing.T) {
	seed := bytes.Repeat([]byte{0x01}, SeedSize)
	signer, err := NewSigner(Secp256k1, seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	const wantPoint = "041b84c5567b126440995d3ed5aaba0565d71e1834604819ff9c17f5e9d5dd078f70beaf8f588b541507fed6a642c5ab42dfdf8120a7f639de5122d47a69a8e8d1"
	der := signer.PublicKeyDER()
	if !bytes.HasPrefix(der, secp256k1DERPrefix) {
		t.Fatalf("DER missing SPKI prefix: %x", der)
	}
	if hex.EncodeToString(der[len(secp256k1DERPrefix):]) != wantPoint {
		t.Errorf("point = %x, want %s", der[len(secp256k1DERPrefix):], wantPoint)
	}

	const wantPrincipal = "t5j4r-2c6hf-uqyc2-l2w6d-ktqse-2m3cb-ksxd5-63npk-wdztw-au5nc-yqe"
	if got := signer.Principal().String(); got != wantPrincipal {
		t.Errorf("principal = %s, want %s", got, wantPrincipal)
	}

	// Deterministic nonces (RFC 6979) make the signature reproducible.
	sig, err := signer.Sign([]byte("test payload"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	const wantSig = "e7469c047dc6fc65a320d7e220e813960368418e40ebf1242ced923fdac71edb0547863a88f77391d6f4a274526136a9488d66cd47b65891cd6a17941a0fe83d"
	if hex.EncodeToString(sig) != wantSig {
		t.Errorf("signature = %x, want %s", sig, wantSig)
	}
}

func TestNewSignerRejects(t *testing.T) {
	if _, err := NewSigner(Ed25519, make([]byte, 16)); err == nil || !strings.Contains(err.Error(), "malformed seed") {
		t.Errorf("short seed: err = %v, want malformed seed", err)
	}
	if _, err := NewSigner("rsa", testSeed()); err == nil || !strings.Contains(err.Error(), "unsupported algorithm") {
		t.Errorf("unknown algorithm: err = %v, want unsupported algorithm", err)
	}
	if _, err := NewSigner(Secp256k1, make([]byte, SeedSize)); err == nil || !strings.Contains(err.Error(), "zero") {
		t.Errorf("zero scalar: err = %v, want zero scalar rejection", err)
	}
}

func TestParseSeedSpec(t *testing.T) {
	seedHex := hex.EncodeToString(testSeed())

	alg, seed, err := ParseSeedSpec(seedHex)
	if err != nil || alg != Ed25519 || !bytes.Equal(seed, testSeed()) {
		t.Errorf("bare hex: %v %v %v", alg, seed, err)
	}
	alg, _, err = ParseSeedSpec("secp256k1:" + seedHex)
	if err != nil || alg != Secp256k1 {
		t.Errorf("prefixed: alg = %v, err = %v", alg, err)
	}
	if _, _, err := ParseSeedSpec("dsa:" + seedHex); err == nil {
		t.Error("unknown algorithm accepted")
	}
	if _, _, err := ParseSeedSpec(seedHex[:62]); err == nil {
		t.Error("short seed accepted")
	}
	if _, _, err := ParseSeedSpec("zz" + seedHex[2:]); err == nil {
		t.Error("non-hex seed accepted")
	}
}

func TestKeyStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ks, err := CreateKeyStore(dir)
	if err != nil {
		t.Fatalf("CreateKeyStore: %v", err)
	}

	path, err := ks.StoreKey("alice", Ed25519, testSeed(), false)
	if err != nil {
		t.Fatalf("StoreKey: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat seed file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("seed file mode = %o, want 600", perm)
	}

	signer, err := ks.LoadSigner("", "alice", "")
	if err != nil {
		t.Fatalf("LoadSigner: %v", err)
	}
	if signer.Algorithm() != Ed25519 {
		t.Errorf("algorithm = %v, want ed25519", signer.Algorithm())
	}

	// A second store without overwrite must not clobber the seed.
	if _, err := ks.StoreKey("alice", Ed25519, bytes.Repeat([]byte{9}, SeedSize), false); err == nil {
		t.Error("StoreKey overwrote an existing key without force")
	}

	fromFile, err := ks.LoadSigner("", "", filepath.Join(dir, "alice", "seed.key"))
	if err != nil {
		t.Fatalf("LoadSigner from file: %v", err)
	}
	if !fromFile.Principal().Equal(signer.Principal()) {
		t.Error("file-loaded signer diverges from name-loaded signer")
	}
}

func TestKeyStoreList(t *testing.T) {
	dir := t.TempDir()
	ks, _ := CreateKeyStore(dir)

	entries, err := ks.ListKeys()
	if err != nil || entries != nil {
		t.Fatalf("empty store: %v, %v", entries, err)
	}

	if _, err := ks.StoreKey("bob", Secp256k1, bytes.Repeat([]byte{0x02}, SeedSize), false); err != nil {
		t.Fatalf("StoreKey: %v", err)
	}
	if _, err := ks.StoreKey("alice", Ed25519, testSeed(), false); err != nil {
		t.Fatalf("StoreKey: %v", err)
	}
	// A half-written entry must not break listing.
	if err := os.MkdirAll(filepath.Join(dir, "broken"), 0o700); err != nil {
		t.Fatal(err)
	}

	entries, err = ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "alice" || entries[1].Name != "bob" {
		t.Fatalf("entries = %+v, want alice then bob", entries)
	}
	if entries[1].Algorithm != Secp256k1 {
		t.Errorf("bob algorithm = %v, want secp256k1", entries[1].Algorithm)
	}
}

func TestCheckKeyName(t *testing.T) {
	for _, ok := range []string{"alice", "cold-wallet_1", "A9"} {
		if err := CheckKeyName(ok); err != nil {
			t.Errorf("CheckKeyName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a/b", "a b", "../x", "ключ"} {
		if err := CheckKeyName(bad); err == nil {
			t.Errorf("CheckKeyName(%q) accepted", bad)
		}
	}
}

func TestExportKey(t *testing.T) {
	dir := t.TempDir()
	ks, _ := CreateKeyStore(dir)
	if _, err := ks.ExportKey("missing"); err == nil {
		t.Error("ExportKey on a missing name succeeded")
	}
	if _, err := ks.StoreKey("carol", Ed25519, testSeed(), false); err != nil {
		t.Fatalf("StoreKey: %v", err)
	}
	signer, err := ks.ExportKey("carol")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if signer.Algorithm() != Ed25519 {
		t.Errorf("algorithm = %v", signer.Algorithm())
	}
}

package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a minimal local seed store for the offline signing host.
//
// Features:
// - Stores externally supplied seeds on the local filesystem (0600 files)
// - Records the scheme alongside the seed so schemes can never be mixed up
// - No generation, no derivation: seeds come from outside
//
// Seed files hold a single line "<algorithm>:<64 hex chars>".
type KeyStore struct {
	Directory string
}

type KeyEntry struct {
	Name      string
	Algorithm Algorithm
}

// GetDefaultDirectory honors GLACIER_HOME, falling back to ~/.glacier/keys.
func GetDefaultDirectory() (string, error) {
	if home := os.Getenv("GLACIER_HOME"); home != "" {
		return filepath.Join(home, "keys"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".glacier", "keys"), nil
}

func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) seedFilePath(name string) string {
	return filepath.Join(ks.Directory, name, "seed.key")
}

func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("key name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in key name", char)
	}
	return nil
}

// ParseSeedSpec parses "<algorithm>:<hex>" (the file format) or bare hex,
// which defaults to Ed25519.
func ParseSeedSpec(spec string) (Algorithm, []byte, error) {
	spec = strings.TrimSpace(spec)
	alg := Ed25519
	if algStr, rest, ok := strings.Cut(spec, ":"); ok {
		switch Algorithm(algStr) {
		case Ed25519, Secp256k1:
			alg = Algorithm(algStr)
		default:
			return "", nil, fmt.Errorf("unsupported algorithm %q", algStr)
		}
		spec = rest
	}
	seed, err := hex.DecodeString(strings.TrimPrefix(spec, "0x"))
	if err != nil {
		return "", nil, fmt.Errorf("malformed seed hex: %v", err)
	}
	if len(seed) != SeedSize {
		return "", nil, fmt.Errorf("malformed seed: expected %d bytes, got %d", SeedSize, len(seed))
	}
	return alg, seed, nil
}

func (ks *KeyStore) saveSeedToFile(filePath string, alg Algorithm, seed []byte, overwrite bool) error {
	if len(seed) != SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(string(alg) + ":" + hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadSeedFromFile(filePath string) (Algorithm, []byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, err
	}
	return ParseSeedSpec(strings.TrimSpace(string(data)))
}

// StoreKey writes a supplied seed under the given name and returns the file
// path it landed in.
func (ks *KeyStore) StoreKey(name string, alg Algorithm, seed []byte, overwrite bool) (string, error) {
	if err := CheckKeyName(name); err != nil {
		return "", err
	}
	filePath := ks.seedFilePath(name)
	if err := ks.saveSeedToFile(filePath, alg, seed, overwrite); err != nil {
		return "", err
	}
	return filePath, nil
}

// LoadSigner resolves a signer from exactly one of: an inline seed spec, a
// stored key name, or a seed file path.
func (ks *KeyStore) LoadSigner(seedSpec, name, keyFile string) (Signer, error) {
	var alg Algorithm
	var seed []byte
	var err error
	switch {
	case seedSpec != "":
		alg, seed, err = ParseSeedSpec(seedSpec)
	case keyFile != "":
		alg, seed, err = ks.loadSeedFromFile(keyFile)
	case name != "":
		if nameErr := CheckKeyName(name); nameErr != nil {
			return nil, nameErr
		}
		alg, seed, err = ks.loadSeedFromFile(ks.seedFilePath(name))
	default:
		return nil, errors.New("no signer provided")
	}
	if err != nil {
		return nil, err
	}
	return NewSigner(alg, seed)
}

// ExportKey returns the signer for a stored key, for printing its public ids.
func (ks *KeyStore) ExportKey(name string) (Signer, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	alg, seed, err := ks.loadSeedFromFile(ks.seedFilePath(name))
	if err != nil {
		return nil, err
	}
	return NewSigner(alg, seed)
}

func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []KeyEntry
	for _, name := range names {
		alg, _, err := ks.loadSeedFromFile(ks.seedFilePath(name))
		if err != nil {
			// Unreadable entries are skipped, not fatal: listing must not
			// fail because one directory was left half-written.
			continue
		}
		result = append(result, KeyEntry{Name: name, Algorithm: alg})
	}
	return result, nil
}

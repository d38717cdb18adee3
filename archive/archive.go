// Package archive keeps a content-addressed record of signed message files.
//
// The offline host has no other trail of what left the air gap, so every
// stored object is immutable and keyed by the same CID the hand-off copy is
// checked against. Put is idempotent; storing the same bytes twice is a
// no-op, storing different bytes under a colliding name is an error.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/glacier/msgid"
)

var (
	ErrNotFound    = errors.New("archive: not found")
	ErrImmutable   = errors.New("archive: stored object differs from new bytes")
	ErrCIDMismatch = errors.New("archive: stored bytes do not match their cid")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is a filesystem archive; one file per object, named by CID.
type Store struct {
	Directory string
}

// DefaultDirectory honors GLACIER_HOME, falling back to ~/.glacier/archive.
func DefaultDirectory() (string, error) {
	if home := os.Getenv("GLACIER_HOME"); home != "" {
		return filepath.Join(home, "archive"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".glacier", "archive"), nil
}

// Open returns a store rooted at directory, or at the default location when
// directory is empty.
func Open(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) objectPath(id cid.Cid) string {
	return filepath.Join(s.Directory, id.String()+".json")
}

// Put stores data and returns its CID. Re-storing identical bytes succeeds;
// a pre-existing object with different bytes fails with ErrImmutable.
func (s *Store) Put(data []byte) (cid.Cid, error) {
	id, err := msgid.ForBytes(data)
	if err != nil {
		return cid.Undef, err
	}
	path := s.objectPath(id)
	if existing, err := os.ReadFile(path); err == nil {
		if !bytes.Equal(existing, data) {
			return cid.Undef, fmt.Errorf("%w: %s", ErrImmutable, id)
		}
		return id, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return cid.Undef, err
	}

	if err := os.MkdirAll(s.Directory, 0o700); err != nil {
		return cid.Undef, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Get returns the stored bytes for id, re-deriving the CID to catch
// on-disk corruption.
func (s *Store) Get(id cid.Cid) ([]byte, error) {
	data, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	check, err := msgid.ForBytes(data)
	if err != nil {
		return nil, err
	}
	if !check.Equals(id) {
		return nil, fmt.Errorf("%w: %s", ErrCIDMismatch, id)
	}
	return data, nil
}

// Has reports whether id is stored, without reading the object.
func (s *Store) Has(id cid.Cid) bool {
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// List returns the stored CIDs in lexical order.
func (s *Store) List() ([]cid.Cid, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)

	var ids []cid.Cid
	for _, name := range names {
		id, err := cid.Decode(name)
		if err != nil {
			// A stray file is not an archive object; skip it.
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

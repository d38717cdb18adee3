// Package principal implements Internet Computer principal identifiers.
//
// A principal is an opaque byte string of at most 29 bytes. Its textual form
// embeds a CRC-32 checksum and is base32-encoded in lowercase without padding,
// grouped in 5-character chunks joined by dashes. The textual round trip is a
// cross-system invariant: the bytes produced here must match what the replica
// derives on its side, bit for bit.
package principal

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

// MaxLength is the maximum length of a principal's raw form.
const MaxLength = 29

var (
	ErrTooLong       = errors.New("principal: raw form longer than 29 bytes")
	ErrChecksum      = errors.New("principal: checksum mismatch")
	ErrNotCanonical  = errors.New("principal: non-canonical textual form")
	ErrMalformedText = errors.New("principal: malformed textual form")
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is an IC principal identifier.
//
// The zero value is the management canister principal ("aaaaa-aa").
type Principal struct {
	raw []byte
}

// FromBytes wraps raw principal bytes.
func FromBytes(raw []byte) (Principal, error) {
	if len(raw) > MaxLength {
		return Principal{}, ErrTooLong
	}
	return Principal{raw: append([]byte(nil), raw...)}, nil
}

// Anonymous returns the anonymous principal (a single 0x04 byte).
func Anonymous() Principal {
	return Principal{raw: []byte{0x04}}
}

// SelfAuthenticating derives the principal bound to a public key: the SHA-224
// of the DER-encoded key followed by the self-authenticating tag byte 0x02.
func SelfAuthenticating(derPublicKey []byte) Principal {
	sum := sha256.Sum224(derPublicKey)
	raw := make([]byte, 0, sha256.Size224+1)
	raw = append(raw, sum[:]...)
	raw = append(raw, 0x02)
	return Principal{raw: raw}
}

// Decode parses the dashed textual form, verifying the embedded checksum and
// the canonical grouping.
func Decode(text string) (Principal, error) {
	compact := strings.ReplaceAll(text, "-", "")
	if strings.ToLower(compact) != compact {
		return Principal{}, ErrNotCanonical
	}
	data, err := encoding.DecodeString(strings.ToUpper(compact))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrMalformedText, err)
	}
	if len(data) < 4 {
		return Principal{}, ErrMalformedText
	}
	raw := data[4:]
	if len(raw) > MaxLength {
		return Principal{}, ErrTooLong
	}
	if binary.BigEndian.Uint32(data[:4]) != crc32.ChecksumIEEE(raw) {
		return Principal{}, ErrChecksum
	}
	p := Principal{raw: append([]byte(nil), raw...)}
	// Reject inputs that decode but were not grouped the way Encode groups.
	if p.String() != text {
		return Principal{}, ErrNotCanonical
	}
	return p, nil
}

// MustDecode is Decode for well-known constants; it panics on error.
func MustDecode(text string) Principal {
	p, err := Decode(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the raw principal bytes.
func (p Principal) Bytes() []byte {
	return append([]byte(nil), p.raw...)
}

// Equal reports whether two principals carry identical raw bytes.
func (p Principal) Equal(q Principal) bool {
	return string(p.raw) == string(q.raw)
}

// String returns the canonical dashed textual form.
func (p Principal) String() string {
	data := make([]byte, 4+len(p.raw))
	binary.BigEndian.PutUint32(data, crc32.ChecksumIEEE(p.raw))
	copy(data[4:], p.raw)
	b32 := strings.ToLower(encoding.EncodeToString(data))

	var sb strings.Builder
	for i, r := range b32 {
		if i > 0 && i%5 == 0 {
			sb.WriteByte('-')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

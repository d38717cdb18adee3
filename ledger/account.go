// Package ledger implements ICP ledger account identifiers and token amounts.
//
// Account identifier derivation is a cross-system invariant shared with the
// ledger canister: SHA-224 over a fixed domain-separation prefix, the owner
// principal, and a 32-byte subaccount, with a CRC-32 checksum prepended in the
// textual form. Do not "improve" any of it.
package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"xdao.co/glacier/principal"
)

const (
	// HashLength is the length of the account identifier hash (SHA-224).
	HashLength = 28

	// TextLength is the length of the checksummed hex textual form.
	TextLength = 2 * (4 + HashLength)

	// SubAccountLength is the only valid explicit subaccount length.
	SubAccountLength = 32
)

const accountDomainSeparator = "\x0Aaccount-id"

var (
	ErrSubAccountLength = errors.New("ledger: subaccount must be exactly 32 bytes")
	ErrAccountText      = errors.New("ledger: malformed account identifier")
	ErrAccountChecksum  = errors.New("ledger: account identifier checksum mismatch")
)

// SubAccount distinguishes accounts held by one principal.
type SubAccount [SubAccountLength]byte

// NewSubAccount validates an explicit subaccount. Only exactly 32 bytes are
// accepted; the all-zero default is expressed by passing no subaccount at all.
func NewSubAccount(b []byte) (SubAccount, error) {
	var sub SubAccount
	if len(b) != SubAccountLength {
		return sub, fmt.Errorf("%w, got %d", ErrSubAccountLength, len(b))
	}
	copy(sub[:], b)
	return sub, nil
}

// AccountIdentifier is the 28-byte ledger account hash.
type AccountIdentifier struct {
	hash [HashLength]byte
}

// NewAccountIdentifier derives the account of owner under sub. A nil sub
// selects the default (all-zero) subaccount.
func NewAccountIdentifier(owner principal.Principal, sub *SubAccount) AccountIdentifier {
	h := sha256.New224()
	_, _ = h.Write([]byte(accountDomainSeparator))
	_, _ = h.Write(owner.Bytes())
	var subBytes SubAccount
	if sub != nil {
		subBytes = *sub
	}
	_, _ = h.Write(subBytes[:])

	var id AccountIdentifier
	copy(id.hash[:], h.Sum(nil))
	return id
}

// DecodeAccountIdentifier parses the 64-character checksummed hex form.
func DecodeAccountIdentifier(text string) (AccountIdentifier, error) {
	var id AccountIdentifier
	if len(text) != TextLength {
		return id, fmt.Errorf("%w: expected %d hex characters, got %d", ErrAccountText, TextLength, len(text))
	}
	if strings.ToLower(text) != text {
		return id, fmt.Errorf("%w: uppercase hex", ErrAccountText)
	}
	raw, err := hex.DecodeString(text)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrAccountText, err)
	}
	copy(id.hash[:], raw[4:])
	if binary.BigEndian.Uint32(raw[:4]) != crc32.ChecksumIEEE(id.hash[:]) {
		return id, ErrAccountChecksum
	}
	return id, nil
}

// ValidAccountIdentifier reports whether text parses with a correct checksum.
// Input-parsing paths use this; derivation never does.
func ValidAccountIdentifier(text string) bool {
	_, err := DecodeAccountIdentifier(text)
	return err == nil
}

// Hash returns a copy of the raw 28-byte hash.
func (id AccountIdentifier) Hash() []byte {
	out := make([]byte, HashLength)
	copy(out, id.hash[:])
	return out
}

// String returns hex(crc32(hash) || hash), the form the ledger canister's
// text-typed methods accept.
func (id AccountIdentifier) String() string {
	buf := make([]byte, 4+HashLength)
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(id.hash[:]))
	copy(buf[4:], id.hash[:])
	return hex.EncodeToString(buf)
}

// NeuronStakeSubAccount computes the governance subaccount a neuron stake
// transfer must target: sha256(0x0c || "neuron-stake" || controller || nonce).
func NeuronStakeSubAccount(controller principal.Principal, nonce uint64) SubAccount {
	h := sha256.New()
	_, _ = h.Write([]byte{0x0c})
	_, _ = h.Write([]byte("neuron-stake"))
	_, _ = h.Write(controller.Bytes())
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	_, _ = h.Write(nonceBytes[:])

	var sub SubAccount
	copy(sub[:], h.Sum(nil))
	return sub
}

// Package ingress assembles, signs, and serializes IC ingress messages.
//
// The request id is the protocol's representation-independent content hash:
// every field of the call map is hashed individually, the (key hash, value
// hash) pairs are sorted, and the concatenation is hashed again. The replica
// recomputes this hash and checks it against the signed digest, so the
// algorithm here must match the protocol definition bit for bit.
package ingress

import (
	"crypto/sha256"
	"sort"
)

// RequestIDLength is the length of a request id digest.
const RequestIDLength = sha256.Size

// RequestID is the canonical content hash of one ingress message.
type RequestID [RequestIDLength]byte

// requestDomainSeparator prefixes a request id before signing; the signature
// therefore covers the id and nothing else can be substituted underneath it.
const requestDomainSeparator = "\x0Aic-request"

// Content is the canonical call map. Fields left at their zero value (nil
// slices, empty strings) are absent: they are omitted from the hash entirely,
// which is distinct from hashing an explicit zero.
//
// A Content is immutable once built; nothing in this package mutates one.
type Content struct {
	RequestType   string
	Sender        []byte
	Nonce         []byte
	IngressExpiry uint64
	CanisterID    []byte
	MethodName    string
	Arg           []byte
	Paths         [][][]byte
}

// ComputeRequestID hashes the content map. Construction order cannot matter:
// the pair list is sorted before the outer hash.
func ComputeRequestID(content Content) RequestID {
	var pairs [][]byte
	appendField := func(key string, valueHash [sha256.Size]byte) {
		keyHash := sha256.Sum256([]byte(key))
		pairs = append(pairs, append(keyHash[:], valueHash[:]...))
	}

	appendField("request_type", sha256.Sum256([]byte(content.RequestType)))
	if content.Sender != nil {
		appendField("sender", sha256.Sum256(content.Sender))
	}
	if content.Nonce != nil {
		appendField("nonce", sha256.Sum256(content.Nonce))
	}
	if content.IngressExpiry != 0 {
		appendField("ingress_expiry", hashUint(content.IngressExpiry))
	}
	if content.CanisterID != nil {
		appendField("canister_id", sha256.Sum256(content.CanisterID))
	}
	if content.MethodName != "" {
		appendField("method_name", sha256.Sum256([]byte(content.MethodName)))
	}
	if content.Arg != nil {
		appendField("arg", sha256.Sum256(content.Arg))
	}
	if content.Paths != nil {
		appendField("paths", hashPaths(content.Paths))
	}

	sort.Slice(pairs, func(i, j int) bool {
		return string(pairs[i]) < string(pairs[j])
	})

	h := sha256.New()
	for _, pair := range pairs {
		_, _ = h.Write(pair)
	}
	var id RequestID
	copy(id[:], h.Sum(nil))
	return id
}

// hashUint hashes an unsigned integer over its LEB128 encoding.
func hashUint(v uint64) [sha256.Size]byte {
	var buf []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			break
		}
	}
	return sha256.Sum256(buf)
}

// hashPaths hashes a list of state paths: arrays hash to the hash of their
// elements' hashes, concatenated.
func hashPaths(paths [][][]byte) [sha256.Size]byte {
	outer := sha256.New()
	for _, path := range paths {
		inner := sha256.New()
		for _, label := range path {
			labelHash := sha256.Sum256(label)
			_, _ = inner.Write(labelHash[:])
		}
		_, _ = outer.Write(inner.Sum(nil))
	}
	var sum [sha256.Size]byte
	copy(sum[:], outer.Sum(nil))
	return sum
}

// SignedPayload returns the domain-separated bytes a Signer signs for id.
func (id RequestID) SignedPayload() []byte {
	payload := make([]byte, 0, len(requestDomainSeparator)+RequestIDLength)
	payload = append(payload, requestDomainSeparator...)
	payload = append(payload, id[:]...)
	return payload
}

// Package msgid derives content ids for signed message files.
//
// The offline and online operators exchange message files by hand; printing
// a content id on both sides lets them confirm the copy survived the trip.
// The id is a CIDv1 with the "raw" multicodec over a sha2-256 multihash of
// the exact file bytes.
package msgid

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ForBytes returns the CIDv1 (raw + sha2-256) of data.
func ForBytes(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String returns the canonical textual id of data, or "" when derivation
// fails (unreachable with sha2-256 and default length).
func String(data []byte) string {
	id, err := ForBytes(data)
	if err != nil {
		return ""
	}
	return id.String()
}

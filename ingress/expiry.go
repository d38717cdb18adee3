package ingress

import (
	"crypto/rand"
	"time"
)

// ExpiryWindow bounds how long a signed message stays submittable. Short
// enough to bound replay exposure, long enough to walk a USB stick to the
// online machine.
const ExpiryWindow = 5 * time.Minute

// NonceLength is 8 random bytes; collisions across one expiry window's
// realistic call volume are out of reach.
const NonceLength = 8

// Expiry returns the ingress expiry for a message signed at now, in
// nanoseconds since the Unix epoch.
func Expiry(now time.Time) uint64 {
	return uint64(now.Add(ExpiryWindow).UnixNano())
}

// Nonce draws a fresh nonce from the system's cryptographic random source.
// If the source fails there is no fallback: signing must stop.
func Nonce() ([]byte, error) {
	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, wrapError(KindCrypto, "GLC-NONCE-001", "cryptographic random source unavailable", err)
	}
	return nonce, nil
}

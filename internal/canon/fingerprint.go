package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep fingerprints of different payload families apart.
const (
	DomainObject = "storesync/object/v1"
	DomainDump   = "storesync/dump/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the canonical payload of v together with its
// domain-separated SHA-256 digest.
func Fingerprint(domain string, v any) (payload []byte, sum string, err error) {
	payload, err = Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("fingerprint: %w", err)
	}
	return payload, hashWithDomain(domain, payload), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when v is known to be encodable.
func MustFingerprint(domain string, v any) string {
	_, sum, err := Fingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return sum
}

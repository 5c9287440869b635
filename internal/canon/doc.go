// Package canon produces canonical JSON and content fingerprints for
// persisted cache payloads.
//
// The storage layer fingerprints every object it writes. Two payloads
// with the same fingerprint are treated as the same content, which is
// what lets a save that changes nothing skip the write and suppress the
// change notification.
//
// Canonical form follows RFC 8785 for the value space the cache uses:
//   - Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//   - No HTML escaping
//   - Strings NFC normalized
//   - Integers only; fractional numbers are rejected
//
// Money never reaches this package as a number: decimal amounts encode as
// JSON strings, so the float restriction holds for every payload.
package canon

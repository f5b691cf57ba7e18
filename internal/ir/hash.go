package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainGuide = "craftforge/guide/v1"
	DomainItem  = "craftforge/item/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed hash of v under domain.
// The hash is stable for equal content regardless of key order.
func Fingerprint(domain string, v Value) (string, error) {
	canonical, err := marshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(domain string, v Value) string {
	fp, err := Fingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return fp
}

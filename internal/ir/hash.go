package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a later algorithm migration.
const (
	DomainConfig   = "dslashgen/config/v1"
	DomainArtifact = "dslashgen/artifact/v1"
	DomainManifest = "dslashgen/manifest/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ConfigFingerprint identifies a generator configuration. Two
// configurations with equal fingerprints produce identical text.
func ConfigFingerprint(cfg Object) (string, error) {
	canonical, err := MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("ConfigFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// ContentHash identifies the emitted text of one artifact.
func ContentHash(text []byte) string {
	return hashWithDomain(DomainArtifact, text)
}

// ManifestHash identifies a whole manifest.
func ManifestHash(manifest Object) (string, error) {
	canonical, err := MarshalCanonical(manifest)
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

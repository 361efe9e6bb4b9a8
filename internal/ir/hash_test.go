package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wilsonConfig() Object {
	return Object{
		"kind":          Str("dslash"),
		"dagger":        Bool(false),
		"clover":        Bool(true),
		"twisted":       Bool(false),
		"twist_sign":    Int(1),
		"shared_floats": Int(8),
	}
}

func TestConfigFingerprintDeterminism(t *testing.T) {
	fp1, err := ConfigFingerprint(wilsonConfig())
	require.NoError(t, err)
	fp2, err := ConfigFingerprint(wilsonConfig())
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2, "fingerprint must be deterministic")
	assert.Len(t, fp1, 64, "SHA-256 hex is 64 characters")
}

func TestConfigFingerprintChangesWithInput(t *testing.T) {
	fingerprint := func(cfg Object) string {
		t.Helper()
		fp, err := ConfigFingerprint(cfg)
		require.NoError(t, err)
		return fp
	}
	base := fingerprint(wilsonConfig())

	dagger := wilsonConfig()
	dagger["dagger"] = Bool(true)
	shared := wilsonConfig()
	shared["shared_floats"] = Int(0)

	assert.NotEqual(t, base, fingerprint(dagger))
	assert.NotEqual(t, base, fingerprint(shared))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainConfig, data), hashWithDomain(DomainArtifact, data))
	assert.Equal(t, hashWithDomain(DomainArtifact, data), ContentHash(data))

	// the separator keeps domain and data from running together
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestManifestHash(t *testing.T) {
	m := Object{
		"version":   Str(ManifestVersion),
		"artifacts": List{Object{"name": Str("wilson_dslash")}},
	}
	h1, err := ManifestHash(m)
	require.NoError(t, err)
	h2, err := ManifestHash(m)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = ManifestHash(Object{"bad": nil})
	require.Error(t, err)
}

func TestConfigFingerprintRejectsNil(t *testing.T) {
	_, err := ConfigFingerprint(Object{"x": nil})
	require.Error(t, err)
}

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultFiles = []string{
	"dslash_core/wilson_dslash_core.h",
	"dslash_core/wilson_dslash_dagger_core.h",
	"dslash_core/tm_dslash_core.h",
	"dslash_core/tm_dslash_dagger_core.h",
	"dslash_core/wilson_pack_face_core.h",
	"dslash_core/wilson_pack_face_dagger_core.h",
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestGenerateWritesDefaultSet(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "generate", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated 6 artifact(s)")
	assert.Contains(t, out, "wilson_pack_face_dagger")

	for _, f := range defaultFiles {
		info, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, f)
		assert.Positive(t, info.Size(), f)
	}
}

func TestGenerateJSONWithLedgerAndManifest(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")
	manifest := filepath.Join(dir, "manifest.json")

	out, _, err := execute(t, "generate", "--out", dir, "--db", db, "--manifest", manifest, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["run_id"], 36)
	assert.Equal(t, float64(1), data["seq"])
	assert.Len(t, data["results"], 6)
	assert.Len(t, data["manifest_hash"], 64)

	raw, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, data["run_id"], m["run_id"])
	assert.Len(t, m["artifacts"], 6)
}

func TestGenerateIsReproducible(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	_, _, err := execute(t, "generate", "--out", a)
	require.NoError(t, err)
	_, _, err = execute(t, "generate", "--out", b, "--concurrency", "1")
	require.NoError(t, err)

	for _, f := range defaultFiles {
		x, err := os.ReadFile(filepath.Join(a, f))
		require.NoError(t, err)
		y, err := os.ReadFile(filepath.Join(b, f))
		require.NoError(t, err)
		assert.Equal(t, x, y, f)
	}
}

func TestGenerateUserVariants(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "variants.cue")
	require.NoError(t, os.WriteFile(src, []byte(`
variant: {
	clover_only: {
		file:          "out/clover.h"
		clover:        true
		shared_floats: 12
	}
}
`), 0o644))

	out, _, err := execute(t, "generate", "--variants", src, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated 1 artifact(s)")
	_, err = os.Stat(filepath.Join(dir, "out", "clover.h"))
	assert.NoError(t, err)
}

func TestGenerateInvalidVariants(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "variants.cue")
	require.NoError(t, os.WriteFile(src, []byte(`
variant: {
	bad: {
		file:    "bad.h"
		clover:  true
		twisted: true
	}
}
`), 0o644))

	out, _, err := execute(t, "generate", "--variants", src, "--out", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeVariants, resp.Error.Code)
	_, statErr := os.Stat(filepath.Join(dir, "bad.h"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateOutOfRangeVariant(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "variants.cue")
	require.NoError(t, os.WriteFile(src, []byte(`variant: a: {file: "a.h", shared_floats: 30}`), 0o644))

	out, _, err := execute(t, "generate", "--variants", src, "--out", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeVariants, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "shared_floats")
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cue", details["field"])
}

func TestGenerateMissingVariantsFile(t *testing.T) {
	out, _, err := execute(t, "generate", "--variants", filepath.Join(t.TempDir(), "nope.cue"), "--format", "json")
	require.Error(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCleanTree(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")
	_, _, err := execute(t, "generate", "--out", dir, "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "verify", "--out", dir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Verify Summary: 6 ok, 0 failed, 6 total")
	assert.Contains(t, out, "✓ All artifacts verified")
}

func TestVerifyDetectsDrift(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "generate", "--out", dir)
	require.NoError(t, err)

	edited := filepath.Join(dir, "dslash_core", "tm_dslash_core.h")
	require.NoError(t, os.WriteFile(edited, []byte("// hand edit\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "dslash_core", "wilson_pack_face_core.h")))

	out, _, err := execute(t, "verify", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ tm_dslash")
	assert.Contains(t, out, "differs")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "4 ok, 2 failed")
}

func TestVerifyJSONFailure(t *testing.T) {
	out, _, err := execute(t, "verify", "--out", t.TempDir(), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeVerifyFailed, resp.Error.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(6), data["failed"])
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/dslashgen/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestArtifact creates an artifact with minimal required fields.
func createTestArtifact(name string) Artifact {
	return Artifact{
		Name: name,
		File: "dslash_core/" + name + ".h",
		Config: ir.Object{
			"kind":          ir.Str("dslash"),
			"dagger":        ir.Bool(false),
			"shared_floats": ir.Int(8),
		},
		Fingerprint: "fp-" + name,
		ContentHash: "ch-" + name,
		Bytes:       1024,
	}
}

// createTestRun creates a run holding the named artifacts.
func createTestRun(id string, names ...string) Run {
	run := Run{ID: id, GeneratorVersion: "0.1.0", Source: "embedded", OutDir: "out"}
	for _, n := range names {
		run.Artifacts = append(run.Artifacts, createTestArtifact(n))
	}
	return run
}

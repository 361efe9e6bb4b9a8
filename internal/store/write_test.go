package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/dslashgen/internal/ir"
)

func TestRecordRun_AssignsSequentialSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		seq, err := s.RecordRun(ctx, createTestRun(id, "wilson_dslash"))
		if err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", id, err)
		}
		if seq != int64(i+1) {
			t.Errorf("RecordRun(%s) seq = %d, want %d", id, seq, i+1)
		}
	}

	last, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if last != 3 {
		t.Errorf("LastSeq() = %d, want 3", last)
	}
}

func TestRecordRun_IgnoresCallerSeq(t *testing.T) {
	s := createTestStore(t)

	run := createTestRun("run-1")
	run.Seq = 42
	seq, err := s.RecordRun(context.Background(), run)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
}

func TestRecordRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordRun(ctx, createTestRun("run-1", "a")); err != nil {
		t.Fatalf("first RecordRun() failed: %v", err)
	}
	_, err := s.RecordRun(ctx, createTestRun("run-1", "b"))
	if !errors.Is(err, ErrDuplicateRun) {
		t.Fatalf("second RecordRun() = %v, want ErrDuplicateRun", err)
	}

	run, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if len(run.Artifacts) != 1 || run.Artifacts[0].Name != "a" {
		t.Errorf("artifacts = %+v, want only a", run.Artifacts)
	}
}

func TestRecordRun_AtomicOnArtifactFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", "a")
	run.Artifacts = append(run.Artifacts, run.Artifacts[0]) // duplicate (run_id, name)
	if _, err := s.RecordRun(ctx, run); err == nil {
		t.Fatal("RecordRun() with duplicate artifact succeeded")
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns() = %d runs after rollback, want 0", len(runs))
	}
}

func TestRecordRun_StoresCanonicalConfig(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.Artifacts = []Artifact{{
		Name:   "tm_dslash",
		File:   "dslash_core/tm_dslash_core.h",
		Config: ir.Object{"twisted": ir.Bool(true), "kind": ir.Str("dslash"), "twist_sign": ir.Int(-1)},
	}}
	if _, err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	var cfg string
	if err := s.db.QueryRow(`SELECT config FROM artifacts WHERE name = 'tm_dslash'`).Scan(&cfg); err != nil {
		t.Fatalf("query config: %v", err)
	}
	want := `{"kind":"dslash","twist_sign":-1,"twisted":true}`
	if cfg != want {
		t.Errorf("config = %s, want %s", cfg, want)
	}
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/dslashgen/internal/ir"
)

// Run is one generate invocation and the artifacts it produced.
type Run struct {
	// ID is the run identifier (UUIDv7 in production).
	ID string

	// Seq is the logical position of the run in the ledger. It is assigned
	// by RecordRun; any value set by the caller is ignored.
	Seq int64

	GeneratorVersion string

	// Source names the variant set the run was driven by.
	Source string

	OutDir    string
	Artifacts []Artifact
}

// Artifact is one emitted file.
type Artifact struct {
	// RunID is filled in when reading; RecordRun uses the enclosing run.
	RunID string

	Name string
	File string

	// Config is the artifact's configuration; it is stored as canonical
	// JSON.
	Config ir.Object

	Fingerprint string
	ContentHash string
	Bytes       int64
}

// ErrDuplicateRun is returned when a run id is already recorded.
var ErrDuplicateRun = errors.New("run already recorded")

// RecordRun appends run and its artifacts in one transaction and returns
// the assigned seq. Recording the same run id twice fails with
// ErrDuplicateRun and leaves the ledger unchanged.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	if exists > 0 {
		return 0, fmt.Errorf("record run %s: %w", run.ID, ErrDuplicateRun)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, generator_version, source, out_dir)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, seq, run.GeneratorVersion, run.Source, run.OutDir)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}

	for _, a := range run.Artifacts {
		cfg, err := marshalConfig(a.Config)
		if err != nil {
			return 0, fmt.Errorf("record artifact %s: %w", a.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO artifacts (run_id, name, file, config, fingerprint, content_hash, bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, a.Name, a.File, cfg, a.Fingerprint, a.ContentHash, a.Bytes)
		if err != nil {
			return 0, fmt.Errorf("record artifact %s: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record run: commit: %w", err)
	}
	return seq, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ListRuns returns every run without artifacts, oldest first.
//
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, generator_version, source, out_dir
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.GeneratorVersion, &r.Source, &r.OutDir); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run with its artifacts ordered by name.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, generator_version, source, out_dir
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.GeneratorVersion, &r.Source, &r.OutDir)
	if err != nil {
		return Run{}, err
	}

	r.Artifacts, err = s.readArtifacts(ctx, `WHERE run_id = ? ORDER BY name COLLATE BINARY ASC`, id)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// LatestRun returns the run with the highest seq.
// Returns sql.ErrNoRows if the ledger is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if err != nil {
		return Run{}, err
	}
	return s.ReadRun(ctx, id)
}

// ArtifactHistory returns every recorded version of one artifact,
// oldest run first.
func (s *Store) ArtifactHistory(ctx context.Context, name string) ([]Artifact, error) {
	return s.readArtifacts(ctx, `
		JOIN runs ON runs.id = artifacts.run_id
		WHERE artifacts.name = ?
		ORDER BY runs.seq ASC
	`, name)
}

// LastSeq returns the highest run seq, or 0 for an empty ledger.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

func (s *Store) readArtifacts(ctx context.Context, clause string, args ...any) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artifacts.run_id, artifacts.name, artifacts.file, artifacts.config,
		       artifacts.fingerprint, artifacts.content_hash, artifacts.bytes
		FROM artifacts
	`+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

func scanArtifact(rows *sql.Rows) (Artifact, error) {
	var a Artifact
	var cfg string
	if err := rows.Scan(&a.RunID, &a.Name, &a.File, &cfg, &a.Fingerprint, &a.ContentHash, &a.Bytes); err != nil {
		return Artifact{}, fmt.Errorf("scan artifact: %w", err)
	}
	obj, err := unmarshalConfig(cfg)
	if err != nil {
		return Artifact{}, fmt.Errorf("artifact %s: %w", a.Name, err)
	}
	a.Config = obj
	return a, nil
}

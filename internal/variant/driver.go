package variant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/dslashgen/internal/gen"
	"github.com/roach88/dslashgen/internal/ir"
	"github.com/roach88/dslashgen/internal/store"
)

// Recorder persists a completed run. *store.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run store.Run) (int64, error)
}

// Options configures Run.
type Options struct {
	// OutDir is the directory variant files are written under.
	OutDir string

	// Concurrency bounds parallel generation. Zero means GOMAXPROCS.
	Concurrency int

	// Ledger, when set, records the run after every artifact is written.
	Ledger Recorder

	// IDs generates the run id. Defaults to UUIDv7Generator.
	IDs IDGenerator

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result describes one written artifact.
type Result struct {
	Name        string     `json:"name"`
	File        string     `json:"file"`
	Path        string     `json:"path"`
	Config      gen.Config `json:"-"`
	Fingerprint string     `json:"fingerprint"`
	ContentHash string     `json:"content_hash"`
	Bytes       int        `json:"bytes"`
}

// Report is the outcome of Run. Results follow the set's order.
type Report struct {
	RunID   string   `json:"run_id"`
	Seq     int64    `json:"seq,omitempty"`
	Source  string   `json:"source"`
	OutDir  string   `json:"out_dir"`
	Results []Result `json:"results"`
}

// Render generates the text of one variant without writing it.
func Render(v Variant) ([]byte, error) {
	text, err := gen.Generate(v.Config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.Name, err)
	}
	return text, nil
}

// Run generates every variant of set concurrently. Each artifact is fully
// rendered before its file is replaced, so a failure never leaves a
// partial file behind. The first failure cancels variants that have not
// started yet; files already written stay in place.
func Run(ctx context.Context, set *Set, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	report := &Report{
		RunID:   ids.Generate(),
		Source:  set.Source,
		OutDir:  opts.OutDir,
		Results: make([]Result, len(set.Variants)),
	}
	logger.Info("generation started", "run", report.RunID, "source", set.Source, "artifacts", len(set.Variants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, v := range set.Variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := produce(v, opts.OutDir)
			if err != nil {
				logger.Error("generation failed", "artifact", v.Name, "error", err)
				return err
			}
			logger.Debug("artifact written",
				"artifact", res.Name,
				"file", res.Path,
				"bytes", res.Bytes,
				"hash", res.ContentHash,
			)
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Ledger != nil {
		seq, err := opts.Ledger.RecordRun(ctx, ledgerRun(report))
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		report.Seq = seq
	}

	logger.Info("generation finished", "run", report.RunID, "artifacts", len(report.Results))
	return report, nil
}

func produce(v Variant, outDir string) (Result, error) {
	text, err := Render(v)
	if err != nil {
		return Result{}, err
	}
	fp, err := v.Config.Fingerprint()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", v.Name, err)
	}
	path := filepath.Join(outDir, filepath.FromSlash(v.File))
	if err := writeAtomic(path, text); err != nil {
		return Result{}, fmt.Errorf("%s: %w", v.Name, err)
	}
	return Result{
		Name:        v.Name,
		File:        v.File,
		Path:        path,
		Config:      v.Config,
		Fingerprint: fp,
		ContentHash: ir.ContentHash(text),
		Bytes:       len(text),
	}, nil
}

func ledgerRun(r *Report) store.Run {
	run := store.Run{
		ID:               r.RunID,
		GeneratorVersion: ir.GeneratorVersion,
		Source:           r.Source,
		OutDir:           r.OutDir,
	}
	for _, res := range r.Results {
		run.Artifacts = append(run.Artifacts, store.Artifact{
			Name:        res.Name,
			File:        res.File,
			Config:      res.Config.Value(),
			Fingerprint: res.Fingerprint,
			ContentHash: res.ContentHash,
			Bytes:       int64(res.Bytes),
		})
	}
	return run
}

// writeAtomic replaces path with data through a temporary file in the
// same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

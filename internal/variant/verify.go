package variant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/dslashgen/internal/ir"
	"github.com/roach88/dslashgen/internal/store"
)

// History reads the latest recorded run. *store.Store implements it.
type History interface {
	LatestRun(ctx context.Context) (store.Run, error)
}

// Status is the outcome of verifying one artifact.
type Status string

const (
	// StatusOK means the file on disk matches a fresh generation.
	StatusOK Status = "ok"

	// StatusMissing means the file does not exist.
	StatusMissing Status = "missing"

	// StatusDiffers means the file on disk differs from a fresh generation.
	StatusDiffers Status = "differs"

	// StatusNondeterministic means the ledger recorded the same
	// fingerprint with a different content hash.
	StatusNondeterministic Status = "nondeterministic"
)

// Check is the verification result of one variant.
type Check struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Status   Status `json:"status"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
}

// Verify regenerates every variant in memory and compares it with the
// files under outDir and, when history is set, with the latest ledger run.
func Verify(ctx context.Context, set *Set, outDir string, history History) ([]Check, error) {
	var recorded map[string]store.Artifact
	if history != nil {
		run, err := history.LatestRun(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("read ledger: %w", err)
		default:
			recorded = make(map[string]store.Artifact, len(run.Artifacts))
			for _, a := range run.Artifacts {
				recorded[a.Name] = a
			}
		}
	}

	checks := make([]Check, 0, len(set.Variants))
	for _, v := range set.Variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := Render(v)
		if err != nil {
			return nil, err
		}
		fp, err := v.Config.Fingerprint()
		if err != nil {
			return nil, err
		}
		c := Check{Name: v.Name, File: v.File, Expected: ir.ContentHash(text), Status: StatusOK}

		if a, ok := recorded[v.Name]; ok && a.Fingerprint == fp && a.ContentHash != c.Expected {
			c.Status = StatusNondeterministic
			c.Actual = a.ContentHash
			checks = append(checks, c)
			continue
		}

		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(v.File)))
		switch {
		case errors.Is(err, os.ErrNotExist):
			c.Status = StatusMissing
		case err != nil:
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		default:
			c.Actual = ir.ContentHash(data)
			if c.Actual != c.Expected {
				c.Status = StatusDiffers
			}
		}
		checks = append(checks, c)
	}
	return checks, nil
}

// AllOK reports whether every check passed.
func AllOK(checks []Check) bool {
	for _, c := range checks {
		if c.Status != StatusOK {
			return false
		}
	}
	return true
}

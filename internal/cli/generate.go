package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/dslashgen/internal/variant"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Variants    string // CUE variant file; empty means the embedded set
	Out         string // output directory
	Manifest    string // manifest path; empty means none
	Database    string // ledger path; empty means none
	Concurrency int

	// IDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs variant.IDGenerator
}

// GenerateResult is the payload of a successful generate.
type GenerateResult struct {
	*variant.Report
	Manifest     string `json:"manifest,omitempty"`
	ManifestHash string `json:"manifest_hash,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every kernel artifact",
		Long: `Generate every artifact of the variant set under the output directory.

Each file is fully rendered before it replaces the previous version, so an
interrupted run never leaves a truncated header behind. With --db the run
and the hash of every artifact are recorded in a SQLite ledger.

Example:
  dslashgen generate --out .
  dslashgen generate --variants ./variants.cue --out build --db ./ledger.db
  dslashgen generate --manifest dslash_core/manifest.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variants, "variants", "", "CUE variant file (default: embedded set)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "write a canonical JSON manifest to this path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (optional)")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "parallel artifacts (default: GOMAXPROCS)")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set, err := LoadVariants(opts.Variants)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Loaded %d variant(s) from %s", len(set.Variants), set.Source)

	st, err := openLedger(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	runOpts := variant.Options{
		OutDir:      opts.Out,
		Concurrency: opts.Concurrency,
		IDs:         opts.IDs,
		Logger:      slog.Default(),
	}
	if st != nil {
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing ledger", "error", closeErr)
			}
		}()
		runOpts.Ledger = st
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	report, err := variant.Run(ctx, set, runOpts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGenerate, "generation failed", err)
	}

	result := GenerateResult{Report: report}
	if opts.Manifest != "" {
		hash, err := variant.WriteManifest(opts.Manifest, report)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "writing manifest", err)
		}
		result.Manifest = opts.Manifest
		result.ManifestHash = hash
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	printGenerate(formatter, result)
	return nil
}

func printGenerate(f *OutputFormatter, r GenerateResult) {
	w := f.Writer
	fmt.Fprintf(w, "✓ Generated %d artifact(s) in %s\n", len(r.Results), r.OutDir)
	fmt.Fprintf(w, "  run %s", r.RunID)
	if r.Seq > 0 {
		fmt.Fprintf(w, " (ledger seq %d)", r.Seq)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
	for _, res := range r.Results {
		fmt.Fprintf(w, "  %-26s %-44s %7d bytes  %s\n", res.Name, res.File, res.Bytes, shortHash(res.ContentHash))
	}
	if r.Manifest != "" {
		fmt.Fprintf(w, "\nWrote manifest to %s (%s)\n", r.Manifest, shortHash(r.ManifestHash))
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// signalContext derives a context from the command that is cancelled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, func()) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

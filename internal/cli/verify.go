package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/dslashgen/internal/variant"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Variants string
	Out      string
	Database string
}

// VerifyResult is the payload of verify.
type VerifyResult struct {
	Checks []variant.Check `json:"checks"`
	OK     int             `json:"ok"`
	Failed int             `json:"failed"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check generated files against a fresh generation",
		Long: `Regenerate every variant in memory and compare it with the files under
the output directory. With --db the latest ledger run is checked too: an
artifact whose configuration fingerprint is unchanged but whose recorded
hash differs is reported as nondeterministic.

Exit codes:
  0 - Every artifact matches
  1 - One or more artifacts are missing, differ or are nondeterministic
  2 - Command error (invalid variant set, unreadable ledger, etc.)

Example:
  dslashgen verify --out .
  dslashgen verify --out build --db ./ledger.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variants, "variants", "", "CUE variant file (default: embedded set)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", ".", "output directory to check")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (optional)")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set, err := LoadVariants(opts.Variants)
	if err != nil {
		return failLoad(formatter, err)
	}

	st, err := openLedger(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	var history variant.History
	if st != nil {
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing ledger", "error", closeErr)
			}
		}()
		history = st
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	checks, err := variant.Verify(ctx, set, opts.Out, history)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGenerate, "verification failed", err)
	}

	result := VerifyResult{Checks: checks}
	for _, c := range checks {
		if c.Status == variant.StatusOK {
			result.OK++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		if result.Failed > 0 {
			msg := fmt.Sprintf("%d artifact(s) failed verification", result.Failed)
			if err := formatter.Failure(ErrCodeVerifyFailed, msg, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, c := range checks {
		mark := "✓"
		if c.Status != variant.StatusOK {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %-26s %-44s %s\n", mark, c.Name, c.File, c.Status)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verify Summary: %d ok, %d failed, %d total\n", result.OK, result.Failed, len(checks))
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d artifact(s) failed verification", result.Failed))
	}
	fmt.Fprintln(w, "✓ All artifacts verified")
	return nil
}

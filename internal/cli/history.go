package cli

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dslashgen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Artifact string // show one artifact's versions instead of runs
}

// RunInfo is one ledger run.
type RunInfo struct {
	Seq              int64  `json:"seq"`
	ID               string `json:"id"`
	GeneratorVersion string `json:"generator_version"`
	Source           string `json:"source"`
	OutDir           string `json:"out_dir"`
}

// ArtifactVersion is one recorded version of an artifact.
type ArtifactVersion struct {
	RunID       string `json:"run_id"`
	File        string `json:"file"`
	Fingerprint string `json:"fingerprint"`
	ContentHash string `json:"content_hash"`
	Bytes       int64  `json:"bytes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs",
		Long: `List the generation runs recorded in a ledger, oldest first. With
--artifact, list every recorded version of one artifact instead.

Example:
  dslashgen history --db ./ledger.db
  dslashgen history --db ./ledger.db --artifact wilson_dslash`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (required)")
	cmd.Flags().StringVar(&opts.Artifact, "artifact", "", "show the versions of one artifact")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing ledger", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if opts.Artifact != "" {
		artifacts, err := st.ArtifactHistory(ctx, opts.Artifact)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeLedger, "reading artifact history", err)
		}
		versions := make([]ArtifactVersion, 0, len(artifacts))
		for _, a := range artifacts {
			versions = append(versions, ArtifactVersion{
				RunID:       a.RunID,
				File:        a.File,
				Fingerprint: a.Fingerprint,
				ContentHash: a.ContentHash,
				Bytes:       a.Bytes,
			})
		}
		if formatter.Format == "json" {
			return formatter.Success(versions)
		}
		if len(versions) == 0 {
			fmt.Fprintf(formatter.Writer, "No versions of %s recorded.\n", opts.Artifact)
			return nil
		}
		tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tFILE\tBYTES\tFINGERPRINT\tHASH")
		for _, v := range versions {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", v.RunID, v.File, v.Bytes, shortHash(v.Fingerprint), shortHash(v.ContentHash))
		}
		return tw.Flush()
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "reading runs", err)
	}
	infos := make([]RunInfo, 0, len(runs))
	for _, r := range runs {
		infos = append(infos, RunInfo{
			Seq:              r.Seq,
			ID:               r.ID,
			GeneratorVersion: r.GeneratorVersion,
			Source:           r.Source,
			OutDir:           r.OutDir,
		})
	}
	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tVERSION\tSOURCE\tOUT")
	for _, r := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Seq, r.ID, r.GeneratorVersion, r.Source, r.OutDir)
	}
	return tw.Flush()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dslashgen/internal/gamma"
)

// ProjectorInfo is one row of the projector table.
type ProjectorInfo struct {
	Index int      `json:"index"`
	Name  string   `json:"name"`
	Rows  []string `json:"rows"`
}

// NewProjectorsCommand creates the projectors command.
func NewProjectorsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projectors",
		Short: "Print the spin projector table",
		Long: `Print the eight spin projectors 1 ± γ_μ used by the direction blocks,
one 4×4 complex matrix per projector.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectors(rootOpts, cmd)
		},
	}
	return cmd
}

func runProjectors(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	table := make([]ProjectorInfo, 0, gamma.NumProjectors)
	for idx := 0; idx < gamma.NumProjectors; idx++ {
		rows, err := gamma.Doc(idx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "projector table", err)
		}
		table = append(table, ProjectorInfo{Index: idx, Name: gamma.Name(idx, idx), Rows: rows})
	}

	if formatter.Format == "json" {
		return formatter.Success(table)
	}

	w := formatter.Writer
	for i, p := range table {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (projector %d)\n", p.Name, p.Index)
		fmt.Fprintln(w, "  "+strings.Join(p.Rows, "\n  "))
	}
	return nil
}

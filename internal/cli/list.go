package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dslashgen/internal/gen"
	"github.com/roach88/dslashgen/internal/variant"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Variants string
}

// VariantInfo describes one entry of the variant set.
type VariantInfo struct {
	Name         string `json:"name"`
	File         string `json:"file"`
	Kind         string `json:"kind"`
	Dagger       bool   `json:"dagger"`
	Physics      string `json:"physics"`
	TwistSign    int    `json:"twist_sign"`
	SharedFloats int    `json:"shared_floats"`
	Fingerprint  string `json:"fingerprint"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the variant set",
		Long: `List every artifact of the variant set with its configuration and
fingerprint.

Example:
  dslashgen list
  dslashgen list --variants ./variants.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variants, "variants", "", "CUE variant file (default: embedded set)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set, err := LoadVariants(opts.Variants)
	if err != nil {
		return failLoad(formatter, err)
	}

	infos := make([]VariantInfo, 0, len(set.Variants))
	for _, v := range set.Variants {
		info, err := describeVariant(v)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "fingerprint "+v.Name, err)
		}
		infos = append(infos, info)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	fmt.Fprintf(formatter.Writer, "Variant set: %s\n\n", set.Source)
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILE\tKIND\tDAGGER\tPHYSICS\tSHARED\tFINGERPRINT")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%d\t%s\n",
			info.Name, info.File, info.Kind, info.Dagger, info.Physics, info.SharedFloats, shortHash(info.Fingerprint))
	}
	return tw.Flush()
}

func describeVariant(v variant.Variant) (VariantInfo, error) {
	fp, err := v.Config.Fingerprint()
	if err != nil {
		return VariantInfo{}, err
	}
	return VariantInfo{
		Name:         v.Name,
		File:         v.File,
		Kind:         string(v.Config.Kind),
		Dagger:       v.Config.Dagger,
		Physics:      physics(v.Config),
		TwistSign:    v.Config.Sign(),
		SharedFloats: v.Config.SharedFloats,
		Fingerprint:  fp,
	}, nil
}

func physics(cfg gen.Config) string {
	switch {
	case cfg.Clover:
		return "clover"
	case cfg.Twisted && cfg.Sign() < 0:
		return "twisted(-)"
	case cfg.Twisted:
		return "twisted"
	}
	return "wilson"
}

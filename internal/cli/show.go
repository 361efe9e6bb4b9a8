package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dslashgen/internal/gen"
	"github.com/roach88/dslashgen/internal/ir"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Variants     string
	Kind         string
	Dagger       bool
	Clover       bool
	Twisted      bool
	TwistSign    int
	SharedFloats int
	Summary      bool // print the structural summary instead of the text
}

// ShowResult is the JSON payload of show.
type ShowResult struct {
	Name        string       `json:"name,omitempty"`
	Config      ir.Object    `json:"config"`
	ContentHash string       `json:"content_hash"`
	Text        string       `json:"text,omitempty"`
	Summary     *gen.Summary `json:"summary,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [variant]",
		Short: "Render one configuration to stdout",
		Long: `Render a single kernel to stdout without writing any file.

With a variant name the configuration comes from the variant set;
otherwise it is built from the flags.

Example:
  dslashgen show wilson_dslash
  dslashgen show --clover --dagger --shared-floats 8
  dslashgen show tm_dslash --summary`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runShow(opts, name, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variants, "variants", "", "CUE variant file (default: embedded set)")
	cmd.Flags().StringVar(&opts.Kind, "kind", string(gen.KindDslash), "artifact kind (dslash|pack)")
	cmd.Flags().BoolVar(&opts.Dagger, "dagger", false, "generate the dagger operator")
	cmd.Flags().BoolVar(&opts.Clover, "clover", false, "apply the clover term")
	cmd.Flags().BoolVar(&opts.Twisted, "twisted", false, "apply the twisted-mass rotation")
	cmd.Flags().IntVar(&opts.TwistSign, "twist-sign", 1, "twisted-mass sign (+1|-1)")
	cmd.Flags().IntVar(&opts.SharedFloats, "shared-floats", 0, "output floats kept in shared storage")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "print the structural summary")

	return cmd
}

func runShow(opts *ShowOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg := gen.Config{
		Kind:         gen.Kind(opts.Kind),
		Dagger:       opts.Dagger,
		Clover:       opts.Clover,
		Twisted:      opts.Twisted,
		TwistSign:    opts.TwistSign,
		SharedFloats: opts.SharedFloats,
	}
	if name != "" {
		set, err := LoadVariants(opts.Variants)
		if err != nil {
			return failLoad(formatter, err)
		}
		v, ok := set.Lookup(name)
		if !ok {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("unknown variant %q", name), nil)
		}
		cfg = v.Config
	}

	k, err := gen.Build(cfg)
	if err != nil {
		if gen.IsConfigError(err) {
			return formatter.Fail(ExitCommandError, ErrCodeVariants, "invalid configuration", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGenerate, "generation failed", err)
	}
	text, err := k.Render()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGenerate, "render failed", err)
	}

	result := ShowResult{Name: name, Config: cfg.Value(), ContentHash: ir.ContentHash(text)}
	if opts.Summary {
		sum := gen.Inspect(k)
		result.Summary = &sum
	} else {
		result.Text = string(text)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Summary != nil {
		data, err := yaml.Marshal(result.Summary)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "encode summary", err)
		}
		_, err = formatter.Writer.Write(data)
		return err
	}
	_, err = formatter.Writer.Write(text)
	return err
}

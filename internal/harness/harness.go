package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dslashgen/internal/gen"
	"github.com/roach88/dslashgen/internal/ir"
	"github.com/roach88/dslashgen/internal/variant"
)

// Harness executes scenarios. The zero value is not usable; call New.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Resolve the configuration (inline or from the embedded artifact set)
// 2. Build the kernel tree and summarize it
// 3. Render the artifact for hashing and the determinism check
// 4. Evaluate assertions against the summary
//
// An error is returned only when the scenario cannot run at all; failed
// assertions are reported in the result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	cfg, err := resolveConfig(scenario)
	if err != nil {
		return nil, err
	}

	k, err := gen.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	text, err := k.Render()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Config = cfg
	result.Summary = gen.Inspect(k)
	result.ContentHash = ir.ContentHash(text)

	actx := &AssertionContext{Config: cfg, Text: text}
	for _, msg := range EvaluateAssertions(result.Summary, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario evaluated",
		"scenario", scenario.Name,
		"assertions", len(scenario.Assertions),
		"failures", len(result.Errors),
		"hash", result.ContentHash,
	)
	return result, nil
}

// RunAll executes scenarios in order. It stops at the first scenario that
// cannot run.
func (h *Harness) RunAll(scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, s := range scenarios {
		r, err := h.Run(s)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func resolveConfig(s *Scenario) (gen.Config, error) {
	if s.Config != nil {
		return s.Config.Config(), nil
	}
	set, err := variant.Default()
	if err != nil {
		return gen.Config{}, err
	}
	v, ok := set.Lookup(s.Variant)
	if !ok {
		return gen.Config{}, fmt.Errorf("scenario %s: unknown variant %q", s.Name, s.Variant)
	}
	return v.Config, nil
}

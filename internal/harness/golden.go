package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dslashgen/internal/gen"
	"github.com/roach88/dslashgen/internal/ir"
)

// Snapshot is the canonical structural shape of a scenario result. Macro
// counts are left out so a new accessor does not churn every snapshot.
func Snapshot(result *Result) ir.Object {
	return ir.Object{
		"scenario_name": ir.Str(result.Name),
		"config":        result.Config.Value(),
		"shape":         shape(result.Summary),
	}
}

func shape(sum gen.Summary) ir.Object {
	directions := ir.List{}
	for _, d := range sum.Directions {
		directions = append(directions, ir.Object{
			"direction":   ir.Int(d.Direction),
			"projector":   ir.Str(d.Projector),
			"load":        ir.Str(d.Load),
			"gauge_loads": ir.Int(d.GaugeLoads),
			"gauge_fixed": ir.Bool(d.GaugeFixed),
			"halo":        ir.Bool(d.Halo),
		})
	}
	faces := ir.List{}
	for _, f := range sum.Faces {
		faces = append(faces, ir.Object{
			"projector": ir.Str(f.Projector),
			"load":      ir.Str(f.Load),
		})
	}
	return ir.Object{
		"title":          ir.Str(sum.Title),
		"shared_outputs": ir.Int(sum.SharedOutputs),
		"local_outputs":  ir.Int(sum.LocalOutputs),
		"directions":     directions,
		"faces":          faces,
		"clover_guard":   ir.Bool(sum.CloverGuard),
		"clover_reads":   ir.Int(sum.CloverReads),
		"twist_rotation": ir.Bool(sum.TwistRotation),
		"xpay":           ir.Bool(sum.Xpay),
		"includes":       strList(sum.Includes),
		"undef_order":    strList(sum.UndefOrder),
		"leaked":         strList(sum.Leaked),
	}
}

func strList(ss []string) ir.List {
	out := make(ir.List, len(ss))
	for i, s := range ss {
		out[i] = ir.Str(s)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, append(data, '\n'))
	return nil
}

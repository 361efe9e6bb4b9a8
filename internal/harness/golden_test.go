package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dslashgen/internal/ir"
)

func TestWilsonCloverGolden(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/wilson_clover.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
}

func TestSnapshotShape(t *testing.T) {
	result, err := Run(&Scenario{Name: "pack", Variant: "wilson_pack_face", Assertions: []Assertion{{Type: AssertNoLeaks}}})
	require.NoError(t, err)

	snap := Snapshot(result)
	assert.Equal(t, ir.Str("pack"), snap["scenario_name"])

	shape, ok := snap["shape"].(ir.Object)
	require.True(t, ok)
	assert.Equal(t, ir.List{}, shape["directions"])
	faces, ok := shape["faces"].(ir.List)
	require.True(t, ok)
	require.Len(t, faces, 8)
	assert.Equal(t, ir.Object{"projector": ir.Str("P0+"), "load": ir.Str("READ_SPINOR")}, faces[0])
	assert.Equal(t, ir.List{}, shape["leaked"])

	// Snapshots are canonical, so they always serialize.
	_, err = ir.MarshalCanonical(snap)
	require.NoError(t, err)
}

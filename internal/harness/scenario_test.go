package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dslashgen/internal/gen"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
config:
  clover: true
  shared_floats: 8
assertions:
  - type: summary
    expect: { shared_outputs: 8 }
  - type: direction
    index: 6
    expect: { projector: P3- }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	require.NotNil(t, scenario.Config)
	assert.Equal(t, gen.Config{Kind: gen.KindDslash, Clover: true, SharedFloats: 8}, scenario.Config.Config())
	require.Len(t, scenario.Assertions, 2)
	assert.Equal(t, 8, scenario.Assertions[0].Expect["shared_outputs"])
	require.NotNil(t, scenario.Assertions[1].Index)
	assert.Equal(t, 6, *scenario.Assertions[1].Index)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nvariant: wilson_dslash\nasertions: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\nvariant: wilson_dslash\nassertions: [{type: no_leaks}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nvariant: wilson_dslash\nassertions: [{type: no_leaks}]\n",
			want: "description is required",
		},
		{
			name: "no config",
			yaml: "name: x\ndescription: d\nassertions: [{type: no_leaks}]\n",
			want: "one of variant or config is required",
		},
		{
			name: "variant and config",
			yaml: "name: x\ndescription: d\nvariant: v\nconfig: {clover: true}\nassertions: [{type: no_leaks}]\n",
			want: "mutually exclusive",
		},
		{
			name: "invalid config",
			yaml: "name: x\ndescription: d\nconfig: {clover: true, twisted: true}\nassertions: [{type: no_leaks}]\n",
			want: "config:",
		},
		{
			name: "no assertions",
			yaml: "name: x\ndescription: d\nvariant: wilson_dslash\n",
			want: "assertions list is required",
		},
		{
			name: "unknown assertion type",
			yaml: "name: x\ndescription: d\nvariant: v\nassertions: [{type: trace_contains}]\n",
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "unknown summary field",
			yaml: "name: x\ndescription: d\nvariant: v\nassertions: [{type: summary, expect: {shared: 8}}]\n",
			want: `unknown field "shared"`,
		},
		{
			name: "direction without index",
			yaml: "name: x\ndescription: d\nvariant: v\nassertions: [{type: direction, expect: {load: READ_SPINOR}}]\n",
			want: "index is required for direction",
		},
		{
			name: "face field on direction",
			yaml: "name: x\ndescription: d\nvariant: v\nassertions: [{type: direction, index: 0, expect: {writes: 1}}]\n",
			want: `unknown field "writes"`,
		},
		{
			name: "count of unknown list",
			yaml: "name: x\ndescription: d\nvariant: v\nassertions: [{type: count, of: macros, count: 1}]\n",
			want: "of must be one of",
		},
		{
			name: "sequence of unknown list",
			yaml: "name: x\ndescription: d\nvariant: v\nassertions: [{type: sequence, of: directions}]\n",
			want: "of must be one of",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b.yaml", "name: b\ndescription: d\nvariant: tm_dslash\nassertions: [{type: no_leaks}]\n")
	writeScenario(t, dir, "a.yml", "name: a\ndescription: d\nvariant: wilson_dslash\nassertions: [{type: no_leaks}]\n")
	writeScenario(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestLoadDir_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "name: same\ndescription: d\nvariant: tm_dslash\nassertions: [{type: no_leaks}]\n")
	writeScenario(t, dir, "b.yaml", "name: same\ndescription: d\nvariant: tm_dslash\nassertions: [{type: no_leaks}]\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "same" already defined`)
}

func TestLoadDir_BundledScenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	assert.Len(t, scenarios, 4)
}

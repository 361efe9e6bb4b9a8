package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dslashgen/internal/gen"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Variant names an entry of the embedded artifact set.
	// Exactly one of Variant and Config is set.
	Variant string `yaml:"variant,omitempty"`

	// Config spells out the configuration directly.
	Config *ConfigSpec `yaml:"config,omitempty"`

	// Assertions validate the generated kernel.
	Assertions []Assertion `yaml:"assertions"`
}

// ConfigSpec is the YAML form of gen.Config. Omitted fields take the
// same defaults as the artifact set schema.
type ConfigSpec struct {
	Kind         string `yaml:"kind,omitempty"`
	Dagger       bool   `yaml:"dagger,omitempty"`
	Clover       bool   `yaml:"clover,omitempty"`
	Twisted      bool   `yaml:"twisted,omitempty"`
	TwistSign    int    `yaml:"twist_sign,omitempty"`
	SharedFloats int    `yaml:"shared_floats,omitempty"`
}

// Config converts the inline configuration to a generator configuration.
func (c ConfigSpec) Config() gen.Config {
	kind := gen.Kind(c.Kind)
	if kind == "" {
		kind = gen.KindDslash
	}
	return gen.Config{
		Kind:         kind,
		Dagger:       c.Dagger,
		Clover:       c.Clover,
		Twisted:      c.Twisted,
		TwistSign:    c.TwistSign,
		SharedFloats: c.SharedFloats,
	}
}

// Assertion validates the structural summary of a kernel.
type Assertion struct {
	// Type specifies the assertion type:
	// - "summary": subset match of Expect against the summary
	// - "direction": subset match of Expect against Directions[Index]
	// - "face": subset match of Expect against Faces[Index]
	// - "count": len of the list named by Of equals Count
	// - "sequence": the list named by Of equals Values
	// - "no_leaks": no macro stays defined
	// - "deterministic": repeated generation is byte-identical
	Type string `yaml:"type"`

	// Expect holds expected field values (summary, direction, face).
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Index selects a direction or face.
	Index *int `yaml:"index,omitempty"`

	// Of names a summary list (count, sequence).
	Of string `yaml:"of,omitempty"`

	// Count is the expected list length (count).
	Count int `yaml:"count,omitempty"`

	// Values is the expected list content (sequence).
	Values []string `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertSummary       = "summary"
	AssertDirection     = "direction"
	AssertFace          = "face"
	AssertCount         = "count"
	AssertSequence      = "sequence"
	AssertNoLeaks       = "no_leaks"
	AssertDeterministic = "deterministic"
)

// countable lists the summary lists "count" accepts.
var countable = []string{"directions", "faces", "includes", "leaked", "undef_order"}

// sequences lists the summary lists "sequence" accepts.
var sequences = []string{"includes", "undef_order", "leaked", "projectors", "loads"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, ordered by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := ScenarioFiles(dir)
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	names := map[string]string{}
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario %q already defined in %s", p, s.Name, prev)
		}
		names[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ScenarioFiles lists the scenario files in dir, sorted.
func ScenarioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Variant == "" && s.Config == nil:
		return fmt.Errorf("one of variant or config is required")
	case s.Variant != "" && s.Config != nil:
		return fmt.Errorf("variant and config are mutually exclusive")
	case s.Config != nil:
		if err := s.Config.Config().Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSummary:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for summary", index)
		}
		if err := knownKeys(a.Expect, summaryFields); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertDirection, AssertFace:
		if a.Index == nil {
			return fmt.Errorf("assertions[%d]: index is required for %s", index, a.Type)
		}
		if *a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
		fields := directionFields
		if a.Type == AssertFace {
			fields = faceFields
		}
		if err := knownKeys(a.Expect, fields); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertCount:
		if !slices.Contains(countable, a.Of) {
			return fmt.Errorf("assertions[%d]: of must be one of %s for count", index, strings.Join(countable, ", "))
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertSequence:
		if !slices.Contains(sequences, a.Of) {
			return fmt.Errorf("assertions[%d]: of must be one of %s for sequence", index, strings.Join(sequences, ", "))
		}
	case AssertNoLeaks, AssertDeterministic:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func knownKeys(expect map[string]interface{}, fields []string) error {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !slices.Contains(fields, k) {
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

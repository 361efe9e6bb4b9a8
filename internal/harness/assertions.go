package harness

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dslashgen/internal/gen"
)

// Field names accepted in expect maps, read from the yaml tags of the
// summary types.
var (
	summaryFields   = yamlFields(reflect.TypeFor[gen.Summary]())
	directionFields = yamlFields(reflect.TypeFor[gen.DirectionInfo]())
	faceFields      = yamlFields(reflect.TypeFor[gen.FaceInfo]())
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext carries what assertions need beyond the summary.
type AssertionContext struct {
	// Config is the configuration under test.
	Config gen.Config

	// Text is the rendered artifact.
	Text []byte
}

// EvaluateAssertions evaluates every assertion against sum and returns
// the failure messages in assertion order.
func EvaluateAssertions(sum gen.Summary, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(sum, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(sum gen.Summary, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertSummary:
		return assertFields(AssertSummary, sum, a.Expect)
	case AssertDirection:
		if *a.Index >= len(sum.Directions) {
			return &AssertionError{
				Type:     AssertDirection,
				Expected: fmt.Sprintf("direction %d", *a.Index),
				Actual:   fmt.Sprintf("%d directions", len(sum.Directions)),
			}
		}
		return assertFields(fmt.Sprintf("direction %d", *a.Index), sum.Directions[*a.Index], a.Expect)
	case AssertFace:
		if *a.Index >= len(sum.Faces) {
			return &AssertionError{
				Type:     AssertFace,
				Expected: fmt.Sprintf("face %d", *a.Index),
				Actual:   fmt.Sprintf("%d faces", len(sum.Faces)),
			}
		}
		return assertFields(fmt.Sprintf("face %d", *a.Index), sum.Faces[*a.Index], a.Expect)
	case AssertCount:
		return assertCount(sum, a)
	case AssertSequence:
		return assertSequence(sum, a)
	case AssertNoLeaks:
		if len(sum.Leaked) > 0 {
			return &AssertionError{
				Type:     AssertNoLeaks,
				Expected: "every defined macro undefined",
				Actual:   "still defined: " + strings.Join(sum.Leaked, ", "),
			}
		}
		return nil
	case AssertDeterministic:
		return assertDeterministic(actx)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertFields performs a subset match of expect against the yaml form
// of actual.
func assertFields(label string, actual any, expect map[string]interface{}) error {
	fields, err := toMap(actual)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var mismatches []string
	for _, k := range keys {
		if !valuesEqual(expect[k], fields[k]) {
			mismatches = append(mismatches, fmt.Sprintf("%s=%v (want %v)", k, fields[k], expect[k]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     label,
			Expected: formatMap(expect, keys),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}

func assertCount(sum gen.Summary, a Assertion) error {
	var n int
	switch a.Of {
	case "directions":
		n = len(sum.Directions)
	case "faces":
		n = len(sum.Faces)
	case "includes":
		n = len(sum.Includes)
	case "leaked":
		n = len(sum.Leaked)
	case "undef_order":
		n = len(sum.UndefOrder)
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d %s", a.Count, a.Of),
			Actual:   fmt.Sprintf("%d %s", n, a.Of),
		}
	}
	return nil
}

func assertSequence(sum gen.Summary, a Assertion) error {
	got := sequence(sum, a.Of)
	want := a.Values
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertSequence,
			Expected: fmt.Sprintf("%s [%s]", a.Of, strings.Join(want, ", ")),
			Actual:   fmt.Sprintf("%s [%s]", a.Of, strings.Join(got, ", ")),
		}
	}
	return nil
}

// sequence returns the ordered summary list named by of. Projectors and
// loads come from the direction blocks, or from the faces of a pack
// kernel.
func sequence(sum gen.Summary, of string) []string {
	out := []string{}
	switch of {
	case "includes":
		out = append(out, sum.Includes...)
	case "undef_order":
		out = append(out, sum.UndefOrder...)
	case "leaked":
		out = append(out, sum.Leaked...)
	case "projectors", "loads":
		for _, d := range sum.Directions {
			if of == "projectors" {
				out = append(out, d.Projector)
			} else {
				out = append(out, d.Load)
			}
		}
		for _, f := range sum.Faces {
			if of == "projectors" {
				out = append(out, f.Projector)
			} else {
				out = append(out, f.Load)
			}
		}
	}
	return out
}

func assertDeterministic(actx *AssertionContext) error {
	again, err := gen.Generate(actx.Config)
	if err != nil {
		return err
	}
	if !bytes.Equal(actx.Text, again) {
		return &AssertionError{
			Type:     AssertDeterministic,
			Expected: fmt.Sprintf("%d identical bytes", len(actx.Text)),
			Actual:   fmt.Sprintf("second generation differs (%d bytes)", len(again)),
		}
	}
	return nil
}

// toMap converts a summary value to the generic form YAML decodes
// expect maps into, so both sides compare with the same types.
func toMap(v any) (map[string]interface{}, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return out, nil
}

// valuesEqual compares decoded YAML values. An omitted list equals an
// empty one.
func valuesEqual(expected, actual interface{}) bool {
	if isEmpty(expected) && isEmpty(actual) {
		return true
	}
	return reflect.DeepEqual(expected, actual)
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if l, ok := v.([]interface{}); ok {
		return len(l) == 0
	}
	return false
}

func formatMap(m map[string]interface{}, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, ", ")
}

func yamlFields(t reflect.Type) []string {
	var fields []string
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("yaml")
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			fields = append(fields, name)
		}
	}
	return fields
}

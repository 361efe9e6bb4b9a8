// Package variant declares which kernel artifacts exist and drives their
// generation.
//
// The artifact set is written in CUE and validated against an embedded
// schema. Each entry resolves to a file name and a gen.Config; Run
// generates every entry concurrently and writes each file atomically.
package variant

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dslashgen/internal/gen"
)

//go:embed schema.cue
var schemaSrc []byte

//go:embed variants.cue
var defaultSrc []byte

// DefaultSource is the Source of the embedded artifact set.
const DefaultSource = "embedded"

// Variant is one artifact to generate.
type Variant struct {
	Name   string
	File   string
	Config gen.Config
	Pos    token.Pos
}

// Set is a validated, ordered artifact set.
type Set struct {
	// Source names where the set came from: DefaultSource or a file path.
	Source   string
	Variants []Variant
}

// Lookup returns the variant with the given name.
func (s *Set) Lookup(name string) (Variant, bool) {
	for _, v := range s.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Names returns the variant names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.Variants))
	for i, v := range s.Variants {
		names[i] = v.Name
	}
	return names
}

// CompileError reports an invalid artifact set.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the embedded artifact set.
func Default() (*Set, error) {
	return Parse(DefaultSource, defaultSrc)
}

// LoadFile reads and validates a user artifact set.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variants: %w", err)
	}
	return Parse(path, data)
}

// Parse validates src against the schema. name is used for positions in
// errors and as the Source of the result.
func Parse(name string, src []byte) (*Set, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	user := ctx.CompileBytes(src, cue.Filename(name))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(user)
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	variants := v.LookupPath(cue.ParsePath("variant"))
	if !variants.Exists() {
		return nil, &CompileError{Field: "variant", Message: "no variant block", Pos: user.Pos()}
	}
	iter, err := variants.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	set := &Set{Source: name}
	files := map[string]string{}
	for iter.Next() {
		variant, err := compileVariant(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		if prev, ok := files[variant.File]; ok {
			return nil, &CompileError{
				Field:   "file",
				Message: fmt.Sprintf("%s and %s both write %s", prev, variant.Name, variant.File),
				Pos:     variant.Pos,
			}
		}
		files[variant.File] = variant.Name
		set.Variants = append(set.Variants, variant)
	}
	if len(set.Variants) == 0 {
		return nil, &CompileError{Field: "variant", Message: "at least one variant is required", Pos: variants.Pos()}
	}
	return set, nil
}

func compileVariant(name string, v cue.Value) (Variant, error) {
	out := Variant{Name: name, Pos: v.Pos()}

	file, err := lookupString(v, "file")
	if err != nil {
		return Variant{}, err
	}
	if !filepath.IsLocal(file) {
		return Variant{}, &CompileError{Field: "file", Message: fmt.Sprintf("%q must be a relative path inside the output directory", file), Pos: v.Pos()}
	}
	out.File = filepath.ToSlash(filepath.Clean(file))

	kind, err := lookupString(v, "kind")
	if err != nil {
		return Variant{}, err
	}
	cfg := gen.Config{Kind: gen.Kind(kind)}
	if cfg.Dagger, err = lookupBool(v, "dagger"); err != nil {
		return Variant{}, err
	}
	if cfg.Clover, err = lookupBool(v, "clover"); err != nil {
		return Variant{}, err
	}
	if cfg.Twisted, err = lookupBool(v, "twisted"); err != nil {
		return Variant{}, err
	}
	if cfg.TwistSign, err = lookupInt(v, "twist_sign"); err != nil {
		return Variant{}, err
	}
	if cfg.SharedFloats, err = lookupInt(v, "shared_floats"); err != nil {
		return Variant{}, err
	}

	if err := cfg.Validate(); err != nil {
		var ge *gen.Error
		if errors.As(err, &ge) {
			return Variant{}, &CompileError{Field: ge.Field, Message: name + ": " + ge.Message, Pos: v.Pos()}
		}
		return Variant{}, err
	}
	out.Config = cfg
	return out, nil
}

func lookupField(v cue.Value, field string) (cue.Value, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return f, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	d, _ := f.Default()
	return d, nil
}

func lookupString(v cue.Value, field string) (string, error) {
	f, err := lookupField(v, field)
	if err != nil {
		return "", err
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupBool(v cue.Value, field string) (bool, error) {
	f, err := lookupField(v, field)
	if err != nil {
		return false, err
	}
	b, err := f.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func lookupInt(v cue.Value, field string) (int, error) {
	f, err := lookupField(v, field)
	if err != nil {
		return 0, err
	}
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// formatCUEError converts a CUE error into a CompileError. Errors with
// no position (empty disjunctions) keep a zero Pos.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	ce := &CompileError{
		Field:   "cue",
		Message: strings.TrimSpace(errors.Details(first, nil)),
		Pos:     first.Position(),
	}
	if !ce.Pos.IsValid() {
		if positions := errors.Positions(first); len(positions) > 0 {
			ce.Pos = positions[0]
		}
	}
	return ce
}

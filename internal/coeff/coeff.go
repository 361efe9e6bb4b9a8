// Package coeff models the small complex coefficients that appear in the
// Dirac projector algebra.
//
// Both parts are exact decimals (github.com/cockroachdb/apd/v3), so the
// fixed ±1 and ±i entries never pass through floating point. Each value is
// tagged once at construction with its Kind; code generators branch on the
// tag instead of comparing numbers.
package coeff

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Kind classifies a coefficient for code generation.
type Kind uint8

const (
	// KindZero is 0.
	KindZero Kind = iota

	// KindUnit is +1 or -1.
	KindUnit

	// KindImaginaryUnit is +i or -i.
	KindImaginaryUnit

	// KindGeneric is any other value, e.g. 2, -i/2, 1+i.
	KindGeneric
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindZero:
		return "Zero"
	case KindUnit:
		return "Unit"
	case KindImaginaryUnit:
		return "ImaginaryUnit"
	case KindGeneric:
		return "Generic"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Coeff is an exact complex number. The zero value is 0.
//
// Coeff values are immutable: every operation returns a new value and the
// underlying decimals are never written after construction.
type Coeff struct {
	re   *apd.Decimal
	im   *apd.Decimal
	kind Kind
}

var (
	Zero     = New(0, 0)
	One      = New(1, 0)
	MinusOne = New(-1, 0)
	I        = New(0, 1)
	MinusI   = New(0, -1)
)

// New returns re + im·i.
func New(re, im int64) Coeff {
	return build(apd.New(re, 0), apd.New(im, 0))
}

// Parse returns re + im·i from decimal strings such as "0.5" or "-2".
func Parse(re, im string) (Coeff, error) {
	r, _, err := apd.NewFromString(re)
	if err != nil {
		return Coeff{}, fmt.Errorf("parse real part %q: %w", re, err)
	}
	i, _, err := apd.NewFromString(im)
	if err != nil {
		return Coeff{}, fmt.Errorf("parse imaginary part %q: %w", im, err)
	}
	return build(r, i), nil
}

// MustParse is like Parse but panics on error.
// Use only for constants and in tests.
func MustParse(re, im string) Coeff {
	c, err := Parse(re, im)
	if err != nil {
		panic(err)
	}
	return c
}

// build canonicalizes both parts and computes the kind tag.
func build(re, im *apd.Decimal) Coeff {
	c := Coeff{re: canonical(re), im: canonical(im)}
	c.kind = classify(c.re, c.im)
	return c
}

// canonical strips trailing zeros and normalizes signed zero so that
// formatting and comparison see one representation per value.
func canonical(d *apd.Decimal) *apd.Decimal {
	if d.IsZero() {
		return apd.New(0, 0)
	}
	out := new(apd.Decimal)
	out.Reduce(d)
	return out
}

func classify(re, im *apd.Decimal) Kind {
	switch {
	case re.IsZero() && im.IsZero():
		return KindZero
	case im.IsZero() && isUnit(re):
		return KindUnit
	case re.IsZero() && isUnit(im):
		return KindImaginaryUnit
	default:
		return KindGeneric
	}
}

func isUnit(d *apd.Decimal) bool {
	abs := new(apd.Decimal).Abs(d)
	return abs.Cmp(apd.New(1, 0)) == 0
}

func (c Coeff) real() *apd.Decimal {
	if c.re == nil {
		return apd.New(0, 0)
	}
	return c.re
}

func (c Coeff) imag() *apd.Decimal {
	if c.im == nil {
		return apd.New(0, 0)
	}
	return c.im
}

// Kind returns the classification tag computed at construction.
func (c Coeff) Kind() Kind {
	if c.re == nil && c.im == nil {
		return KindZero
	}
	return c.kind
}

// IsZero reports whether c == 0.
func (c Coeff) IsZero() bool {
	return c.Kind() == KindZero
}

// IsReal reports whether the imaginary part is zero.
func (c Coeff) IsReal() bool {
	return c.imag().IsZero()
}

// IsImaginary reports whether the real part is zero and the imaginary part is not.
func (c Coeff) IsImaginary() bool {
	return c.real().IsZero() && !c.imag().IsZero()
}

// Re returns the real part as decimal text.
func (c Coeff) Re() string {
	return c.real().Text('f')
}

// Im returns the imaginary part as decimal text.
func (c Coeff) Im() string {
	return c.imag().Text('f')
}

// IntParts returns both parts as integers. ok is false when either part
// has a fractional component.
func (c Coeff) IntParts() (re, im int64, ok bool) {
	r, err := c.real().Int64()
	if err != nil {
		return 0, 0, false
	}
	i, err := c.imag().Int64()
	if err != nil {
		return 0, 0, false
	}
	return r, i, true
}

// Equal reports exact equality.
func (c Coeff) Equal(d Coeff) bool {
	return c.real().Cmp(d.real()) == 0 && c.imag().Cmp(d.imag()) == 0
}

// Add returns c + d.
func (c Coeff) Add(d Coeff) Coeff {
	return build(add(c.real(), d.real()), add(c.imag(), d.imag()))
}

// Sub returns c - d.
func (c Coeff) Sub(d Coeff) Coeff {
	return build(sub(c.real(), d.real()), sub(c.imag(), d.imag()))
}

// Neg returns -c.
func (c Coeff) Neg() Coeff {
	return build(neg(c.real()), neg(c.imag()))
}

// Conj returns the complex conjugate of c.
func (c Coeff) Conj() Coeff {
	return build(c.real(), neg(c.imag()))
}

// Mul returns c · d.
func (c Coeff) Mul(d Coeff) Coeff {
	a, b := c.real(), c.imag()
	x, y := d.real(), d.imag()
	re := sub(mul(a, x), mul(b, y))
	im := add(mul(a, y), mul(b, x))
	return build(re, im)
}

// MulI returns i · c.
func (c Coeff) MulI() Coeff {
	return build(neg(c.imag()), c.real())
}

// Scale returns k · c.
func (c Coeff) Scale(k int64) Coeff {
	f := apd.New(k, 0)
	return build(mul(c.real(), f), mul(c.imag(), f))
}

// String implements fmt.Stringer using Format.
func (c Coeff) String() string {
	return Format(c)
}

func add(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	if _, err := apd.BaseContext.Add(d, x, y); err != nil {
		panic(fmt.Sprintf("coeff: add: %v", err))
	}
	return d
}

func sub(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	if _, err := apd.BaseContext.Sub(d, x, y); err != nil {
		panic(fmt.Sprintf("coeff: sub: %v", err))
	}
	return d
}

func mul(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	if _, err := apd.BaseContext.Mul(d, x, y); err != nil {
		panic(fmt.Sprintf("coeff: mul: %v", err))
	}
	return d
}

func neg(x *apd.Decimal) *apd.Decimal {
	if x.IsZero() {
		return apd.New(0, 0)
	}
	return new(apd.Decimal).Neg(x)
}

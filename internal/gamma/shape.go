package gamma

import (
	"fmt"

	"github.com/roach88/dslashgen/internal/coeff"
)

// Half says which rows of a projector carry independent information.
type Half uint8

const (
	// Full projectors have nonzero upper and lower rows; the lower rows
	// are scalar multiples of the upper rows.
	Full Half = iota

	// UpperOnly projectors have two zero lower rows.
	UpperOnly

	// LowerOnly projectors have two zero upper rows.
	LowerOnly
)

// String returns the name of the half.
func (h Half) String() string {
	switch h {
	case Full:
		return "full"
	case UpperOnly:
		return "upper"
	case LowerOnly:
		return "lower"
	default:
		return fmt.Sprintf("Half(%d)", h)
	}
}

// Proportion expresses lower row 2+k of a Full projector as Coef times
// upper row Source. A zero Coef means the row contributes nothing.
type Proportion struct {
	Source int
	Coef   coeff.Coeff
}

// Shape is the result of the sparsity scan of one projector.
type Shape struct {
	Index     int
	Half      Half
	RowCounts [coeff.Dim]int
	Lower     [2]Proportion
}

// HalfRow returns the projector row that feeds half spinor h (0 or 1).
func (s Shape) HalfRow(h int) int {
	if s.Half == LowerOnly {
		return h + 2
	}
	return h
}

// AlgebraError reports a projector that violates the structure the
// generator relies on. Row is -1 when the problem is not row specific.
type AlgebraError struct {
	Projector int
	Row       int
	Message   string
}

func (e *AlgebraError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("projector %d: %s", e.Projector, e.Message)
	}
	return fmt.Sprintf("projector %d row %d: %s", e.Projector, e.Row, e.Message)
}

// Analyze scans projector idx and returns its Shape.
func Analyze(idx int) (Shape, error) {
	p, err := Projector(idx)
	if err != nil {
		return Shape{}, err
	}
	return AnalyzeMatrix(idx, p)
}

// AnalyzeMatrix runs the scan on an arbitrary matrix. idx is used only
// for error reporting.
func AnalyzeMatrix(idx int, p coeff.Matrix) (Shape, error) {
	s := Shape{Index: idx}
	for r := 0; r < coeff.Dim; r++ {
		s.RowCounts[r] = p.NonZeroInRow(r)
	}

	upperZero := s.RowCounts[0]+s.RowCounts[1] == 0
	lowerZero := s.RowCounts[2]+s.RowCounts[3] == 0
	switch {
	case upperZero && lowerZero:
		return Shape{}, &AlgebraError{Projector: idx, Row: -1, Message: "projector is zero"}
	case upperZero:
		s.Half = LowerOnly
		return s, nil
	case lowerZero:
		s.Half = UpperOnly
		return s, nil
	}

	s.Half = Full
	for k := 0; k < 2; k++ {
		row := 2 + k
		prop, err := proportion(idx, p, row)
		if err != nil {
			return Shape{}, err
		}
		s.Lower[k] = prop
	}
	return s, nil
}

// proportion finds the upper row that lower row r is a multiple of, then
// checks the whole row against it.
func proportion(idx int, p coeff.Matrix, r int) (Proportion, error) {
	var prop Proportion
	switch {
	case p.At(r, 0).IsZero():
		prop = Proportion{Source: 1, Coef: p.At(r, 1)}
	case p.At(r, 1).IsZero():
		prop = Proportion{Source: 0, Coef: p.At(r, 0)}
	default:
		return Proportion{}, &AlgebraError{Projector: idx, Row: r, Message: "row mixes both upper rows"}
	}

	src := p.Row(prop.Source)
	if !src[prop.Source].Equal(coeff.One) {
		return Proportion{}, &AlgebraError{Projector: idx, Row: prop.Source, Message: "upper row has no unit pivot"}
	}
	for c, want := range src {
		if !p.At(r, c).Equal(want.Mul(prop.Coef)) {
			return Proportion{}, &AlgebraError{
				Projector: idx,
				Row:       r,
				Message:   fmt.Sprintf("column %d is not %s times row %d", c, coeff.Format(prop.Coef), prop.Source),
			}
		}
	}
	return prop, nil
}

// ValidEntry reports whether c belongs to {0, ±1, ±2, ±i}.
func ValidEntry(c coeff.Coeff) bool {
	re, im, ok := c.IntParts()
	if !ok {
		return false
	}
	switch {
	case im == 0:
		return re >= -2 && re <= 2
	case re == 0:
		return im == 1 || im == -1
	}
	return false
}

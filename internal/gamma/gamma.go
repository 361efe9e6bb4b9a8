// Package gamma holds the fixed spin algebra of the Wilson-Dirac operator:
// the Euclidean gamma matrices in the chiral (DeGrand-Rossi) basis, the
// eight directional spin projectors built from them, and the sparsity
// analysis that lets the code generator emit only half of the work.
//
// The constants are exact and never change at run time. Analyze verifies
// the rank-2 structure the generator depends on instead of assuming it.
package gamma

import (
	"fmt"

	"github.com/roach88/dslashgen/internal/coeff"
)

// Generators. Identity and Gamma1..Gamma4 build the projectors;
// IGamma5 (= i·γ5) is used only by the twisted-mass rotation.
var (
	Identity = coeff.MatrixOf(
		1, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 1, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 1, 0,
	)

	Gamma1 = coeff.MatrixOf(
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 0, 0, 1, 0, 0,
		0, 0, 0, -1, 0, 0, 0, 0,
		0, -1, 0, 0, 0, 0, 0, 0,
	)

	Gamma2 = coeff.MatrixOf(
		0, 0, 0, 0, 0, 0, 1, 0,
		0, 0, 0, 0, -1, 0, 0, 0,
		0, 0, -1, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0, 0, 0,
	)

	Gamma3 = coeff.MatrixOf(
		0, 0, 0, 0, 0, 1, 0, 0,
		0, 0, 0, 0, 0, 0, 0, -1,
		0, -1, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 0, 0, 0, 0,
	)

	Gamma4 = coeff.MatrixOf(
		1, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 1, 0, 0, 0, 0, 0,
		0, 0, 0, 0, -1, 0, 0, 0,
		0, 0, 0, 0, 0, 0, -1, 0,
	)

	IGamma5 = coeff.MatrixOf(
		0, 0, 0, 0, 0, 1, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 1, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 0, 0, 0, 0,
	)
)

// NumProjectors is the number of directional projectors (4 axes × 2 signs).
const NumProjectors = 8

// axisGenerators lists the gamma matrix of each lattice axis, x first.
var axisGenerators = [NumProjectors / 2]coeff.Matrix{Gamma1, Gamma2, Gamma3, Gamma4}

// projectors[2k] = 1 - γ_{k+1}, projectors[2k+1] = 1 + γ_{k+1}.
var projectors = buildProjectors()

func buildProjectors() [NumProjectors]coeff.Matrix {
	var p [NumProjectors]coeff.Matrix
	for axis, g := range axisGenerators {
		p[2*axis] = Identity.Sub(g)
		p[2*axis+1] = Identity.Add(g)
	}
	return p
}

// Projectors returns a copy of the eight projectors, indexed like directions.
func Projectors() [NumProjectors]coeff.Matrix {
	return projectors
}

// Projector returns projector idx.
func Projector(idx int) (coeff.Matrix, error) {
	if idx < 0 || idx >= NumProjectors {
		return coeff.Matrix{}, &AlgebraError{Projector: idx, Row: -1, Message: "projector index out of range"}
	}
	return projectors[idx], nil
}

// Entry returns the (row, col) entry of projector idx.
func Entry(idx, row, col int) (coeff.Coeff, error) {
	p, err := Projector(idx)
	if err != nil {
		return coeff.Coeff{}, err
	}
	if row < 0 || row >= coeff.Dim || col < 0 || col >= coeff.Dim {
		return coeff.Coeff{}, &AlgebraError{Projector: idx, Row: row, Message: fmt.Sprintf("entry (%d,%d) out of range", row, col)}
	}
	return p.At(row, col), nil
}

// Effective returns the projector used for a lattice direction. Direction
// 2k uses 1-γ and 2k+1 uses 1+γ; the dagger operator swaps the pair.
func Effective(dir int, dagger bool) int {
	if !dagger {
		return dir
	}
	return dir + 1 - 2*(dir%2)
}

// Name returns the conventional label of a projector used by direction dir,
// e.g. "P0-" or "P3+". The axis comes from the direction, the sign from idx.
func Name(dir, idx int) string {
	sign := "-"
	if idx%2 == 1 {
		sign = "+"
	}
	return fmt.Sprintf("P%d%s", dir/2, sign)
}

// Doc returns the projector as formatted rows, one row per line.
func Doc(idx int) ([]string, error) {
	p, err := Projector(idx)
	if err != nil {
		return nil, err
	}
	return p.Lines(), nil
}

package coeff

import (
	"fmt"
	"strings"
)

// Dim is the spin dimension of every matrix in this package.
const Dim = 4

// Matrix is a 4×4 complex matrix stored row-major.
type Matrix [Dim * Dim]Coeff

// MatrixOf builds a Matrix from 16 integer (re, im) pairs given row-major.
// It panics if len(entries) != 32; it is meant for fixed constant tables.
func MatrixOf(entries ...int64) Matrix {
	if len(entries) != 2*Dim*Dim {
		panic(fmt.Sprintf("coeff: MatrixOf needs %d values, got %d", 2*Dim*Dim, len(entries)))
	}
	var m Matrix
	for k := range m {
		m[k] = New(entries[2*k], entries[2*k+1])
	}
	return m
}

// At returns the entry at (row, col).
func (m Matrix) At(row, col int) Coeff {
	return m[Dim*row+col]
}

// Row returns row i.
func (m Matrix) Row(i int) [Dim]Coeff {
	var r [Dim]Coeff
	copy(r[:], m[Dim*i:Dim*i+Dim])
	return r
}

// Add returns the element-wise sum m + n.
func (m Matrix) Add(n Matrix) Matrix {
	var out Matrix
	for k := range m {
		out[k] = m[k].Add(n[k])
	}
	return out
}

// Sub returns the element-wise difference m - n.
func (m Matrix) Sub(n Matrix) Matrix {
	var out Matrix
	for k := range m {
		out[k] = m[k].Sub(n[k])
	}
	return out
}

// Scale returns c · m.
func (m Matrix) Scale(c Coeff) Matrix {
	var out Matrix
	for k := range m {
		out[k] = m[k].Mul(c)
	}
	return out
}

// Mul returns the matrix product m · n.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			sum := Zero
			for k := 0; k < Dim; k++ {
				sum = sum.Add(m.At(i, k).Mul(n.At(k, j)))
			}
			out[Dim*i+j] = sum
		}
	}
	return out
}

// Adjoint returns the conjugate transpose of m.
func (m Matrix) Adjoint() Matrix {
	var out Matrix
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			out[Dim*i+j] = m.At(j, i).Conj()
		}
	}
	return out
}

// Equal reports exact element-wise equality.
func (m Matrix) Equal(n Matrix) bool {
	for k := range m {
		if !m[k].Equal(n[k]) {
			return false
		}
	}
	return true
}

// NonZeroInRow counts the nonzero entries in row i.
func (m Matrix) NonZeroInRow(i int) int {
	n := 0
	for _, c := range m.Row(i) {
		if !c.IsZero() {
			n++
		}
	}
	return n
}

// Lines formats the matrix as four lines of space-separated literals.
func (m Matrix) Lines() []string {
	lines := make([]string, Dim)
	for i := 0; i < Dim; i++ {
		cells := make([]string, Dim)
		for j, c := range m.Row(i) {
			cells[j] = Format(c)
		}
		lines[i] = strings.Join(cells, " ")
	}
	return lines
}

// String renders the matrix one row per line.
func (m Matrix) String() string {
	return strings.Join(m.Lines(), "\n")
}

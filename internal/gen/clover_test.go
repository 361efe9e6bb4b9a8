package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dslashgen/internal/coeff"
	"github.com/roach88/dslashgen/internal/ir"
)

func twoIdentity() coeff.Matrix {
	var m coeff.Matrix
	for i := 0; i < coeff.Dim; i++ {
		m[i*coeff.Dim+i] = coeff.New(2, 0)
	}
	return m
}

func TestChiralRoundTrip(t *testing.T) {
	assert.True(t, ChiralInverse.Mul(ChiralForward).Equal(twoIdentity()))
}

// emittedMatrix reads a basis change back from its declarations.
func emittedMatrix(t *testing.T, blk ir.Node, c int) coeff.Matrix {
	t.Helper()
	b, ok := blk.(ir.Block)
	require.True(t, ok)
	var m coeff.Matrix
	for _, n := range b.Body {
		d, ok := n.(ir.Decl)
		if !ok {
			continue
		}
		lhs := d.Name.(ir.Reg)
		if lhs.Part != ir.Re {
			continue
		}
		assert.Equal(t, c, lhs.Color)
		for _, term := range d.Init.(ir.Sum).Terms {
			src := term.X.(ir.Reg)
			assert.Equal(t, ir.RoleOut, src.Role)
			assert.Equal(t, c, src.Color)
			m[lhs.Spin*coeff.Dim+src.Spin] = coeff.New(int64(term.Coef), 0)
		}
	}
	return m
}

func TestBasisChangeSymbolicRoundTrip(t *testing.T) {
	for c := 0; c < 3; c++ {
		fwd, err := basisChange(ChiralForward, c)
		require.NoError(t, err)
		inv, err := basisChange(ChiralInverse, c)
		require.NoError(t, err)

		f := emittedMatrix(t, fwd, c)
		b := emittedMatrix(t, inv, c)
		assert.True(t, f.Equal(ChiralForward), "color %d forward", c)
		assert.True(t, b.Mul(f).Equal(twoIdentity()), "color %d round trip", c)
	}
}

func TestBasisChangeRejectsComplexEntries(t *testing.T) {
	m := ChiralForward
	m[0] = coeff.I
	_, err := basisChange(m, 0)
	assert.Error(t, err)
}

func TestCloverSectionStructure(t *testing.T) {
	sec, err := cloverSection()
	require.NoError(t, err)
	assert.Equal(t, ir.SectionClover, sec.Kind)

	cond, ok := sec.Body[0].(ir.Cond)
	require.True(t, ok)
	assert.Equal(t, "DSLASH_CLOVER", cond.Expr)
	assert.Equal(t, 2, countCalls(sec.Body, "READ_CLOVER"))

	got := renderNodes(t, Config{Kind: KindDslash, Clover: true}, sec)
	assert.Contains(t, got, "READ_CLOVER(CLOVERTEX, 0)\n")
	assert.Contains(t, got, "spinorFloat a00_re = -o10_re - o30_re;")
	assert.Contains(t, got, "a00_re += c00_00_re * o00_re;")
	assert.Contains(t, got, "a00_re -= c00_01_im * o01_im;")
	assert.Contains(t, got, "a20_re += c20_20_re * o20_re;")
	assert.NotContains(t, got, "c00_00_im")
	assert.Contains(t, got, "#endif // DSLASH_CLOVER")
}

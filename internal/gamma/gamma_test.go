package gamma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dslashgen/internal/coeff"
)

func TestGeneratorsAreHermitianInvolutions(t *testing.T) {
	for i, g := range []coeff.Matrix{Gamma1, Gamma2, Gamma3, Gamma4} {
		assert.True(t, g.Adjoint().Equal(g), "gamma%d must be hermitian", i+1)
		assert.True(t, g.Mul(g).Equal(Identity), "gamma%d must square to identity", i+1)
	}
}

func TestGeneratorsAnticommute(t *testing.T) {
	gens := []coeff.Matrix{Gamma1, Gamma2, Gamma3, Gamma4}
	for i := range gens {
		for j := range gens {
			if i == j {
				continue
			}
			anti := gens[i].Mul(gens[j]).Add(gens[j].Mul(gens[i]))
			assert.True(t, anti.Equal(coeff.Matrix{}), "{gamma%d, gamma%d} must vanish", i+1, j+1)
		}
	}
}

func TestIGamma5IsIProductOfGenerators(t *testing.T) {
	g5 := Gamma1.Mul(Gamma2).Mul(Gamma3).Mul(Gamma4)
	assert.True(t, IGamma5.Equal(g5.Scale(coeff.I)) || IGamma5.Equal(g5.Scale(coeff.MinusI)))
	assert.True(t, IGamma5.Mul(IGamma5).Equal(Identity.Scale(coeff.MinusOne)))
}

func TestProjectorsOrder(t *testing.T) {
	p := Projectors()
	require.Len(t, p, NumProjectors)
	assert.True(t, p[0].Equal(Identity.Sub(Gamma1)))
	assert.True(t, p[1].Equal(Identity.Add(Gamma1)))
	assert.True(t, p[6].Equal(Identity.Sub(Gamma4)))
	assert.True(t, p[7].Equal(Identity.Add(Gamma4)))
}

func TestProjectorsAreTwiceIdempotent(t *testing.T) {
	two := coeff.New(2, 0)
	for idx, p := range Projectors() {
		assert.True(t, p.Mul(p).Equal(p.Scale(two)), "P%d squared must be 2*P%d", idx, idx)
	}
}

func TestProjectorEntriesAreRestricted(t *testing.T) {
	for idx, p := range Projectors() {
		for r := 0; r < coeff.Dim; r++ {
			for c := 0; c < coeff.Dim; c++ {
				e := p.At(r, c)
				assert.True(t, ValidEntry(e), "P%d(%d,%d) = %s", idx, r, c, e)
				if re, _, _ := e.IntParts(); re == 2 || re == -2 {
					assert.GreaterOrEqual(t, idx, 6, "only the time projectors carry 2")
					assert.Equal(t, r, c, "2 only on the diagonal")
				}
			}
		}
	}
}

func TestEffectiveSwapsUnderDagger(t *testing.T) {
	for dir := 0; dir < NumProjectors; dir++ {
		assert.Equal(t, dir, Effective(dir, false))
		swapped := Effective(dir, true)
		assert.Equal(t, dir/2, swapped/2, "same axis")
		assert.NotEqual(t, dir, swapped)
		assert.Equal(t, dir, Effective(swapped, true))
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "P0-", Name(0, 0))
	assert.Equal(t, "P0+", Name(0, 1))
	assert.Equal(t, "P0+", Name(1, 1))
	assert.Equal(t, "P3-", Name(7, Effective(7, true)))
}

func TestDoc(t *testing.T) {
	lines, err := Doc(0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1 0 0 -i",
		"0 1 -i 0",
		"0 i 1 0",
		"i 0 0 1",
	}, lines)

	lines, err = Doc(6)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0 0 0 0",
		"0 0 0 0",
		"0 0 2 0",
		"0 0 0 2",
	}, lines)
}

func TestProjectorOutOfRange(t *testing.T) {
	_, err := Projector(8)
	var ae *AlgebraError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 8, ae.Projector)

	_, err = Entry(0, 4, 0)
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "out of range")

	e, err := Entry(2, 0, 3)
	require.NoError(t, err)
	assert.True(t, e.Equal(coeff.MinusOne))
}

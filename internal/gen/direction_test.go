package gen

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dslashgen/internal/ir"
	"github.com/roach88/dslashgen/internal/render"
)

var wilson = Config{Kind: KindDslash}

func renderNodes(t *testing.T, cfg Config, nodes ...ir.Node) string {
	t.Helper()
	out, err := render.Render(nodes, NewResolver(cfg))
	require.NoError(t, err)
	return string(out)
}

func TestBuildDirectionRejectsOutOfRange(t *testing.T) {
	for _, dir := range []int{-1, 8, 100} {
		_, err := BuildDirection(wilson, dir)
		require.Error(t, err)
		assert.True(t, IsDirectionError(err), "dir %d", dir)
	}
}

func TestBuildDirectionRejectsInvalidConfig(t *testing.T) {
	_, err := BuildDirection(Config{Kind: KindDslash, SharedFloats: 30}, 0)
	assert.True(t, IsConfigError(err))
}

func TestDirectionLabels(t *testing.T) {
	want := []string{"P0-", "P0+", "P1-", "P1+", "P2-", "P2+", "P3-", "P3+"}
	wantDagger := []string{"P0+", "P0-", "P1+", "P1-", "P2+", "P2-", "P3+", "P3-"}
	for dir := 0; dir < NumDirections; dir++ {
		sec, err := BuildDirection(wilson, dir)
		require.NoError(t, err)
		assert.Equal(t, ir.SectionDirection, sec.Kind)
		assert.Equal(t, want[dir], sec.Label)

		sec, err = BuildDirection(Config{Kind: KindDslash, Dagger: true}, dir)
		require.NoError(t, err)
		assert.Equal(t, wantDagger[dir], sec.Label)
	}
}

func TestDirectionLoads(t *testing.T) {
	tests := []struct {
		dir    int
		dagger bool
		load   string
	}{
		{0, false, "READ_SPINOR"},
		{5, true, "READ_SPINOR"},
		{6, false, "READ_SPINOR_DOWN"},
		{7, false, "READ_SPINOR_UP"},
		{6, true, "READ_SPINOR_UP"},
		{7, true, "READ_SPINOR_DOWN"},
	}
	for _, tt := range tests {
		sec, err := BuildDirection(Config{Kind: KindDslash, Dagger: tt.dagger}, tt.dir)
		require.NoError(t, err)
		info := inspectHop(sec.Body)
		assert.Equal(t, tt.load, info.Load, "dir %d dagger %v", tt.dir, tt.dagger)
	}
}

func TestDirectionGaugeFixed(t *testing.T) {
	for dir := 0; dir < NumDirections; dir++ {
		sec, err := BuildDirection(wilson, dir)
		require.NoError(t, err)
		info := inspectHop(sec.Body)
		assert.Equal(t, dir >= 6, info.GaugeFixed, "dir %d", dir)
		assert.Equal(t, dir >= 6, info.Halo, "dir %d", dir)
		// The gauge-fixed shortcut skips the link load entirely.
		assert.Equal(t, 1, info.GaugeLoads, "dir %d", dir)
	}
}

// halfTerms returns the initializers of the first half spinor's real
// parts, one per color.
func halfTerms(t *testing.T, nodes []ir.Node) [][]ir.Term {
	t.Helper()
	var out [][]ir.Term
	for _, n := range nodes {
		d, ok := n.(ir.Decl)
		if !ok {
			continue
		}
		r, ok := d.Name.(ir.Reg)
		if !ok || r.Role != ir.RoleHalf || r.Part != ir.Re {
			continue
		}
		sum, ok := d.Init.(ir.Sum)
		require.True(t, ok)
		out = append(out, sum.Terms)
	}
	return out
}

func TestDaggerNegatesOffDiagonalTerms(t *testing.T) {
	for dir := 0; dir < 6; dir++ {
		plain, err := planHop(wilson, dir, siteIndex)
		require.NoError(t, err)
		dagger, err := planHop(Config{Kind: KindDslash, Dagger: true}, dir, siteIndex)
		require.NoError(t, err)

		a, err := plain.project()
		require.NoError(t, err)
		b, err := dagger.project()
		require.NoError(t, err)

		ta, tb := halfTerms(t, a), halfTerms(t, b)
		require.Len(t, ta, 6)
		require.Len(t, tb, 6)
		for i := range ta {
			half := i / 3
			require.Len(t, tb[i], len(ta[i]))
			for j := range ta[i] {
				assert.Equal(t, ta[i][j].X, tb[i][j].X)
				if ta[i][j].X.(ir.Reg).Spin == half {
					assert.Equal(t, ta[i][j].Coef, tb[i][j].Coef, "dir %d identity term", dir)
				} else {
					assert.Equal(t, -ta[i][j].Coef, tb[i][j].Coef, "dir %d gamma term", dir)
				}
			}
		}
	}
}

func TestProjectGolden(t *testing.T) {
	h, err := planHop(wilson, 0, siteIndex)
	require.NoError(t, err)
	nodes, err := h.project()
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "project_p0_minus", []byte(renderNodes(t, wilson, nodes...)))
}

func TestAccumulateRebuildsLowerSpins(t *testing.T) {
	h, err := planHop(wilson, 0, siteIndex)
	require.NoError(t, err)
	nodes, err := h.accumulate()
	require.NoError(t, err)

	got := renderNodes(t, wilson, nodes...)
	lines := strings.Split(got, "\n")
	// 1 - gamma1: row 2 = i * row 1, row 3 = i * row 0
	assert.Equal(t, []string{
		"o00_re += A0_re;",
		"o00_im += A0_im;",
		"o10_re += B0_re;",
		"o10_im += B0_im;",
		"o20_re -= B0_im;",
		"o20_im += B0_re;",
		"o30_re -= A0_im;",
		"o30_im += A0_re;",
		"",
	}, lines[:9])
}

func TestAccumulateTimeDirectionWritesOneHalf(t *testing.T) {
	h, err := planHop(wilson, 6, siteIndex)
	require.NoError(t, err)
	nodes, err := h.accumulate()
	require.NoError(t, err)

	got := renderNodes(t, wilson, nodes...)
	assert.Contains(t, got, "o20_re += A0_re;")
	assert.Contains(t, got, "o32_im += B2_im;")
	assert.NotContains(t, got, "o0")
	assert.NotContains(t, got, "o1")
}

func TestRenderedDirectionBlock(t *testing.T) {
	sec, err := BuildDirection(wilson, 1)
	require.NoError(t, err)
	got := renderNodes(t, wilson, sec)

	assert.True(t, strings.HasPrefix(got, "{\n    // Projector P0+\n"))
	assert.Contains(t, got, "    int sp_idx = ((x1==0) ? X+X1m1 : X-1) >> 1;\n")
	assert.Contains(t, got, "    int ga_idx = sp_idx;\n")
	assert.Contains(t, got, "    READ_GAUGE_MATRIX(G, GAUGE1TEX, 1, ga_idx, ga_stride);\n")
	assert.Contains(t, got, "    READ_SPINOR(SPINORTEX, sp_stride, sp_idx, sp_idx);\n")
	assert.Contains(t, got, "    RECONSTRUCT_GAUGE_MATRIX(1);\n")
	assert.Contains(t, got, "    spinorFloat A0_re = 0;\n")
	assert.Contains(t, got, "    A0_re += gT00_re * a0_re;\n")
	assert.Contains(t, got, "    A0_re -= gT00_im * a0_im;\n")
	assert.True(t, strings.HasSuffix(got, "}\n\n"))
}

func TestRenderedTimeDirectionHalo(t *testing.T) {
	sec, err := BuildDirection(wilson, 6)
	require.NoError(t, err)
	got := renderNodes(t, wilson, sec)

	assert.Contains(t, got, "    #ifndef MULTI_GPU\n")
	assert.Contains(t, got, "        #define sp_stride_t sp_stride\n")
	assert.Contains(t, got, "        if (x4 == X4m1) { // front face (lower spin components)\n")
	assert.Contains(t, got, "sp_idx = sid - (Vh - Vs) + SPINOR_HOP*sp_stride; // starts at Npad*Vs (precalculate more)\n")
	assert.Contains(t, got, "sp_norm_idx = sid - (Vh - Vs) + sp_stride + Vs; // need extra Vs addition since we require the 2nd norm buffer\n")
	assert.Contains(t, got, "    #endif // MULTI_GPU\n")
	assert.Contains(t, got, "    if (gauge_fixed && ga_idx < X4X3X2X1hmX3X2X1h) {\n")
	assert.Contains(t, got, "READ_SPINOR_DOWN(SPINORTEX, sp_stride_t, sp_idx, sp_norm_idx);")
	assert.Contains(t, got, "spinorFloat A0_re = a0_re; spinorFloat A0_im = a0_im;")
}

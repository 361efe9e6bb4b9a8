package gen

import (
	"fmt"
	"strconv"

	"github.com/roach88/dslashgen/internal/coeff"
	"github.com/roach88/dslashgen/internal/gamma"
	"github.com/roach88/dslashgen/internal/ir"
)

// NumDirections is the number of hopping directions (4 axes × 2 senses).
const NumDirections = 8

// gaugeFixedCond selects the identity-link shortcut on time directions.
const gaugeFixedCond = "gauge_fixed && ga_idx < X4X3X2X1hmX3X2X1h"

// axis describes neighbor addressing along one lattice axis: the
// coordinate, its last value, the checkerboard index step and the index
// jump across the periodic boundary.
type axis struct {
	coord  string
	last   string
	stride string
	wrap   string
}

var axes = [4]axis{
	{"x1", "X1m1", "1", "X1m1"},
	{"x2", "X2m1", "X1", "X2X1mX1"},
	{"x3", "X3m1", "X2X1", "X3X2X1mX2X1"},
	{"x4", "X4m1", "X3X2X1", "X4X3X2X1mX3X2X1"},
}

// wrapped is the periodic neighbor index.
func (a axis) wrapped(backward bool) string {
	if backward {
		return fmt.Sprintf("((%s==0) ? X+%s : X-%s) >> 1", a.coord, a.wrap, a.stride)
	}
	return fmt.Sprintf("((%s==%s) ? X-%s : X+%s) >> 1", a.coord, a.last, a.wrap, a.stride)
}

// interior is the neighbor index without boundary handling.
func (a axis) interior(backward bool) string {
	if backward {
		return fmt.Sprintf("(X - %s) >> 1", a.stride)
	}
	return fmt.Sprintf("(X+%s) >> 1", a.stride)
}

// spinorIndex names the stride and index arguments of spinor loads.
type spinorIndex struct {
	stride  ir.Sym
	strideT ir.Sym
	idx     ir.Sym
	norm    ir.Sym
}

var (
	siteIndex = spinorIndex{stride: "sp_stride", strideT: symStrideT, idx: "sp_idx", norm: symNormIdx}
	faceIndex = spinorIndex{stride: "sp_stride", strideT: "sp_stride", idx: "idx", norm: "idx"}
)

// hop is the fully resolved plan for one direction.
type hop struct {
	dir      int
	proj     int
	matrix   coeff.Matrix
	shape    gamma.Shape
	index    spinorIndex
	backward bool
}

func planHop(cfg Config, dir int, index spinorIndex) (hop, error) {
	if dir < 0 || dir >= NumDirections {
		return hop{}, directionError(dir)
	}
	proj := gamma.Effective(dir, cfg.Dagger)
	m, err := gamma.Projector(proj)
	if err != nil {
		return hop{}, algebraError(dir, err)
	}
	shape, err := gamma.Analyze(proj)
	if err != nil {
		return hop{}, algebraError(dir, err)
	}
	return hop{dir: dir, proj: proj, matrix: m, shape: shape, index: index, backward: dir%2 == 1}, nil
}

// Name returns the projector label, e.g. "P2+".
func (h hop) Name() string {
	return gamma.Name(h.dir, h.proj)
}

func (h hop) header() []ir.Node {
	nodes := []ir.Node{ir.Comment{Text: "Projector " + h.Name()}}
	for _, l := range h.matrix.Lines() {
		nodes = append(nodes, ir.Comment{Text: l})
	}
	return append(nodes, ir.Blank{})
}

// neighbor computes sp_idx and ga_idx. Time directions switch to halo
// buffers at the boundary when built for multiple processes.
func (h hop) neighbor() []ir.Node {
	a := axes[h.dir/2]
	intDecl := func(name ir.Sym, init string) ir.Node {
		if init == "" {
			return ir.Decl{Type: "int", Name: name}
		}
		return ir.Decl{Type: "int", Name: name, Init: ir.Lit(init)}
	}
	gaugeIndex := "sid"
	if h.backward {
		gaugeIndex = "sp_idx"
	}
	if h.dir < 6 {
		return []ir.Node{
			intDecl("sp_idx", a.wrapped(h.backward)),
			intDecl("ga_idx", gaugeIndex),
			ir.Blank{},
		}
	}

	single := []ir.Node{
		intDecl("sp_idx", a.wrapped(h.backward)),
		ir.Define{Name: symStrideT, Value: ir.Sym("sp_stride")},
		ir.Define{Name: symNormIdx, Value: ir.Sym("sp_idx")},
	}

	ddPrec := func(nodes ...ir.Node) ir.Node {
		return ir.Cond{Directive: "if", Expr: "(DD_PREC==2)", Then: nodes}
	}
	var face, faceComment, faceIdx, faceNorm, idxComment, normComment string
	if h.backward {
		face, faceComment = "x4 == 0", "back face"
		faceIdx, faceNorm = "sid + SPINOR_HOP*sp_stride", "sid + sp_stride"
	} else {
		face, faceComment = "x4 == X4m1", "front face (lower spin components)"
		faceIdx, faceNorm = "sid - (Vh - Vs) + SPINOR_HOP*sp_stride", "sid - (Vh - Vs) + sp_stride + Vs"
		idxComment = "starts at Npad*Vs (precalculate more)"
		normComment = "need extra Vs addition since we require the 2nd norm buffer"
	}
	multi := []ir.Node{
		intDecl("sp_idx", ""),
		intDecl(symStrideT, ""),
		ir.Cond{
			Directive: "if",
			Expr:      "(DD_PREC==2)",
			Then:      []ir.Node{intDecl(symNormIdx, "")},
			Else:      []ir.Node{ir.Define{Name: symNormIdx, Value: ir.Sym("sp_idx")}},
		},
		ir.If{
			Cond:    face,
			Comment: faceComment,
			Then: []ir.Node{
				ir.Assign{LHS: symStrideT, Op: "=", RHS: ir.Sym("Vs")},
				ir.Assign{LHS: ir.Sym("sp_idx"), Op: "=", RHS: ir.Lit(faceIdx), Comment: idxComment},
				ddPrec(ir.Assign{LHS: symNormIdx, Op: "=", RHS: ir.Lit(faceNorm), Comment: normComment}),
			},
			Else: []ir.Node{
				ir.Assign{LHS: symStrideT, Op: "=", RHS: ir.Sym("sp_stride")},
				ir.Assign{LHS: ir.Sym("sp_idx"), Op: "=", RHS: ir.Lit(a.interior(h.backward))},
				ddPrec(ir.Assign{LHS: symNormIdx, Op: "=", RHS: ir.Sym("sp_idx")}),
			},
		},
	}
	if h.backward {
		single = append(single, intDecl("ga_idx", "sp_idx"))
		multi = append(multi,
			ir.Comment{Text: "back links in pad, which is offset by Vh+sid from buffer start"},
			intDecl("ga_idx", "(x4==0) ? sid+Vh : sp_idx"),
		)
	}

	nodes := []ir.Node{
		ir.Cond{Directive: "ifndef", Expr: "MULTI_GPU", Then: single, Else: multi, Trailer: "MULTI_GPU", Indent: true},
		ir.Blank{},
	}
	if !h.backward {
		nodes = append(nodes, intDecl("ga_idx", gaugeIndex), ir.Blank{})
	}
	return nodes
}

func (h hop) loadSpinor() []ir.Node {
	var call ir.Call
	switch h.shape.Half {
	case gamma.LowerOnly:
		call = ir.Call{Func: "READ_SPINOR_DOWN", Args: []ir.Expr{ir.Sym("SPINORTEX"), h.index.strideT, h.index.idx, h.index.norm}}
	case gamma.UpperOnly:
		call = ir.Call{Func: "READ_SPINOR_UP", Args: []ir.Expr{ir.Sym("SPINORTEX"), h.index.strideT, h.index.idx, h.index.norm}}
	default:
		call = ir.Call{Func: "READ_SPINOR", Args: []ir.Expr{ir.Sym("SPINORTEX"), h.index.stride, h.index.idx, h.index.idx}}
	}
	return []ir.Node{ir.Comment{Text: "read spinor from device memory"}, call, ir.Blank{}}
}

func (h hop) loadGauge() []ir.Node {
	return []ir.Node{
		ir.Comment{Text: "read gauge matrix from device memory"},
		ir.Call{Func: "READ_GAUGE_MATRIX", Args: []ir.Expr{
			ir.Sym("G"),
			ir.Sym("GAUGE" + strconv.Itoa(h.dir%2) + "TEX"),
			ir.Lit(strconv.Itoa(h.dir)),
			ir.Sym("ga_idx"),
			ir.Sym("ga_stride"),
		}},
		ir.Blank{},
	}
}

func (h hop) reconstructGauge() []ir.Node {
	return []ir.Node{
		ir.Comment{Text: "reconstruct gauge matrix"},
		ir.Call{Func: "RECONSTRUCT_GAUGE_MATRIX", Args: []ir.Expr{ir.Lit(strconv.Itoa(h.dir))}},
		ir.Blank{},
	}
}

// project forms the two half spinors from the rows that carry the
// projector's information.
func (h hop) project() ([]ir.Node, error) {
	nodes := []ir.Node{ir.Comment{Text: "project spinor into half spinors"}}
	for half := 0; half < 2; half++ {
		row := h.shape.HalfRow(half)
		for c := 0; c < 3; c++ {
			var p products
			for s := 0; s < coeff.Dim; s++ {
				if err := p.add(h.matrix.At(row, s), 1, ir.In(s, c, ir.Re), ir.In(s, c, ir.Im), ""); err != nil {
					return nil, algebraError(h.dir, err)
				}
			}
			nodes = append(nodes,
				ir.Decl{Type: string(symSpinorFloat), Name: ir.Half(half, c, ir.Re), Init: ir.Sum{Terms: p.re}},
				ir.Decl{Type: string(symSpinorFloat), Name: ir.Half(half, c, ir.Im), Init: ir.Sum{Terms: p.im}},
			)
		}
		nodes = append(nodes, ir.Blank{})
	}
	return nodes, nil
}

// identity copies the half spinors when the link is the unit matrix.
func (h hop) identity() []ir.Node {
	nodes := []ir.Node{ir.Comment{Text: "identity gauge matrix"}}
	for m := 0; m < 3; m++ {
		for half := 0; half < 2; half++ {
			nodes = append(nodes, ir.Line{Sep: " ", Stmts: []ir.Node{
				ir.Decl{Type: string(symSpinorFloat), Name: ir.Prod(half, m, ir.Re), Init: ir.Half(half, m, ir.Re)},
				ir.Decl{Type: string(symSpinorFloat), Name: ir.Prod(half, m, ir.Im), Init: ir.Half(half, m, ir.Im)},
			}})
		}
	}
	return append(nodes, ir.Blank{})
}

// multiply applies the 3×3 link to both half spinors. Backward hops use
// the conjugate transpose aliases.
func (h hop) multiply() []ir.Node {
	var nodes []ir.Node
	mul := func(l, r ir.Reg) ir.Expr { return ir.Mul{L: l, R: r, Spaced: true} }
	for m := 0; m < 3; m++ {
		nodes = append(nodes, ir.Comment{Text: "multiply row " + strconv.Itoa(m)})
		for half := 0; half < 2; half++ {
			outRe, outIm := ir.Prod(half, m, ir.Re), ir.Prod(half, m, ir.Im)
			nodes = append(nodes, ir.Decl{Type: string(symSpinorFloat), Name: outRe, Init: ir.Lit("0")})
			for c := 0; c < 3; c++ {
				gRe, gIm := ir.Gauge(h.backward, m, c, ir.Re), ir.Gauge(h.backward, m, c, ir.Im)
				nodes = append(nodes,
					ir.Assign{LHS: outRe, Op: "+=", RHS: mul(gRe, ir.Half(half, c, ir.Re))},
					ir.Assign{LHS: outRe, Op: "-=", RHS: mul(gIm, ir.Half(half, c, ir.Im))},
				)
			}
			nodes = append(nodes, ir.Decl{Type: string(symSpinorFloat), Name: outIm, Init: ir.Lit("0")})
			for c := 0; c < 3; c++ {
				gRe, gIm := ir.Gauge(h.backward, m, c, ir.Re), ir.Gauge(h.backward, m, c, ir.Im)
				nodes = append(nodes,
					ir.Assign{LHS: outIm, Op: "+=", RHS: mul(gRe, ir.Half(half, c, ir.Im))},
					ir.Assign{LHS: outIm, Op: "+=", RHS: mul(gIm, ir.Half(half, c, ir.Re))},
				)
			}
		}
		nodes = append(nodes, ir.Blank{})
	}
	return nodes
}

// accumulate adds the transported half spinors into the output and
// rebuilds the other two spins from the row proportions.
func (h hop) accumulate() ([]ir.Node, error) {
	var nodes []ir.Node
	for m := 0; m < 3; m++ {
		for half := 0; half < 2; half++ {
			out := h.shape.HalfRow(half)
			nodes = append(nodes,
				ir.Assign{LHS: ir.Out(out, m, ir.Re), Op: "+=", RHS: ir.Prod(half, m, ir.Re)},
				ir.Assign{LHS: ir.Out(out, m, ir.Im), Op: "+=", RHS: ir.Prod(half, m, ir.Im)},
			)
		}
		if h.shape.Half == gamma.Full {
			for k, prop := range h.shape.Lower {
				rebuilt, err := reconstructRow(2+k, m, prop)
				if err != nil {
					return nil, algebraError(h.dir, err)
				}
				nodes = append(nodes, rebuilt...)
			}
		}
		nodes = append(nodes, ir.Blank{})
	}
	return nodes, nil
}

// reconstructRow emits out(s) += coef · prod(source) for one color.
func reconstructRow(s, m int, prop gamma.Proportion) ([]ir.Node, error) {
	if prop.Coef.IsZero() {
		return nil, nil
	}
	re, im, ok := prop.Coef.IntParts()
	if !ok || (re != 0 && im != 0) {
		return nil, fmt.Errorf("row %d: coefficient %s is not a signed unit", s, prop.Coef)
	}
	src := prop.Source
	if im == 0 {
		op, err := compound(re)
		if err != nil {
			return nil, err
		}
		return []ir.Node{
			ir.Assign{LHS: ir.Out(s, m, ir.Re), Op: op, RHS: ir.Prod(src, m, ir.Re)},
			ir.Assign{LHS: ir.Out(s, m, ir.Im), Op: op, RHS: ir.Prod(src, m, ir.Im)},
		}, nil
	}
	opRe, err := compound(-im)
	if err != nil {
		return nil, err
	}
	opIm, err := compound(im)
	if err != nil {
		return nil, err
	}
	return []ir.Node{
		ir.Assign{LHS: ir.Out(s, m, ir.Re), Op: opRe, RHS: ir.Prod(src, m, ir.Im)},
		ir.Assign{LHS: ir.Out(s, m, ir.Im), Op: opIm, RHS: ir.Prod(src, m, ir.Re)},
	}, nil
}

// BuildDirection returns the complete block for one hopping direction.
func BuildDirection(cfg Config, dir int) (ir.Section, error) {
	if err := cfg.Validate(); err != nil {
		return ir.Section{}, err
	}
	return buildDirection(cfg, dir)
}

func buildDirection(cfg Config, dir int) (ir.Section, error) {
	h, err := planHop(cfg, dir, siteIndex)
	if err != nil {
		return ir.Section{}, err
	}
	project, err := h.project()
	if err != nil {
		return ir.Section{}, err
	}
	accumulate, err := h.accumulate()
	if err != nil {
		return ir.Section{}, err
	}

	full := concat(h.loadGauge(), h.loadSpinor(), h.reconstructGauge(), project, h.multiply(), accumulate)

	body := concat(h.header(), h.neighbor())
	if dir >= 6 {
		body = append(body, ir.If{
			Cond: gaugeFixedCond,
			Then: concat(h.loadSpinor(), project, h.identity(), accumulate),
			Else: full,
		})
	} else {
		body = append(body, full...)
	}

	return ir.Section{
		Kind:  ir.SectionDirection,
		Label: h.Name(),
		Body:  []ir.Node{ir.Block{Body: body}, ir.Blank{}},
	}, nil
}

func concat(groups ...[]ir.Node) []ir.Node {
	var out []ir.Node
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

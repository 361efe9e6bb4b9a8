package gen

import (
	"fmt"
	"strconv"

	"github.com/roach88/dslashgen/internal/coeff"
	"github.com/roach88/dslashgen/internal/ir"
)

// ChiralForward rotates the four spins of one color into the chiral
// basis, where the clover term is block diagonal.
var ChiralForward = coeff.MatrixOf(
	0, 0, -1, 0, 0, 0, -1, 0,
	1, 0, 0, 0, 1, 0, 0, 0,
	0, 0, -1, 0, 0, 0, 1, 0,
	1, 0, 0, 0, -1, 0, 0, 0,
)

// ChiralInverse rotates back. ChiralInverse·ChiralForward = 2·I; the
// factor 1/2 is folded into the clover field normalization.
var ChiralInverse = coeff.MatrixOf(
	0, 0, 1, 0, 0, 0, 1, 0,
	-1, 0, 0, 0, -1, 0, 0, 0,
	0, 0, 1, 0, 0, 0, -1, 0,
	-1, 0, 0, 0, 1, 0, 0, 0,
)

// basisChange rewrites the four spins of color c as m·o, through chiral
// temporaries so every input is read before any output is written.
func basisChange(m coeff.Matrix, c int) (ir.Node, error) {
	var decls, copies []ir.Node
	for s := 0; s < coeff.Dim; s++ {
		var re, im []ir.Term
		for t := 0; t < coeff.Dim; t++ {
			e := m.At(s, t)
			if e.IsZero() {
				continue
			}
			k, _, ok := e.IntParts()
			if !ok || !e.IsReal() {
				return nil, fmt.Errorf("basis change entry (%d,%d) = %s is not a real integer", s, t, e)
			}
			coef, err := termCoef(k)
			if err != nil {
				return nil, err
			}
			re = append(re, ir.Term{Coef: coef, X: ir.Out(t, c, ir.Re)})
			im = append(im, ir.Term{Coef: coef, X: ir.Out(t, c, ir.Im)})
		}
		decls = append(decls,
			ir.Decl{Type: string(symSpinorFloat), Name: ir.Chiral(0, s, c, ir.Re), Init: ir.Sum{Terms: re, Spaced: true}},
			ir.Decl{Type: string(symSpinorFloat), Name: ir.Chiral(0, s, c, ir.Im), Init: ir.Sum{Terms: im, Spaced: true}},
		)
		copies = append(copies, ir.Line{Sep: "  ", Stmts: []ir.Node{
			ir.Assign{LHS: ir.Out(s, c, ir.Re), Op: "=", RHS: ir.Chiral(0, s, c, ir.Re)},
			ir.Assign{LHS: ir.Out(s, c, ir.Im), Op: "=", RHS: ir.Chiral(0, s, c, ir.Im)},
		}})
	}
	body := append(decls, ir.Blank{})
	body = append(body, copies...)
	return ir.Block{Body: body}, nil
}

// cloverMult applies chiral block chi (a Hermitian 6×6 matrix over two
// spins and three colors) to output spins 2chi and 2chi+1.
func cloverMult(chi int) ir.Node {
	body := []ir.Node{
		ir.Call{Func: "READ_CLOVER", Args: []ir.Expr{ir.Sym("CLOVERTEX"), ir.Lit(strconv.Itoa(chi))}, Bare: true},
		ir.Blank{},
	}
	for s := 0; s < 2; s++ {
		for c := 0; c < 3; c++ {
			body = append(body, ir.Line{Sep: " ", Stmts: []ir.Node{
				ir.Decl{Type: string(symSpinorFloat), Name: ir.Chiral(chi, s, c, ir.Re), Init: ir.Lit("0")},
				ir.Decl{Type: string(symSpinorFloat), Name: ir.Chiral(chi, s, c, ir.Im), Init: ir.Lit("0")},
			}})
		}
	}
	body = append(body, ir.Blank{})

	mul := func(l, r ir.Reg) ir.Expr { return ir.Mul{L: l, R: r, Spaced: true} }
	for sm := 0; sm < 2; sm++ {
		for cm := 0; cm < 3; cm++ {
			accRe, accIm := ir.Chiral(chi, sm, cm, ir.Re), ir.Chiral(chi, sm, cm, ir.Im)
			for sn := 0; sn < 2; sn++ {
				for cn := 0; cn < 3; cn++ {
					row, col := 3*sm+cm, 3*sn+cn
					cRe, cIm := ir.Clover(chi, row, col, ir.Re), ir.Clover(chi, row, col, ir.Im)
					oRe, oIm := ir.Out(2*chi+sn, cn, ir.Re), ir.Out(2*chi+sn, cn, ir.Im)
					offDiagonal := row != col
					body = append(body, ir.Assign{LHS: accRe, Op: "+=", RHS: mul(cRe, oRe)})
					if offDiagonal {
						body = append(body, ir.Assign{LHS: accRe, Op: "-=", RHS: mul(cIm, oIm)})
					}
					body = append(body, ir.Assign{LHS: accIm, Op: "+=", RHS: mul(cRe, oIm)})
					if offDiagonal {
						body = append(body, ir.Assign{LHS: accIm, Op: "+=", RHS: mul(cIm, oRe)})
					}
				}
			}
			body = append(body, ir.Blank{})
		}
	}

	for s := 0; s < 2; s++ {
		for c := 0; c < 3; c++ {
			body = append(body, ir.Line{Sep: "  ", Stmts: []ir.Node{
				ir.Assign{LHS: ir.Out(2*chi+s, c, ir.Re), Op: "=", RHS: ir.Chiral(chi, s, c, ir.Re)},
				ir.Assign{LHS: ir.Out(2*chi+s, c, ir.Im), Op: "=", RHS: ir.Chiral(chi, s, c, ir.Im)},
			}})
		}
	}
	body = append(body, ir.Blank{})
	return ir.Block{Body: body}
}

// cloverSection applies the inverted clover term under DSLASH_CLOVER.
func cloverSection() (ir.Section, error) {
	change := func(m coeff.Matrix) ([]ir.Node, error) {
		var nodes []ir.Node
		for c := 0; c < 3; c++ {
			blk, err := basisChange(m, c)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, blk, ir.Blank{})
		}
		return nodes, nil
	}
	forward, err := change(ChiralForward)
	if err != nil {
		return ir.Section{}, err
	}
	inverse, err := change(ChiralInverse)
	if err != nil {
		return ir.Section{}, err
	}

	body := []ir.Node{ir.Blank{}, ir.Comment{Text: "change to chiral basis"}}
	body = append(body, forward...)
	body = append(body,
		ir.Blank{},
		ir.Comment{Text: "apply first chiral block"},
		cloverMult(0),
		ir.Blank{},
		ir.Comment{Text: "apply second chiral block"},
		cloverMult(1),
		ir.Blank{},
		ir.Comment{Text: "change back from chiral basis"},
		ir.Comment{Text: "(note: required factor of 1/2 is included in clover term normalization)"},
	)
	body = append(body, inverse...)

	return ir.Section{
		Kind:  ir.SectionClover,
		Label: "clover",
		Body: []ir.Node{
			ir.Cond{Directive: "ifdef", Expr: "DSLASH_CLOVER", Then: body, Trailer: "DSLASH_CLOVER"},
			ir.Blank{},
		},
	}, nil
}

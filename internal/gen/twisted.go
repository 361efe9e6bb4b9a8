package gen

import (
	"github.com/roach88/dslashgen/internal/coeff"
	"github.com/roach88/dslashgen/internal/gamma"
	"github.com/roach88/dslashgen/internal/ir"
)

// twistSuffix multiplies a twist term by the mass parameter, which the
// kernel receives as a.
const twistSuffix = "*a"

// twistedRotation computes tmp = (1 + sign·i·a·γ5)·o for every spin and
// color. Temporaries are volatile to keep register pressure down.
func twistedRotation(sign int) ([]ir.Node, error) {
	nodes := []ir.Node{ir.Comment{Text: "apply twisted mass rotation"}}
	for h := 0; h < coeff.Dim; h++ {
		for c := 0; c < 3; c++ {
			var p products
			for s := 0; s < coeff.Dim; s++ {
				oRe, oIm := ir.Out(s, c, ir.Re), ir.Out(s, c, ir.Im)
				if err := p.add(gamma.Identity.At(h, s), 1, oRe, oIm, ""); err != nil {
					return nil, err
				}
				if err := p.add(gamma.IGamma5.At(h, s), sign, oRe, oIm, twistSuffix); err != nil {
					return nil, err
				}
			}
			nodes = append(nodes,
				ir.Decl{Type: string(symSpinorFloat), Volatile: true, Name: ir.Twist(h, c, ir.Re), Init: ir.Sum{Terms: p.re}},
				ir.Decl{Type: string(symSpinorFloat), Volatile: true, Name: ir.Twist(h, c, ir.Im), Init: ir.Sum{Terms: p.im}},
			)
		}
		nodes = append(nodes, ir.Blank{})
	}
	return append(nodes, ir.Blank{}), nil
}

// twistedSection applies the rotation and, unless the kernel also
// accumulates, the normalization b = 1/(1 + a*a).
func twistedSection(cfg Config) (ir.Section, error) {
	rotation, err := twistedRotation(cfg.Sign())
	if err != nil {
		return ir.Section{}, &Error{Code: ErrAlgebra, Direction: -1, Message: "twisted rotation", Err: err}
	}

	var scaled, plain []ir.Node
	scaled = append(scaled, ir.Comment{Text: "scale by b = 1/(1 + a*a)"})
	for _, r := range outputRegs() {
		tmp := ir.Twist(r.Spin, r.Color, r.Part)
		scaled = append(scaled, ir.Assign{LHS: r, Op: "=", RHS: ir.Mul{L: ir.Sym("b"), R: tmp}})
		plain = append(plain, ir.Assign{LHS: r, Op: "=", RHS: tmp})
	}

	body := append(rotation,
		ir.Cond{Directive: "ifndef", Expr: "DSLASH_XPAY", Then: scaled, Else: plain, Trailer: "DSLASH_XPAY"},
		ir.Blank{},
	)
	return ir.Section{
		Kind:  ir.SectionTwisted,
		Label: "twisted",
		Body:  []ir.Node{ir.Block{Body: body}, ir.Blank{}},
	}, nil
}

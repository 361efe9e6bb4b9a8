package gen

import (
	"github.com/roach88/dslashgen/internal/ir"
)

// xpay computes o = k*o + accum under DSLASH_XPAY, where k is a for
// plain kernels and b for twisted ones.
func xpay(cfg Config) []ir.Node {
	scale := ir.Sym("a")
	if cfg.Twisted {
		scale = "b"
	}
	branch := func(width int) []ir.Node {
		var nodes []ir.Node
		for k, r := range outputRegs() {
			nodes = append(nodes, ir.Assign{
				LHS: r,
				Op:  "=",
				RHS: ir.Add{L: ir.Mul{L: scale, R: r}, R: vec("accum", k, width)},
			})
		}
		return nodes
	}
	return []ir.Node{
		ir.Cond{
			Directive: "ifdef",
			Expr:      "DSLASH_XPAY",
			Indent:    true,
			Then: []ir.Node{
				ir.Call{Func: "READ_ACCUM", Args: []ir.Expr{ir.Sym("ACCUMTEX"), ir.Sym("sp_stride")}, Bare: true},
				ir.Cond{
					Directive: "ifdef",
					Expr:      "SPINOR_DOUBLE",
					Then:      branch(doubleWidth),
					Else:      branch(singleWidth),
					Trailer:   "SPINOR_DOUBLE",
				},
			},
			Trailer: "DSLASH_XPAY",
		},
		ir.Blank{},
	}
}

func undefAll(regs []ir.Reg) []ir.Node {
	nodes := make([]ir.Node, 0, len(regs)+1)
	for _, r := range regs {
		nodes = append(nodes, ir.Undef{Name: r})
	}
	return append(nodes, ir.Blank{})
}

func undefAliases(aliases []alias) []ir.Node {
	nodes := make([]ir.Node, 0, len(aliases))
	for _, a := range aliases {
		nodes = append(nodes, ir.Undef{Name: a.name})
	}
	return nodes
}

// teardown undefines every macro the artifact defined: scratch macros,
// input accessors, gauge accessors, clover accessors, then shared
// outputs. Macros defined only on some preprocessor paths are guarded.
func teardown(cfg Config, names Resolver) []ir.Node {
	nodes := []ir.Node{
		ir.Comment{Text: "undefine to prevent warning when precision is changed"},
		ir.Undef{Name: symSpinorFloat},
	}
	if cfg.Kind == KindPack {
		nodes = append(nodes, ir.Blank{})
		return append(nodes, undefAll(inputRegs())...)
	}

	if cfg.SharedFloats > 0 {
		nodes = append(nodes, ir.Undef{Name: symSharedStride})
	}
	nodes = append(nodes,
		ir.Undef{Name: symSharedFloats},
		ir.Blank{},
		ir.Undef{Name: symTempRe},
		ir.Undef{Name: symTempIm},
		ir.Blank{},
		ir.Undef{Name: symNormIdx, Guarded: true},
		ir.Undef{Name: symStrideT, Guarded: true},
		ir.Blank{},
	)
	nodes = append(nodes, undefAll(inputRegs())...)
	nodes = append(nodes, undefAll(append(gaugeRegs(false), gaugeRegs(true)...))...)
	if cfg.Clover {
		nodes = append(nodes, undefAll(cloverPacked())...)
		nodes = append(nodes, undefAliases(cloverMirror())...)
		nodes = append(nodes, undefAliases(cloverSecond())...)
		nodes = append(nodes, ir.Blank{})
	}

	var shared []ir.Reg
	for _, r := range outputRegs() {
		if names.Storage(r) == StorageShared {
			shared = append(shared, r)
		}
	}
	return append(nodes, undefAll(shared)...)
}

// epilog builds everything after the variant section: accumulation, the
// store, and macro teardown.
func epilog(cfg Config, names Resolver) ir.Section {
	body := xpay(cfg)
	body = append(body,
		ir.Comment{Text: "write spinor field back to device memory"},
		ir.Call{Func: "WRITE_SPINOR", Args: []ir.Expr{ir.Sym("sp_stride")}},
		ir.Blank{},
	)
	body = append(body, teardown(cfg, names)...)
	return ir.Section{Kind: ir.SectionEpilog, Label: "epilog", Body: body}
}

package gen

import (
	"strconv"

	"github.com/roach88/dslashgen/internal/ir"
)

// Fixed identifiers shared by the prolog, the direction blocks and the
// epilog.
const (
	symSpinorFloat  = ir.Sym("spinorFloat")
	symSharedFloats = ir.Sym("SHARED_FLOATS_PER_THREAD")
	symSharedStride = ir.Sym("SHARED_STRIDE")
	symTempRe       = ir.Sym("A_re")
	symTempIm       = ir.Sym("A_im")
	symStrideT      = ir.Sym("sp_stride_t")
	symNormIdx      = ir.Sym("sp_norm_idx")
)

// Vector widths of the double and single precision accessor branches.
const (
	doubleWidth = 2
	singleWidth = 4
)

func vec(base string, n, width int) ir.Vec {
	return ir.Vec{Base: base, N: n, Width: width}
}

// inputAccessors binds the input spinor components to lanes of I.
func inputAccessors() []ir.Node {
	branch := func(typ string, width int) []ir.Node {
		nodes := []ir.Node{ir.Define{Name: symSpinorFloat, Value: ir.Lit(typ)}}
		for k, r := range inputRegs() {
			nodes = append(nodes, ir.Define{Name: r, Value: vec("I", k, width)})
		}
		return nodes
	}
	return []ir.Node{
		ir.Comment{Text: "input spinor"},
		ir.Cond{
			Directive: "ifdef",
			Expr:      "SPINOR_DOUBLE",
			Then:      append(branch("double", doubleWidth), ir.Blank{}),
			Else:      branch("float", singleWidth),
			Trailer:   "SPINOR_DOUBLE",
		},
		ir.Blank{},
	}
}

// gaugeAccessors binds the link to lanes of G and defines the conjugate
// transpose aliases used by backward directions.
func gaugeAccessors() []ir.Node {
	branch := func(width int) []ir.Node {
		var nodes []ir.Node
		for k, r := range gaugeRegs(false) {
			nodes = append(nodes, ir.Define{Name: r, Value: vec("G", k, width)})
		}
		return append(nodes,
			ir.Comment{Text: "temporaries"},
			ir.Define{Name: symTempRe, Value: vec("G", 18, width)},
			ir.Define{Name: symTempIm, Value: vec("G", 19, width)},
			ir.Blank{},
		)
	}

	nodes := []ir.Node{
		ir.Comment{Text: "gauge link"},
		ir.Cond{
			Directive: "ifdef",
			Expr:      "GAUGE_FLOAT2",
			Then:      branch(doubleWidth),
			Else:      branch(singleWidth),
			Trailer:   "GAUGE_FLOAT2",
		},
		ir.Blank{},
		ir.Comment{Text: "conjugated gauge link"},
	}
	for _, r := range gaugeRegs(true) {
		src := ir.Gauge(false, r.Col, r.Row, r.Part)
		nodes = append(nodes, ir.Define{Name: r, Value: ir.Signed{Neg: r.Part == ir.Im, X: src}})
	}
	return append(nodes, ir.Blank{})
}

// cloverAccessors binds the packed first chiral block to lanes of C,
// mirrors the missing triangle and aliases the second block.
func cloverAccessors() []ir.Node {
	branch := func(width int) []ir.Node {
		var nodes []ir.Node
		for k, r := range cloverPacked() {
			nodes = append(nodes, ir.Define{Name: r, Value: vec("C", k, width)})
		}
		return nodes
	}

	nodes := []ir.Node{
		ir.Comment{Text: "first chiral block of inverted clover term"},
		ir.Cond{
			Directive: "ifdef",
			Expr:      "CLOVER_DOUBLE",
			Then:      branch(doubleWidth),
			Else:      branch(singleWidth),
			Trailer:   "CLOVER_DOUBLE",
		},
		ir.Blank{},
	}
	for _, a := range cloverMirror() {
		nodes = append(nodes, ir.Define{Name: a.name, Value: a.value})
	}
	nodes = append(nodes, ir.Blank{}, ir.Comment{Text: "second chiral block of inverted clover term (reuses C0,...,C9)"})
	for _, a := range cloverSecond() {
		nodes = append(nodes, ir.Define{Name: a.name, Value: a.value})
	}
	return append(nodes, ir.Blank{})
}

// outputAllocation places the first SharedFloats output floats in shared
// storage and declares the rest as thread-local volatiles.
func outputAllocation(names Resolver) []ir.Node {
	nodes := []ir.Node{ir.Comment{Text: "output spinor"}}
	for _, r := range outputRegs() {
		if names.Storage(r) == StorageShared {
			nodes = append(nodes, ir.Define{Name: r, Value: ir.Shared{Slot: OutSlot(r.Spin, r.Color, r.Part)}})
			continue
		}
		nodes = append(nodes, ir.Decl{Type: string(symSpinorFloat), Volatile: true, Name: r})
	}
	return append(nodes, ir.Blank{})
}

// sharedWindow computes the per-thread base pointer into dynamic shared
// memory. The stride avoids bank conflicts and depends on precision and
// architecture.
func sharedWindow() []ir.Node {
	branch := func(array string, fermi, older int) []ir.Node {
		return []ir.Node{
			ir.Cond{
				Directive: "if",
				Expr:      "(__CUDA_ARCH__ >= 200)",
				Then:      []ir.Node{ir.Define{Name: symSharedStride, Value: ir.Lit(strconv.Itoa(fermi)), Comment: "to avoid bank conflicts on Fermi"}},
				Else:      []ir.Node{ir.Define{Name: symSharedStride, Value: ir.Lit(strconv.Itoa(older)), Comment: "to avoid bank conflicts on G80 and GT200"}},
			},
			ir.Raw{Text: "extern __shared__ spinorFloat " + array + "[];"},
			ir.Raw{Text: "volatile spinorFloat *s = " + array + " + SHARED_FLOATS_PER_THREAD*SHARED_STRIDE*(threadIdx.x/SHARED_STRIDE)"},
			ir.Raw{Text: "                                  + (threadIdx.x % SHARED_STRIDE);"},
		}
	}
	return []ir.Node{
		ir.Cond{
			Directive: "ifdef",
			Expr:      "SPINOR_DOUBLE",
			Then:      branch("sd_data", 16, 8),
			Else:      branch("ss_data", 32, 16),
			Trailer:   "SPINOR_DOUBLE",
		},
		ir.Blank{},
	}
}

// siteSetup computes the thread's site index and coordinates, shifting
// the time coordinate for multi-process runs.
func siteSetup() []ir.Node {
	return []ir.Node{
		ir.Raw{Text: "int sid = blockIdx.x*blockDim.x + threadIdx.x;"},
		ir.Raw{Text: "if (sid >= param.threads) return;"},
		ir.Blank{},
		ir.Raw{Text: "int X, x1, x2, x3, x4;"},
		ir.Call{Func: "coordsFromIndex", Args: []ir.Expr{
			ir.Sym("X"), ir.Sym("x1"), ir.Sym("x2"), ir.Sym("x3"), ir.Sym("x4"), ir.Sym("sid"), ir.Sym("param.parity"),
		}},
		ir.Blank{},
		ir.Cond{
			Directive: "ifdef",
			Expr:      "MULTI_GPU",
			Then: []ir.Node{
				ir.Comment{Text: "now calculate the new x4 given the T offset and space between T slices"},
				ir.Raw{Text: "int x4_new = (x4 + param.tOffset) * param.tMul;"},
				ir.Raw{Text: "sid += Vs*(x4_new - x4); // new spatial index"},
				ir.Raw{Text: "X += X3X2X1*(x4_new - x4);"},
				ir.Raw{Text: "int x1diff = ((x2 + x3 + x4_new + param.parity) & 1) - ((x2 + x3 + x4 + param.parity) & 1);"},
				ir.Raw{Text: "x1 += x1diff;"},
				ir.Raw{Text: "X += x1diff;"},
				ir.Raw{Text: "x4 = x4_new;"},
			},
			Trailer: "MULTI_GPU",
		},
		ir.Blank{},
	}
}

// zeroOutputs clears every output component.
func zeroOutputs() []ir.Node {
	var nodes []ir.Node
	for s := 0; s < 4; s++ {
		for c := 0; c < 3; c++ {
			nodes = append(nodes, ir.Chain{
				Targets: []ir.Operand{ir.Out(s, c, ir.Re), ir.Out(s, c, ir.Im)},
				Value:   ir.Lit("0"),
			})
		}
	}
	return append(nodes, ir.Blank{})
}

// title is the banner comment of a dslash artifact.
func title(cfg Config) string {
	if cfg.Dagger {
		return "*** CUDA DSLASH DAGGER ***"
	}
	return "*** CUDA DSLASH ***"
}

// prolog builds everything that precedes the first direction block.
func prolog(cfg Config, names Resolver) ir.Section {
	body := []ir.Node{
		ir.Comment{Text: title(cfg)},
		ir.Blank{},
		ir.Define{Name: symSharedFloats, Value: ir.Lit(strconv.Itoa(cfg.SharedFloats))},
		ir.Blank{},
	}
	body = append(body, inputAccessors()...)
	body = append(body, gaugeAccessors()...)
	if cfg.Clover {
		body = append(body, cloverAccessors()...)
	}
	body = append(body, outputAllocation(names)...)
	body = append(body,
		ir.Blank{},
		ir.Include{Path: "read_gauge.h"},
		ir.Include{Path: "read_clover.h"},
		ir.Include{Path: "io_spinor.h"},
		ir.Blank{},
	)
	body = append(body, siteSetup()...)
	if cfg.SharedFloats > 0 {
		body = append(body, sharedWindow()...)
	}
	body = append(body, zeroOutputs()...)
	return ir.Section{Kind: ir.SectionProlog, Label: "prolog", Body: body}
}

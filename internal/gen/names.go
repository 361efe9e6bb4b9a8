package gen

import (
	"fmt"

	"github.com/roach88/dslashgen/internal/ir"
)

// Storage says where a register lives in the emitted kernel.
type Storage uint8

const (
	// StorageLocal is a thread-local variable declared in the kernel body.
	StorageLocal Storage = iota

	// StorageShared is a macro aliasing a slot of the shared window.
	StorageShared

	// StorageAccessor is a macro aliasing a lane of a loaded vector.
	StorageAccessor
)

func (s Storage) String() string {
	switch s {
	case StorageShared:
		return "shared"
	case StorageAccessor:
		return "accessor"
	default:
		return "local"
	}
}

// Resolver is the single authority for register identifiers and storage
// tiers. It implements render.Namer.
type Resolver struct {
	shared int
}

// NewResolver returns the resolver for cfg.
func NewResolver(cfg Config) Resolver {
	return Resolver{shared: cfg.SharedFloats}
}

// OutSlot is the position of an output float in the per-site layout.
func OutSlot(s, c int, p ir.Part) int {
	return 2*(3*s+c) + int(p)
}

// Storage returns the tier of r.
func (n Resolver) Storage(r ir.Reg) Storage {
	switch r.Role {
	case ir.RoleIn, ir.RoleGauge, ir.RoleGaugeConj, ir.RoleClover:
		return StorageAccessor
	case ir.RoleOut:
		if OutSlot(r.Spin, r.Color, r.Part) < n.shared {
			return StorageShared
		}
	}
	return StorageLocal
}

// Name returns the identifier of r.
func (n Resolver) Name(r ir.Reg) string {
	suffix := "_re"
	if r.Part == ir.Im {
		suffix = "_im"
	}
	switch r.Role {
	case ir.RoleIn:
		return fmt.Sprintf("i%d%d%s", r.Spin, r.Color, suffix)
	case ir.RoleOut:
		return fmt.Sprintf("o%d%d%s", r.Spin, r.Color, suffix)
	case ir.RoleGauge:
		return fmt.Sprintf("g%d%d%s", r.Row, r.Col, suffix)
	case ir.RoleGaugeConj:
		return fmt.Sprintf("gT%d%d%s", r.Row, r.Col, suffix)
	case ir.RoleClover:
		return fmt.Sprintf("c%d%d_%d%d%s", r.Row/3+2*r.Block, r.Row%3, r.Col/3+2*r.Block, r.Col%3, suffix)
	case ir.RoleHalf:
		return fmt.Sprintf("%s%d%s", halfLetter(r.Spin, "a", "b"), r.Color, suffix)
	case ir.RoleHalfProd:
		return fmt.Sprintf("%s%d%s", halfLetter(r.Spin, "A", "B"), r.Color, suffix)
	case ir.RoleChiral:
		return fmt.Sprintf("a%d%d%s", r.Spin+2*r.Block, r.Color, suffix)
	case ir.RoleTwist:
		return fmt.Sprintf("tmp%d%d%s", r.Spin, r.Color, suffix)
	}
	return fmt.Sprintf("r%d_%d%d%s", r.Role, r.Spin, r.Color, suffix)
}

func halfLetter(h int, first, second string) string {
	if h == 0 {
		return first
	}
	return second
}

// Register enumerations. Definitions and undefinitions are both driven
// from these so the two always agree.

var parts = [2]ir.Part{ir.Re, ir.Im}

func inputRegs() []ir.Reg {
	regs := make([]ir.Reg, 0, 24)
	for s := 0; s < 4; s++ {
		for c := 0; c < 3; c++ {
			for _, p := range parts {
				regs = append(regs, ir.In(s, c, p))
			}
		}
	}
	return regs
}

func outputRegs() []ir.Reg {
	regs := make([]ir.Reg, 0, 24)
	for s := 0; s < 4; s++ {
		for c := 0; c < 3; c++ {
			for _, p := range parts {
				regs = append(regs, ir.Out(s, c, p))
			}
		}
	}
	return regs
}

func gaugeRegs(conj bool) []ir.Reg {
	regs := make([]ir.Reg, 0, 18)
	for m := 0; m < 3; m++ {
		for n := 0; n < 3; n++ {
			for _, p := range parts {
				regs = append(regs, ir.Gauge(conj, m, n, p))
			}
		}
	}
	return regs
}

// cloverPacked lists the stored entries of the first chiral block in
// storage order: the six real diagonal entries, then the strictly lower
// triangle column by column.
func cloverPacked() []ir.Reg {
	regs := make([]ir.Reg, 0, 36)
	for m := 0; m < 6; m++ {
		regs = append(regs, ir.Clover(0, m, m, ir.Re))
	}
	for n := 0; n < 6; n++ {
		for m := n + 1; m < 6; m++ {
			regs = append(regs, ir.Clover(0, m, n, ir.Re), ir.Clover(0, m, n, ir.Im))
		}
	}
	return regs
}

// alias is a macro that renames one register as another expression.
type alias struct {
	name  ir.Reg
	value ir.Expr
}

// cloverMirror derives the upper triangle from the stored lower triangle
// by Hermiticity.
func cloverMirror() []alias {
	var out []alias
	for n := 0; n < 6; n++ {
		for m := 0; m < n; m++ {
			out = append(out,
				alias{ir.Clover(0, m, n, ir.Re), ir.Signed{X: ir.Clover(0, n, m, ir.Re)}},
				alias{ir.Clover(0, m, n, ir.Im), ir.Signed{Neg: true, X: ir.Clover(0, n, m, ir.Im)}},
			)
		}
	}
	return out
}

// cloverSecond maps the second chiral block onto the first block's names;
// the second READ_CLOVER reuses the same storage.
func cloverSecond() []alias {
	var out []alias
	for n := 0; n < 6; n++ {
		for m := 0; m < 6; m++ {
			out = append(out, alias{ir.Clover(1, m, n, ir.Re), ir.Clover(0, m, n, ir.Re)})
			if m != n {
				out = append(out, alias{ir.Clover(1, m, n, ir.Im), ir.Clover(0, m, n, ir.Im)})
			}
		}
	}
	return out
}

package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/dslashgen/internal/ir"
	"github.com/roach88/dslashgen/internal/render"
)

// DirectionInfo summarizes one direction block.
type DirectionInfo struct {
	Direction  int    `json:"direction" yaml:"direction"`
	Projector  string `json:"projector" yaml:"projector"`
	Load       string `json:"load" yaml:"load"`
	GaugeLoads int    `json:"gauge_loads" yaml:"gauge_loads"`
	GaugeFixed bool   `json:"gauge_fixed" yaml:"gauge_fixed"`
	Halo       bool   `json:"halo" yaml:"halo"`
}

// FaceInfo summarizes one pack face case.
type FaceInfo struct {
	Projector string `json:"projector" yaml:"projector"`
	Load      string `json:"load" yaml:"load"`
	Writes    int    `json:"writes" yaml:"writes"`
}

// Summary is a structural description of a kernel tree. It is computed
// from the ir, not by matching rendered text.
type Summary struct {
	Title         string          `json:"title,omitempty" yaml:"title,omitempty"`
	Kind          string          `json:"kind" yaml:"kind"`
	Dagger        bool            `json:"dagger" yaml:"dagger"`
	Clover        bool            `json:"clover" yaml:"clover"`
	Twisted       bool            `json:"twisted" yaml:"twisted"`
	SharedFloats  int             `json:"shared_floats" yaml:"shared_floats"`
	SharedOutputs int             `json:"shared_outputs" yaml:"shared_outputs"`
	LocalOutputs  int             `json:"local_outputs" yaml:"local_outputs"`
	Directions    []DirectionInfo `json:"directions,omitempty" yaml:"directions,omitempty"`
	Faces         []FaceInfo      `json:"faces,omitempty" yaml:"faces,omitempty"`
	CloverGuard   bool            `json:"clover_guard" yaml:"clover_guard"`
	CloverReads   int             `json:"clover_reads" yaml:"clover_reads"`
	TwistRotation bool            `json:"twist_rotation" yaml:"twist_rotation"`
	Xpay          bool            `json:"xpay" yaml:"xpay"`
	Includes      []string        `json:"includes" yaml:"includes"`
	Defined       int             `json:"defined" yaml:"defined"`
	Undefined     int             `json:"undefined" yaml:"undefined"`
	Leaked        []string        `json:"leaked,omitempty" yaml:"leaked,omitempty"`
	UndefOrder    []string        `json:"undef_order" yaml:"undef_order"`
}

// Inspect walks the kernel tree and summarizes its structure.
func Inspect(k *Kernel) Summary {
	cfg := k.Config
	sum := Summary{
		Kind:         string(cfg.Kind),
		Dagger:       cfg.Dagger,
		Clover:       cfg.Clover,
		Twisted:      cfg.Twisted,
		SharedFloats: cfg.SharedFloats,
		Includes:     []string{},
		UndefOrder:   []string{},
	}

	defined := map[string]bool{}
	undefined := map[string]bool{}
	name := func(op ir.Operand) string {
		id, err := render.Expr(op, k.Names)
		if err != nil {
			return fmt.Sprint(op)
		}
		return id
	}

	ir.Walk(k.Nodes, func(n ir.Node) bool {
		switch v := n.(type) {
		case ir.Section:
			switch v.Kind {
			case ir.SectionProlog:
				if len(v.Body) > 0 {
					if c, ok := v.Body[0].(ir.Comment); ok {
						sum.Title = c.Text
					}
				}
			case ir.SectionDirection:
				info := inspectHop(v.Body)
				info.Direction = len(sum.Directions)
				info.Projector = v.Label
				sum.Directions = append(sum.Directions, info)
			case ir.SectionFace:
				hop := inspectHop(v.Body)
				sum.Faces = append(sum.Faces, FaceInfo{Projector: v.Label, Load: hop.Load, Writes: countCalls(v.Body, "WRITE_HALF_SPINOR")})
			case ir.SectionClover:
				sum.CloverReads = countCalls(v.Body, "READ_CLOVER")
			case ir.SectionTwisted:
				sum.TwistRotation = true
			}
		case ir.Cond:
			switch v.Expr {
			case "DSLASH_CLOVER":
				sum.CloverGuard = true
			case "DSLASH_XPAY":
				sum.Xpay = true
			}
		case ir.Define:
			if r, ok := v.Name.(ir.Reg); ok && r.Role == ir.RoleOut {
				sum.SharedOutputs++
			}
			if id := name(v.Name); !defined[id] {
				defined[id] = true
				sum.Defined++
			}
		case ir.Decl:
			if r, ok := v.Name.(ir.Reg); ok && r.Role == ir.RoleOut && v.Volatile {
				sum.LocalOutputs++
			}
		case ir.Undef:
			if id := name(v.Name); !undefined[id] {
				undefined[id] = true
				sum.Undefined++
			}
			cat := undefCategory(v.Name)
			if len(sum.UndefOrder) == 0 || sum.UndefOrder[len(sum.UndefOrder)-1] != cat {
				sum.UndefOrder = append(sum.UndefOrder, cat)
			}
		case ir.Include:
			sum.Includes = append(sum.Includes, v.Path)
		}
		return true
	})

	for id := range defined {
		if !undefined[id] {
			sum.Leaked = append(sum.Leaked, id)
		}
	}
	slices.Sort(sum.Leaked)
	return sum
}

func undefCategory(op ir.Operand) string {
	if r, ok := op.(ir.Reg); ok {
		return r.Role.String()
	}
	return "scratch"
}

func inspectHop(body []ir.Node) DirectionInfo {
	var info DirectionInfo
	ir.Walk(body, func(n ir.Node) bool {
		switch v := n.(type) {
		case ir.Call:
			if info.Load == "" && strings.HasPrefix(v.Func, "READ_SPINOR") {
				info.Load = v.Func
			}
			if v.Func == "READ_GAUGE_MATRIX" {
				info.GaugeLoads++
			}
		case ir.If:
			if v.Cond == gaugeFixedCond {
				info.GaugeFixed = true
			}
		case ir.Cond:
			if v.Expr == "MULTI_GPU" {
				info.Halo = true
			}
		}
		return true
	})
	return info
}

func countCalls(body []ir.Node, fn string) int {
	n := 0
	ir.Walk(body, func(node ir.Node) bool {
		if c, ok := node.(ir.Call); ok && c.Func == fn {
			n++
		}
		return true
	})
	return n
}

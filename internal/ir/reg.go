package ir

import "fmt"

// Role identifies which family of kernel values a register belongs to.
type Role uint8

const (
	RoleIn Role = iota
	RoleOut
	RoleGauge
	RoleGaugeConj
	RoleClover
	RoleHalf
	RoleHalfProd
	RoleChiral
	RoleTwist
)

var roleNames = [...]string{
	RoleIn:        "in",
	RoleOut:       "out",
	RoleGauge:     "gauge",
	RoleGaugeConj: "gauge_conj",
	RoleClover:    "clover",
	RoleHalf:      "half",
	RoleHalfProd:  "half_prod",
	RoleChiral:    "chiral",
	RoleTwist:     "twist",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", r)
}

// Part selects the real or imaginary half of a complex value.
type Part uint8

const (
	Re Part = iota
	Im
)

func (p Part) String() string {
	if p == Im {
		return "im"
	}
	return "re"
}

// Reg is a symbolic register key. Which fields are meaningful depends on
// Role:
//
//	In, Out, Twist  Spin, Color
//	Gauge*          Row, Col (color indices of the 3×3 link)
//	Clover          Block, Row, Col (3*spin+color within the 6×6 block)
//	Half, HalfProd  Spin (0 or 1), Color
//	Chiral          Block, Spin (0 or 1), Color
//
// Regs are comparable and can key maps.
type Reg struct {
	Role  Role
	Spin  int
	Color int
	Block int
	Row   int
	Col   int
	Part  Part
}

// With returns r with its part replaced.
func (r Reg) With(p Part) Reg {
	r.Part = p
	return r
}

func (r Reg) String() string {
	return fmt.Sprintf("%s(s%d c%d b%d %d,%d %s)", r.Role, r.Spin, r.Color, r.Block, r.Row, r.Col, r.Part)
}

// In is an input spinor component.
func In(s, c int, p Part) Reg { return Reg{Role: RoleIn, Spin: s, Color: c, Part: p} }

// Out is an output spinor component.
func Out(s, c int, p Part) Reg { return Reg{Role: RoleOut, Spin: s, Color: c, Part: p} }

// Gauge is a link element; conj selects the conjugate transpose alias.
func Gauge(conj bool, m, n int, p Part) Reg {
	role := RoleGauge
	if conj {
		role = RoleGaugeConj
	}
	return Reg{Role: role, Row: m, Col: n, Part: p}
}

// Clover is an element of chiral block b of the clover term.
func Clover(b, row, col int, p Part) Reg {
	return Reg{Role: RoleClover, Block: b, Row: row, Col: col, Part: p}
}

// Half is a projected half-spinor component.
func Half(h, c int, p Part) Reg { return Reg{Role: RoleHalf, Spin: h, Color: c, Part: p} }

// Prod is a half-spinor component after the gauge multiply.
func Prod(h, c int, p Part) Reg { return Reg{Role: RoleHalfProd, Spin: h, Color: c, Part: p} }

// Chiral is a chiral-basis temporary of block b.
func Chiral(b, s, c int, p Part) Reg {
	return Reg{Role: RoleChiral, Block: b, Spin: s, Color: c, Part: p}
}

// Twist is a twisted-rotation temporary.
func Twist(s, c int, p Part) Reg { return Reg{Role: RoleTwist, Spin: s, Color: c, Part: p} }

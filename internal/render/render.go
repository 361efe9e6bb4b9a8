// Package render turns a kernel IR tree into source text in a single pass.
//
// Identifiers for registers come from a Namer, so the renderer never knows
// how names are spelled or where values are stored.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/dslashgen/internal/ir"
)

// Indent is the unit of indentation for nested scopes.
const Indent = "    "

// Namer maps a register to its identifier.
type Namer interface {
	Name(r ir.Reg) string
}

// NamerFunc adapts a function to Namer.
type NamerFunc func(ir.Reg) string

// Name implements Namer.
func (f NamerFunc) Name(r ir.Reg) string { return f(r) }

// Render renders nodes to text. Every line ends with a newline.
func Render(nodes []ir.Node, names Namer) ([]byte, error) {
	r := &renderer{names: names}
	r.nodes(nodes)
	if r.err != nil {
		return nil, r.err
	}
	return r.buf.Bytes(), nil
}

// Expr renders a single expression.
func Expr(e ir.Expr, names Namer) (string, error) {
	r := &renderer{names: names}
	s := r.expr(e)
	if r.err != nil {
		return "", r.err
	}
	return s, nil
}

type renderer struct {
	names  Namer
	buf    bytes.Buffer
	indent int
	err    error
}

func (r *renderer) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("render: "+format, args...)
	}
}

// line writes one indented line. Empty lines carry no indentation.
func (r *renderer) line(s string) {
	if s != "" {
		for i := 0; i < r.indent; i++ {
			r.buf.WriteString(Indent)
		}
		r.buf.WriteString(s)
	}
	r.buf.WriteByte('\n')
}

func (r *renderer) linef(format string, args ...any) {
	r.line(fmt.Sprintf(format, args...))
}

func (r *renderer) nested(nodes []ir.Node) {
	r.indent++
	r.nodes(nodes)
	r.indent--
}

func (r *renderer) nodes(nodes []ir.Node) {
	for _, n := range nodes {
		if r.err != nil {
			return
		}
		r.node(n)
	}
}

func (r *renderer) node(n ir.Node) {
	switch v := n.(type) {
	case ir.Comment:
		if v.Text == "" {
			r.line("//")
			return
		}
		r.line("// " + v.Text)
	case ir.Blank:
		r.line("")
	case ir.Define:
		s := "#define " + r.expr(v.Name) + " " + r.expr(v.Value)
		if v.Comment != "" {
			s += " // " + v.Comment
		}
		r.line(s)
	case ir.Undef:
		name := r.expr(v.Name)
		if v.Guarded {
			r.line("#ifdef " + name)
			r.line("#undef " + name)
			r.line("#endif")
			return
		}
		r.line("#undef " + name)
	case ir.Include:
		r.linef("#include %q", v.Path)
	case ir.Cond:
		r.cond(v)
	case ir.Block:
		r.line("{")
		r.nested(v.Body)
		r.line("}")
	case ir.If:
		head := "if (" + v.Cond + ") {"
		if v.Comment != "" {
			head += " // " + v.Comment
		}
		r.line(head)
		r.nested(v.Then)
		if len(v.Else) > 0 {
			r.line("} else {")
			r.nested(v.Else)
		}
		r.line("}")
	case ir.Switch:
		r.line("switch(" + v.Expr + ") {")
		for _, c := range v.Cases {
			r.line("case " + c.Label + ":")
			r.indent++
			r.line("{")
			r.nested(c.Body)
			r.line("}")
			r.line("break;")
			r.indent--
		}
		r.line("}")
	case ir.Section:
		r.nodes(v.Body)
	default:
		r.line(r.stmt(n))
	}
}

func (r *renderer) cond(c ir.Cond) {
	head := "#" + c.Directive
	if c.Expr != "" {
		head += " " + c.Expr
	}
	r.line(head)
	body := r.nodes
	if c.Indent {
		body = r.nested
	}
	body(c.Then)
	if len(c.Else) > 0 {
		r.line("#else")
		body(c.Else)
	}
	if c.Trailer != "" {
		r.line("#endif // " + c.Trailer)
		return
	}
	r.line("#endif")
}

// stmt renders a simple statement without indentation or newline.
func (r *renderer) stmt(n ir.Node) string {
	switch v := n.(type) {
	case ir.Raw:
		return v.Text
	case ir.Decl:
		var sb strings.Builder
		if v.Volatile {
			sb.WriteString("volatile ")
		}
		sb.WriteString(v.Type)
		sb.WriteByte(' ')
		sb.WriteString(r.expr(v.Name))
		if v.Init != nil {
			sb.WriteString(" = ")
			sb.WriteString(r.expr(v.Init))
		}
		sb.WriteByte(';')
		return sb.String()
	case ir.Assign:
		switch v.Op {
		case "=", "+=", "-=":
		default:
			r.fail("unsupported assignment operator %q", v.Op)
		}
		s := r.expr(v.LHS) + " " + v.Op + " " + r.expr(v.RHS) + ";"
		if v.Comment != "" {
			s += " // " + v.Comment
		}
		return s
	case ir.Chain:
		var sb strings.Builder
		for _, t := range v.Targets {
			sb.WriteString(r.expr(t))
			sb.WriteString(" = ")
		}
		sb.WriteString(r.expr(v.Value))
		sb.WriteByte(';')
		return sb.String()
	case ir.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = r.expr(a)
		}
		s := v.Func + "(" + strings.Join(args, ", ") + ")"
		if !v.Bare {
			s += ";"
		}
		return s
	case ir.Line:
		parts := make([]string, len(v.Stmts))
		for i, s := range v.Stmts {
			parts[i] = r.stmt(s)
		}
		return strings.Join(parts, v.Sep)
	default:
		r.fail("unsupported node %T", n)
		return ""
	}
}

var lanes = [4]string{"x", "y", "z", "w"}

func (r *renderer) expr(e ir.Expr) string {
	switch v := e.(type) {
	case ir.Reg:
		return r.names.Name(v)
	case ir.Sym:
		return string(v)
	case ir.Lit:
		return string(v)
	case ir.Vec:
		if v.Width != 2 && v.Width != 4 {
			r.fail("vector width %d not supported", v.Width)
			return ""
		}
		return fmt.Sprintf("%s%d.%s", v.Base, v.N/v.Width, lanes[v.N%v.Width])
	case ir.Shared:
		return fmt.Sprintf("s[%d*SHARED_STRIDE]", v.Slot)
	case ir.Sum:
		return r.sum(v)
	case ir.Signed:
		if v.Neg {
			return "(-" + r.expr(v.X) + ")"
		}
		return "(+" + r.expr(v.X) + ")"
	case ir.Mul:
		if v.Spaced {
			return r.expr(v.L) + " * " + r.expr(v.R)
		}
		return r.expr(v.L) + "*" + r.expr(v.R)
	case ir.Add:
		return r.expr(v.L) + " + " + r.expr(v.R)
	case nil:
		r.fail("nil expression")
		return ""
	default:
		r.fail("unsupported expression %T", e)
		return ""
	}
}

func (r *renderer) sum(s ir.Sum) string {
	if len(s.Terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range s.Terms {
		sign, ok := signs[t.Coef]
		if !ok {
			r.fail("term coefficient %d not in {±1, ±2}", t.Coef)
			return ""
		}
		if s.Spaced {
			sign = spacedSign(t.Coef, i == 0)
		}
		sb.WriteString(sign)
		sb.WriteString(r.expr(t.X))
		sb.WriteString(t.Suffix)
	}
	return sb.String()
}

var signs = map[int]string{1: "+", -1: "-", 2: "+2*", -2: "-2*"}

func spacedSign(coef int, first bool) string {
	mag := ""
	if coef == 2 || coef == -2 {
		mag = "2*"
	}
	switch {
	case first && coef > 0:
		return mag
	case first:
		return "-" + mag
	case coef > 0:
		return " + " + mag
	default:
		return " - " + mag
	}
}

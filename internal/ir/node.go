package ir

// Expr is a right-hand-side expression. Sealed.
type Expr interface {
	isExpr()
}

// Operand is an expression that names a single value. Sealed.
type Operand interface {
	Expr
	isOperand()
}

// Sym is a fixed identifier that is not a register, e.g. "sp_idx" or "A_re".
type Sym string

// Lit is literal source text such as "0" or "sid+Vh".
type Lit string

// Vec addresses float N of a vector-typed load with the given lane width
// (2 for float2/double2, 4 for float4). Rendered as Base + N/Width + "." + lane.
type Vec struct {
	Base  string
	N     int
	Width int
}

// Shared addresses slot K of the per-thread shared-memory window.
type Shared struct {
	Slot int
}

// Term is one signed summand. Coef is ±1 or ±2. Suffix is appended to the
// operand verbatim, e.g. "*a".
type Term struct {
	Coef   int
	X      Operand
	Suffix string
}

// Sum is a signed sum. Compact sums render "+x-y"; spaced sums render
// "x - y" and omit a leading plus.
type Sum struct {
	Terms  []Term
	Spaced bool
}

// Signed renders "(+x)" or "(-x)".
type Signed struct {
	Neg bool
	X   Operand
}

// Mul is a product of two factors.
type Mul struct {
	L, R   Expr
	Spaced bool
}

// Add renders "l + r".
type Add struct {
	L, R Expr
}

func (Reg) isExpr()    {}
func (Sym) isExpr()    {}
func (Lit) isExpr()    {}
func (Vec) isExpr()    {}
func (Shared) isExpr() {}
func (Sum) isExpr()    {}
func (Signed) isExpr() {}
func (Mul) isExpr()    {}
func (Add) isExpr()    {}

func (Reg) isOperand() {}
func (Sym) isOperand() {}

// Node is one element of the kernel tree. Sealed.
type Node interface {
	isNode()
}

// Comment renders "// Text".
type Comment struct {
	Text string
}

// Blank renders an empty line.
type Blank struct{}

// Raw renders Text verbatim as one line.
type Raw struct {
	Text string
}

// Define renders "#define Name Value", with an optional trailing comment.
type Define struct {
	Name    Operand
	Value   Expr
	Comment string
}

// Undef renders "#undef Name". Guarded undefs are wrapped in #ifdef.
type Undef struct {
	Name    Operand
	Guarded bool
}

// Include renders `#include "Path"`.
type Include struct {
	Path string
}

// Cond is a preprocessor conditional. Directive is "ifdef", "ifndef" or
// "if". Trailer is appended to #endif as a comment. Indent shifts both
// branches one level to the right.
type Cond struct {
	Directive string
	Expr      string
	Then      []Node
	Else      []Node
	Trailer   string
	Indent    bool
}

// Decl declares a local. Init may be nil.
type Decl struct {
	Type     string
	Volatile bool
	Name     Operand
	Init     Expr
}

// Assign renders "LHS Op RHS;" where Op is "=", "+=" or "-=".
type Assign struct {
	LHS     Operand
	Op      string
	RHS     Expr
	Comment string // trailing, optional
}

// Chain renders "a = b = ... = Value;".
type Chain struct {
	Targets []Operand
	Value   Expr
}

// Call renders "Func(args);". Bare calls omit the semicolon.
type Call struct {
	Func string
	Args []Expr
	Bare bool
}

// Line renders several simple statements on one line.
type Line struct {
	Stmts []Node
	Sep   string
}

// Block renders a braced scope.
type Block struct {
	Body []Node
}

// If renders "if (Cond) { ... } else { ... }". Comment follows the
// opening brace.
type If struct {
	Cond    string
	Then    []Node
	Else    []Node
	Comment string
}

// Case is one arm of a Switch; its body is wrapped in a block and
// followed by break.
type Case struct {
	Label string
	Body  []Node
}

// Switch renders "switch(Expr) { case ...: }".
type Switch struct {
	Expr  string
	Cases []Case
}

// SectionKind labels a Section.
type SectionKind uint8

const (
	SectionProlog SectionKind = iota
	SectionDirection
	SectionClover
	SectionTwisted
	SectionEpilog
	SectionPack
	SectionFace
)

var sectionNames = [...]string{
	SectionProlog:    "prolog",
	SectionDirection: "direction",
	SectionClover:    "clover",
	SectionTwisted:   "twisted",
	SectionEpilog:    "epilog",
	SectionPack:      "pack",
	SectionFace:      "face",
}

func (k SectionKind) String() string {
	if int(k) < len(sectionNames) {
		return sectionNames[k]
	}
	return "section"
}

// Section groups nodes for inspection. It renders as its body.
type Section struct {
	Kind  SectionKind
	Label string
	Body  []Node
}

func (Comment) isNode() {}
func (Blank) isNode()   {}
func (Raw) isNode()     {}
func (Define) isNode()  {}
func (Undef) isNode()   {}
func (Include) isNode() {}
func (Cond) isNode()    {}
func (Decl) isNode()    {}
func (Assign) isNode()  {}
func (Chain) isNode()   {}
func (Call) isNode()    {}
func (Line) isNode()    {}
func (Block) isNode()   {}
func (If) isNode()      {}
func (Switch) isNode()  {}
func (Section) isNode() {}

// Walk calls fn for every node in pre-order, descending into every
// container. When fn returns false the node's children are skipped.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch v := n.(type) {
		case Cond:
			Walk(v.Then, fn)
			Walk(v.Else, fn)
		case Line:
			Walk(v.Stmts, fn)
		case Block:
			Walk(v.Body, fn)
		case If:
			Walk(v.Then, fn)
			Walk(v.Else, fn)
		case Switch:
			for _, c := range v.Cases {
				Walk(c.Body, fn)
			}
		case Section:
			Walk(v.Body, fn)
		}
	}
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegIsComparableKey(t *testing.T) {
	seen := map[Reg]int{}
	seen[Out(0, 1, Re)]++
	seen[Out(0, 1, Re)]++
	seen[Out(0, 1, Im)]++
	assert.Equal(t, 2, seen[Out(0, 1, Re)])
	assert.Len(t, seen, 2)

	assert.Equal(t, Out(3, 2, Im), Out(3, 2, Re).With(Im))
	assert.Equal(t, RoleGaugeConj, Gauge(true, 0, 1, Re).Role)
	assert.Equal(t, RoleGauge, Gauge(false, 0, 1, Re).Role)
	assert.Equal(t, "clover(s0 c0 b1 2,5 im)", Clover(1, 2, 5, Im).String())
}

func TestWalkVisitsNestedNodes(t *testing.T) {
	tree := []Node{
		Section{Kind: SectionDirection, Body: []Node{
			Comment{Text: "Projector P0-"},
			If{
				Cond: "gauge_fixed",
				Then: []Node{Block{Body: []Node{Assign{LHS: Out(0, 0, Re), Op: "+=", RHS: Prod(0, 0, Re)}}}},
				Else: []Node{Cond{Directive: "ifdef", Expr: "X", Then: []Node{Raw{Text: "x"}}}},
			},
		}},
		Switch{Expr: "dim", Cases: []Case{{Label: "0", Body: []Node{Blank{}}}}},
	}

	var kinds []string
	Walk(tree, func(n Node) bool {
		switch n.(type) {
		case Section:
			kinds = append(kinds, "section")
		case Comment:
			kinds = append(kinds, "comment")
		case If:
			kinds = append(kinds, "if")
		case Block:
			kinds = append(kinds, "block")
		case Assign:
			kinds = append(kinds, "assign")
		case Cond:
			kinds = append(kinds, "cond")
		case Raw:
			kinds = append(kinds, "raw")
		case Switch:
			kinds = append(kinds, "switch")
		case Blank:
			kinds = append(kinds, "blank")
		}
		return true
	})
	assert.Equal(t, []string{"section", "comment", "if", "block", "assign", "cond", "raw", "switch", "blank"}, kinds)
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := []Node{
		Section{Kind: SectionClover, Body: []Node{Raw{Text: "inner"}}},
		Raw{Text: "outer"},
	}
	var raws []string
	Walk(tree, func(n Node) bool {
		if r, ok := n.(Raw); ok {
			raws = append(raws, r.Text)
		}
		_, isSection := n.(Section)
		return !isSection
	})
	assert.Equal(t, []string{"outer"}, raws)
}

func TestSectionKindString(t *testing.T) {
	assert.Equal(t, "direction", SectionDirection.String())
	assert.Equal(t, "face", SectionFace.String())
	assert.Equal(t, "in", RoleIn.String())
	assert.Equal(t, "im", Im.String())
}

// Package gen lowers the Wilson-Dirac hopping operator into fully unrolled
// kernel source for one configuration.
//
// Generation is a pure function of Config: Build assembles an ir tree
// (prolog, eight direction blocks, the optional clover or twisted-mass
// section, epilog) and Render turns it into text through the Resolver.
// Nothing is shared between calls, so kernels may be built concurrently.
package gen

import (
	"github.com/roach88/dslashgen/internal/ir"
	"github.com/roach88/dslashgen/internal/render"
)

// Kernel is a built but unrendered artifact.
type Kernel struct {
	Config Config
	Names  Resolver
	Nodes  []ir.Node
}

// Build validates cfg and assembles the kernel tree.
func Build(cfg Config) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	names := NewResolver(cfg)

	if cfg.Kind == KindPack {
		nodes, err := buildPack(cfg, names)
		if err != nil {
			return nil, err
		}
		return &Kernel{Config: cfg, Names: names, Nodes: nodes}, nil
	}

	nodes := []ir.Node{prolog(cfg, names)}
	for dir := 0; dir < NumDirections; dir++ {
		sec, err := buildDirection(cfg, dir)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sec)
	}

	switch {
	case cfg.Clover:
		sec, err := cloverSection()
		if err != nil {
			return nil, &Error{Code: ErrAlgebra, Direction: -1, Message: "clover basis change", Err: err}
		}
		nodes = append(nodes, sec)
	case cfg.Twisted:
		sec, err := twistedSection(cfg)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sec)
	}

	nodes = append(nodes, epilog(cfg, names))
	return &Kernel{Config: cfg, Names: names, Nodes: nodes}, nil
}

// Render produces the kernel text.
func (k *Kernel) Render() ([]byte, error) {
	return render.Render(k.Nodes, k.Names)
}

// Generate builds and renders cfg in one step.
func Generate(cfg Config) ([]byte, error) {
	k, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	return k.Render()
}

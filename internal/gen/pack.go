package gen

import (
	"strconv"

	"github.com/roach88/dslashgen/internal/ir"
)

// packHop emits only the load and projection of one face direction,
// addressed by halo-local indices, followed by the half-spinor store.
func packHop(cfg Config, dir int) (ir.Section, error) {
	h, err := planHop(cfg, dir, faceIndex)
	if err != nil {
		return ir.Section{}, err
	}
	project, err := h.project()
	if err != nil {
		return ir.Section{}, err
	}
	body := concat(h.loadSpinor(), project)
	body = append(body,
		ir.Comment{Text: "write spinor field back to device memory"},
		ir.Call{Func: "WRITE_HALF_SPINOR", Args: []ir.Expr{ir.Sym("face_volume"), ir.Sym("face_idx")}},
	)
	return ir.Section{Kind: ir.SectionFace, Label: h.Name(), Body: body}, nil
}

// packFace dispatches on the lattice dimension; face f packs direction
// 2*dim+f.
func packFace(cfg Config, face int) (ir.Node, error) {
	sw := ir.Switch{Expr: "dim"}
	for dim := 0; dim < 4; dim++ {
		sec, err := packHop(cfg, 2*dim+face)
		if err != nil {
			return nil, err
		}
		sw.Cases = append(sw.Cases, ir.Case{Label: strconv.Itoa(dim), Body: []ir.Node{sec}})
	}
	return sw, nil
}

func buildPack(cfg Config, names Resolver) ([]ir.Node, error) {
	front, err := packFace(cfg, 1)
	if err != nil {
		return nil, err
	}
	back, err := packFace(cfg, 0)
	if err != nil {
		return nil, err
	}

	body := inputAccessors()
	body = append(body,
		ir.Include{Path: "io_spinor.h"},
		ir.Blank{},
		ir.If{Cond: "face_num", Then: []ir.Node{front}, Else: []ir.Node{back}},
		ir.Blank{},
	)
	body = append(body, teardown(cfg, names)...)
	return []ir.Node{ir.Section{Kind: ir.SectionPack, Label: "pack", Body: body}}, nil
}

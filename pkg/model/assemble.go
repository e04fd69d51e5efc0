package model

import (
	"fmt"

	"github.com/chazu/partgen/pkg/csg"
)

// recipe collects the pieces of a product. The assembled tree is
// difference(union(positives...), cuts...), with single-child composites
// collapsed.
type recipe struct {
	positives []*csg.Node
	cuts      []*csg.Node
}

func (r *recipe) add(n *csg.Node) { r.positives = append(r.positives, n) }
func (r *recipe) cut(n *csg.Node) { r.cuts = append(r.cuts, n) }

func (r *recipe) compose() *csg.Node {
	body := csg.Combine(csg.OpUnion, r.positives...)
	if len(r.cuts) == 0 {
		return body
	}
	return csg.Difference(append([]*csg.Node{body}, r.cuts...)...)
}

// Assemble validates cfg and builds its CSG tree. Cuts are applied in a
// fixed order: holes, overlay holes, corner masks, notches, then a cut
// relief. The same cfg always yields a structurally identical tree.
func Assemble(cfg Config) (root *csg.Node, err error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("model: %s: %w", cfg.Name, err)
	}
	cfg = cfg.WithDefaults()

	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*csg.ConstructionError)
			if !ok {
				panic(r)
			}
			root, err = nil, fmt.Errorf("model: assembling %s: %w", cfg.Name, ce)
		}
	}()

	var rc recipe
	switch {
	case cfg.Plate != nil:
		err = buildPlate(&rc, cfg)
	case cfg.Taper != nil:
		err = buildTaper(&rc, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("model: assembling %s: %w", cfg.Name, err)
	}
	return rc.compose(), nil
}

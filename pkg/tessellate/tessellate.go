// Package tessellate walks a CSG tree through a geometry kernel and
// produces one triangle mesh for the whole product. It is the in-process
// alternative to rendering the exported scene with OpenSCAD.
package tessellate

import (
	"fmt"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/chazu/partgen/pkg/kernel"
)

// builder converts CSG nodes to kernel solids. Subtrees shared between
// several parents are converted once.
type builder struct {
	k    kernel.Kernel
	memo map[*csg.Node]kernel.Solid
}

// Solid converts the tree rooted at root into a kernel solid. The tree is
// read-only and never mutated. Kernel panics carrying a *kernel.Error are
// returned as errors.
func Solid(root *csg.Node, k kernel.Kernel) (s kernel.Solid, err error) {
	if root == nil {
		return nil, fmt.Errorf("tessellate: nil tree")
	}
	defer func() {
		if r := recover(); r != nil {
			kerr, ok := r.(*kernel.Error)
			if !ok {
				panic(r)
			}
			s, err = nil, fmt.Errorf("tessellate: %w", kerr)
		}
	}()
	b := &builder{k: k, memo: make(map[*csg.Node]kernel.Solid)}
	return b.walk(root, root.Kind().String())
}

// Tessellate converts root to a solid and meshes it. The mesh is tagged
// with name.
func Tessellate(root *csg.Node, k kernel.Kernel, name string) (*kernel.Mesh, error) {
	s, err := Solid(root, k)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
	}
	mesh.PartName = name
	return mesh, nil
}

// walk recursively converts a node, after its children.
func (b *builder) walk(n *csg.Node, path string) (kernel.Solid, error) {
	if s, ok := b.memo[n]; ok {
		return s, nil
	}
	var (
		s   kernel.Solid
		err error
	)
	switch n.Kind() {
	case csg.KindBox, csg.KindCylinder, csg.KindExtrusion:
		s, err = b.primitive(n, path)
	case csg.KindTransform:
		s, err = b.transform(n, path)
	case csg.KindUnion, csg.KindDifference:
		s, err = b.composite(n, path)
	default:
		err = fmt.Errorf("tessellate: %s: unknown node kind %v", path, n.Kind())
	}
	if err != nil {
		return nil, err
	}
	b.memo[n] = s
	return s, nil
}

// primitive creates geometry for a leaf node.
func (b *builder) primitive(n *csg.Node, path string) (kernel.Solid, error) {
	switch d := n.Data().(type) {
	case csg.BoxData:
		return b.k.Box(d.Size.X, d.Size.Y, d.Size.Z, d.Centered), nil
	case csg.CylinderData:
		return b.k.Cylinder(d.Height, d.Radius, d.Segments, d.Centered), nil
	case csg.ExtrusionData:
		s := b.k.Extrude(d.Points, d.Length)
		if rot := csg.AxisRotation(d.Axis); rot.X != 0 || rot.Y != 0 || rot.Z != 0 {
			s = b.k.Rotate(s, rot.X, rot.Y, rot.Z)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("tessellate: %s: unsupported data type %T", path, n.Data())
	}
}

// transform applies scale, then rotation, then translation to the child.
func (b *builder) transform(n *csg.Node, path string) (kernel.Solid, error) {
	td, ok := n.Data().(csg.TransformData)
	if !ok || n.NumChildren() != 1 {
		return nil, fmt.Errorf("tessellate: %s: malformed transform", path)
	}
	s, err := b.walk(n.Child(0), path+"/0:"+n.Child(0).Kind().String())
	if err != nil {
		return nil, err
	}
	a := td.Affine.Normalize()
	if a.HasScale() {
		s = b.k.Scale(s, a.Scale.X, a.Scale.Y, a.Scale.Z)
	}
	if a.HasRotate() {
		s = b.k.Rotate(s, a.Rotate.X, a.Rotate.Y, a.Rotate.Z)
	}
	if a.HasTranslate() {
		s = b.k.Translate(s, a.Translate.X, a.Translate.Y, a.Translate.Z)
	}
	return s, nil
}

// composite folds the children left to right: a difference subtracts every
// later child from the first.
func (b *builder) composite(n *csg.Node, path string) (kernel.Solid, error) {
	if n.NumChildren() < 2 {
		return nil, fmt.Errorf("tessellate: %s: %s with %d children", path, n.Kind(), n.NumChildren())
	}
	var acc kernel.Solid
	for i, c := range n.Children() {
		s, err := b.walk(c, fmt.Sprintf("%s/%d:%s", path, i, c.Kind()))
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0:
			acc = s
		case n.Kind() == csg.KindUnion:
			acc = b.k.Union(acc, s)
		default:
			acc = b.k.Difference(acc, s)
		}
	}
	return acc, nil
}

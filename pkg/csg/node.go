package csg

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind enumerates the node variants of a CSG tree.
type Kind int

const (
	KindInvalid    Kind = iota // zero value, never produced by a builder
	KindBox                    // rectangular prism
	KindCylinder               // right circular cylinder along Z
	KindExtrusion              // 2D polygon swept along an axis
	KindTransform              // affine wrapper around one child
	KindUnion                  // boolean union of ≥2 children
	KindDifference             // first child minus all later children
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindExtrusion:
		return "extrusion"
	case KindTransform:
		return "transform"
	case KindUnion:
		return "union"
	case KindDifference:
		return "difference"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether k is an atomic solid.
func (k Kind) IsPrimitive() bool {
	return k == KindBox || k == KindCylinder || k == KindExtrusion
}

// IsComposite reports whether k is a boolean operator.
func (k Kind) IsComposite() bool {
	return k == KindUnion || k == KindDifference
}

// Axis names a coordinate axis.
type Axis int

const (
	AxisZ Axis = iota // default extrusion axis
	AxisX
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Node is one immutable vertex of a CSG tree.
type Node struct {
	kind     Kind
	data     Data
	children []*Node
}

// Data is the interface for kind-specific node payloads.
type Data interface {
	nodeData() // marker method restricting implementations to this package
}

// BoxData describes a rectangular prism. When Centered is false the box
// spans [0, Size] on every axis, otherwise [-Size/2, Size/2].
type BoxData struct {
	Size     r3.Vec
	Centered bool
}

func (BoxData) nodeData() {}

// CylinderData describes a cylinder along Z. When Centered is false it
// spans [0, Height], otherwise [-Height/2, Height/2].
type CylinderData struct {
	Height   float64
	Radius   float64
	Segments int
	Centered bool
}

func (CylinderData) nodeData() {}

// ExtrusionData describes a polygon in the XY plane swept by Length along
// Z and then turned onto Axis (see AxisRotation).
type ExtrusionData struct {
	Points []r2.Vec
	Length float64
	Axis   Axis
}

func (ExtrusionData) nodeData() {}

// TransformData is the affine transform carried by a KindTransform node.
type TransformData struct {
	Affine Affine
}

func (TransformData) nodeData() {}

// CompositeData marks union and difference nodes; the operands are the
// node's children.
type CompositeData struct{}

func (CompositeData) nodeData() {}

// Kind returns the node variant.
func (n *Node) Kind() Kind {
	return n.kind
}

// Data returns a copy of the node payload.
func (n *Node) Data() Data {
	if ed, ok := n.data.(ExtrusionData); ok {
		ed.Points = append([]r2.Vec(nil), ed.Points...)
		return ed
	}
	return n.data
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Child returns the i-th child.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// AxisRotation returns the Euler rotation (degrees) that turns a Z
// extrusion onto axis a. The polygon plane turns with it.
func AxisRotation(a Axis) r3.Vec {
	switch a {
	case AxisX:
		return r3.Vec{Y: 90}
	case AxisY:
		return r3.Vec{X: -90}
	default:
		return r3.Vec{}
	}
}

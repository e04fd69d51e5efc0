package csg

import "gonum.org/v1/gonum/spatial/r3"

// Affine is a scale, rotate, translate triple. Applied to a point p it
// yields Translate + R(Scale ⊙ p), where R rotates about X, then Y, then Z
// by the Euler angles in Rotate (degrees). A zero Scale means identity.
//
// Nesting wrappers composes outer-after-inner, so
// Translate(Rotate(s, r), t) rotates first and translates second, exactly
// like a single node with both components set.
type Affine struct {
	Translate r3.Vec
	Rotate    r3.Vec
	Scale     r3.Vec
}

var unitScale = r3.Vec{X: 1, Y: 1, Z: 1}

// Normalize returns a with a zero Scale replaced by the identity scale.
func (a Affine) Normalize() Affine {
	if a.Scale == (r3.Vec{}) {
		a.Scale = unitScale
	}
	return a
}

// HasTranslate reports whether the translation is non-zero.
func (a Affine) HasTranslate() bool { return a.Translate != r3.Vec{} }

// HasRotate reports whether the rotation is non-zero.
func (a Affine) HasRotate() bool { return a.Rotate != r3.Vec{} }

// HasScale reports whether the scale differs from identity.
func (a Affine) HasScale() bool { return a.Normalize().Scale != unitScale }

// IsIdentity reports whether a leaves every point in place.
func (a Affine) IsIdentity() bool {
	return !a.HasTranslate() && !a.HasRotate() && !a.HasScale()
}

// Transform wraps s in a new transform node.
func Transform(s *Node, a Affine) *Node {
	if s == nil {
		constructionf("csg.Transform", "nil child")
	}
	a = a.Normalize()
	if a.Scale.X == 0 || a.Scale.Y == 0 || a.Scale.Z == 0 {
		constructionf("csg.Transform", "scale %v collapses an axis", a.Scale)
	}
	return &Node{
		kind:     KindTransform,
		data:     TransformData{Affine: a},
		children: []*Node{s},
	}
}

// Translate wraps s in a pure translation.
func Translate(s *Node, v r3.Vec) *Node {
	return Transform(s, Affine{Translate: v})
}

// Rotate wraps s in a pure rotation (Euler degrees).
func Rotate(s *Node, deg r3.Vec) *Node {
	return Transform(s, Affine{Rotate: deg})
}

// Scale wraps s in a pure, possibly non-uniform, scale. Negative factors
// mirror; zero factors panic.
func Scale(s *Node, v r3.Vec) *Node {
	if v == (r3.Vec{}) {
		constructionf("csg.Scale", "zero scale")
	}
	return Transform(s, Affine{Scale: v})
}

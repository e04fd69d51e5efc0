package csg

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box returns a rectangular prism of the given size. Zero dimensions are
// legal and yield a zero-volume solid; negative ones panic.
func Box(size r3.Vec, centered bool) *Node {
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		constructionf("csg.Box", "negative dimension %v", size)
	}
	return &Node{kind: KindBox, data: BoxData{Size: size, Centered: centered}}
}

// Cylinder returns a cylinder along Z tessellated with segments facets.
func Cylinder(height, radius float64, segments int, centered bool) *Node {
	if height < 0 || radius < 0 {
		constructionf("csg.Cylinder", "negative height %g or radius %g", height, radius)
	}
	if segments <= 0 {
		constructionf("csg.Cylinder", "segment count %d must be positive", segments)
	}
	return &Node{kind: KindCylinder, data: CylinderData{
		Height:   height,
		Radius:   radius,
		Segments: segments,
		Centered: centered,
	}}
}

// Extrude sweeps the polygon points by length along axis. The polygon is
// copied; the caller keeps ownership of points. Self-intersection is not
// checked here, see Validate.
func Extrude(points []r2.Vec, length float64, axis Axis) *Node {
	if len(points) < 3 {
		constructionf("csg.Extrude", "polygon has %d points, need at least 3", len(points))
	}
	if length <= 0 {
		constructionf("csg.Extrude", "extrusion length %g must be positive", length)
	}
	return &Node{kind: KindExtrusion, data: ExtrusionData{
		Points: append([]r2.Vec(nil), points...),
		Length: length,
		Axis:   axis,
	}}
}

// Package kernel defines the in-process geometry kernel interface. It is
// the fallback backend used when no external OpenSCAD binary is wanted:
// the tessellate package walks a CSG tree into a Kernel and asks it for a
// mesh. Implementations (sdfx) hide their solid representation behind
// Solid.
package kernel

import "gonum.org/v1/gonum/spatial/r2"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. Shapes follow the
// OpenSCAD conventions: boxes and cylinders sit on the origin unless
// centered, extrusions run from z=0 to z=length.
type Kernel interface {
	// Primitives
	Box(x, y, z float64, centered bool) Solid
	Cylinder(height, radius float64, segments int, centered bool) Solid
	Extrude(points []r2.Vec, length float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, X then Y then Z
	Scale(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

package derive

import (
	"github.com/chazu/partgen/pkg/csg"
	"gonum.org/v1/gonum/spatial/r3"
)

// HoleCenter returns the center of a through-hole at pos along the taper:
// half the local thickness in X, pos in Y and z in Z.
func HoleCenter(t Taper, pos, z float64) (r3.Vec, error) {
	local, err := t.ThicknessAt(pos)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{X: local / 2, Y: pos, Z: z}, nil
}

// SideHole returns a centered cylinder of the given radius and length
// turned onto the X (thickness) axis and moved to HoleCenter. Placing it at
// the local midpoint rather than a nominal depth keeps the hole inside the
// non-rectangular cross-section.
func SideHole(t Taper, pos, z, radius, length float64, segments int) (*csg.Node, error) {
	c, err := HoleCenter(t, pos, z)
	if err != nil {
		return nil, err
	}
	return csg.Transform(
		csg.Cylinder(length, radius, segments, true),
		csg.Affine{Rotate: r3.Vec{Y: 90}, Translate: c},
	), nil
}

// FacePlacement returns the transform that maps a local frame onto the
// sloped face of t at pos: local X becomes the outward face normal, local
// Y runs down the face and the origin lands on the face surface.
func FacePlacement(t Taper, pos float64) (csg.Affine, error) {
	angle, err := t.SlopeAngle()
	if err != nil {
		return csg.Affine{}, err
	}
	local, err := t.ThicknessAt(pos)
	if err != nil {
		return csg.Affine{}, err
	}
	return csg.Affine{
		Rotate:    r3.Vec{Z: angle},
		Translate: r3.Vec{X: local, Y: pos},
	}, nil
}

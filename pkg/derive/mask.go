package derive

import (
	"fmt"

	"github.com/chazu/partgen/pkg/csg"
	"gonum.org/v1/gonum/spatial/r3"
)

// Corner selects which end of the span a rounded-corner mask rounds.
type Corner int

const (
	CornerTop    Corner = iota // end at position 0
	CornerBottom               // end at position span
)

func (c Corner) String() string {
	if c == CornerBottom {
		return "bottom"
	}
	return "top"
}

// MaskScale is the non-uniform scale applied along the width axis to the
// mask cylinder so that its circular section of the given radius stretches
// across the full width.
func MaskScale(width, radius float64) float64 {
	return width / (2 * radius)
}

// RoundedCornerMask returns Box(thickness × radius × width) minus a
// cylinder of radius running along X, centered at (y=radius, z=width/2)
// after being scaled by MaskScale along Z. Subtracting the mask from a body
// whose end sits at y=0 leaves a quarter-round fillet on both width edges
// of that end.
//
// For CornerBottom the box occupies y in [radius, 2*radius], rounding the
// opposite end; see BottomCornerMask for the placed variant.
func RoundedCornerMask(thickness, radius, width float64, segments int, corner Corner) (*csg.Node, error) {
	if thickness <= 0 || radius <= 0 || width <= 0 {
		return nil, fmt.Errorf("derive: rounded mask needs positive thickness, radius and width, got %g, %g, %g",
			thickness, radius, width)
	}
	if segments <= 0 {
		return nil, fmt.Errorf("derive: rounded mask segment count %d must be positive", segments)
	}

	boxY := 0.0
	if corner == CornerBottom {
		boxY = radius
	}
	rect := csg.Translate(
		csg.Box(r3.Vec{X: thickness, Y: radius, Z: width}, false),
		r3.Vec{Y: boxY},
	)
	cyl := csg.Scale(
		csg.Transform(
			csg.Cylinder(thickness, radius, segments, false),
			csg.Affine{
				Rotate:    r3.Vec{Y: 90},
				Translate: r3.Vec{Y: radius, Z: radius},
			},
		),
		r3.Vec{X: 1, Y: 1, Z: MaskScale(width, radius)},
	)
	return csg.Difference(rect, cyl), nil
}

// BottomCornerMask returns the CornerBottom mask moved so that it rounds
// the end of a part of length span.
func BottomCornerMask(thickness, radius, width, span float64, segments int) (*csg.Node, error) {
	if 2*radius > span {
		return nil, fmt.Errorf("derive: corner radius %g does not fit span %g", radius, span)
	}
	m, err := RoundedCornerMask(thickness, radius, width, segments, CornerBottom)
	if err != nil {
		return nil, err
	}
	return csg.Translate(m, r3.Vec{Y: span - 2*radius}), nil
}

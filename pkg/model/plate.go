package model

import (
	"github.com/chazu/partgen/pkg/csg"
	"gonum.org/v1/gonum/spatial/r3"
)

// PlateBody returns the plate outline: a central rectangle, two side
// rectangles stopping short of the top by the corner radius, and two
// cylinders filling the rounded top corners. A zero radius gives a plain
// box.
func PlateBody(p Plate, segments int) *csg.Node {
	w, h, t, r := p.Width, p.Height, p.Thickness, p.CornerRadius
	if r == 0 {
		return csg.Box(r3.Vec{X: w, Y: h, Z: t}, false)
	}
	return csg.Union(
		csg.Translate(csg.Box(r3.Vec{X: w - 2*r, Y: h, Z: t}, false), r3.Vec{X: r}),
		csg.Box(r3.Vec{X: r, Y: h - r, Z: t}, false),
		csg.Translate(csg.Box(r3.Vec{X: r, Y: h - r, Z: t}, false), r3.Vec{X: w - r}),
		csg.Translate(csg.Cylinder(t, r, segments, false), r3.Vec{X: r, Y: h - r}),
		csg.Translate(csg.Cylinder(t, r, segments, false), r3.Vec{X: w - r, Y: h - r}),
	)
}

// NotchNode returns the cut for n. Without an explicit X the notch is
// centered across extent.
func NotchNode(n Notch, extent float64) *csg.Node {
	x := (extent - n.Width) / 2
	if n.X != nil {
		x = *n.X
	}
	return csg.Translate(
		csg.Box(r3.Vec{X: n.Width, Y: n.Height, Z: n.Depth}, false),
		r3.Vec{X: x, Y: n.Y, Z: n.Z},
	)
}

func buildPlate(rc *recipe, cfg Config) error {
	rc.add(PlateBody(*cfg.Plate, cfg.Plate.CornerSegments))
	for _, n := range cfg.Notches {
		rc.cut(NotchNode(n, cfg.Plate.Width))
	}
	return nil
}

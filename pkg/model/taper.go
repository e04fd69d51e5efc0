package model

import (
	"math"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/chazu/partgen/pkg/derive"
	"gonum.org/v1/gonum/spatial/r3"
)

// HoleLength is the length of the cylinder cutting a through-hole in t. It
// exceeds every extent the hole can cross by the hole clearance.
func HoleLength(t Taper) float64 {
	return math.Max(t.Width, math.Max(t.TopThickness, t.BottomThickness)) + t.HoleClearance
}

func buildTaper(rc *recipe, cfg Config) error {
	t := cfg.Taper
	base, err := derive.NewTaper(t.TopThickness, t.BottomThickness, t.Height)
	if err != nil {
		return err
	}
	rc.add(csg.Extrude(base.Profile(), t.Width, csg.AxisZ))

	var overlayCuts []*csg.Node
	if o := cfg.Overlay; o != nil {
		body, holes, err := overlay(base, *o, t.Width)
		if err != nil {
			return err
		}
		rc.add(body)
		overlayCuts = holes
	}

	var relief *csg.Node
	if r := cfg.Relief; r != nil {
		if relief, err = reliefNode(base, *r, t.Width); err != nil {
			return err
		}
		if r.Raised {
			rc.add(relief)
			relief = nil
		}
	}

	length := HoleLength(*t)
	for _, h := range cfg.Holes {
		z := t.Width / 2
		if h.Z != nil {
			z = *h.Z
		}
		n, err := derive.SideHole(base, h.Position(t.Height), z, h.Diameter/2, length, h.Segments)
		if err != nil {
			return err
		}
		rc.cut(n)
	}
	for _, n := range overlayCuts {
		rc.cut(n)
	}

	if c := cfg.Corners; c != nil {
		thickness := math.Max(t.TopThickness, t.BottomThickness)
		if c.Top {
			m, err := derive.RoundedCornerMask(thickness, c.Radius, t.Width, c.Segments, derive.CornerTop)
			if err != nil {
				return err
			}
			rc.cut(m)
		}
		if c.Bottom {
			m, err := derive.BottomCornerMask(thickness, c.Radius, t.Width, t.Height, c.Segments)
			if err != nil {
				return err
			}
			rc.cut(m)
		}
	}

	extent := math.Max(t.TopThickness, t.BottomThickness)
	for _, n := range cfg.Notches {
		rc.cut(NotchNode(n, extent))
	}
	if relief != nil {
		rc.cut(relief)
	}
	return nil
}

// overlay builds the overlay wedge in its own frame (thickness along X,
// span along Y) and places it on the sloped face of base at o.Offset,
// centered across the width. Its holes are built in the same frame and
// share the placement so they stay perpendicular to the face.
func overlay(base derive.Taper, o Overlay, width float64) (*csg.Node, []*csg.Node, error) {
	ot, err := derive.NewTaper(o.TopThickness, o.BottomThickness, o.Span)
	if err != nil {
		return nil, nil, err
	}
	place, err := derive.FacePlacement(base, o.Offset)
	if err != nil {
		return nil, nil, err
	}
	place.Translate.Z = (width - o.Width) / 2

	body := csg.Transform(csg.Extrude(ot.Profile(), o.Width, csg.AxisZ), place)

	// Centered on the overlay midline, long enough to reach through the
	// overlay and the same distance into the base.
	length := 2 * (math.Max(o.TopThickness, o.BottomThickness) + 1)
	holes := make([]*csg.Node, 0, len(o.Holes))
	for _, h := range o.Holes {
		z := o.Width / 2
		if h.Z != nil {
			z = *h.Z
		}
		n, err := derive.SideHole(ot, h.Position(o.Span), z, h.Diameter/2, length, h.Segments)
		if err != nil {
			return nil, nil, err
		}
		holes = append(holes, csg.Transform(n, place))
	}
	return body, holes, nil
}

// reliefNode builds the half-ellipse relief, plus its marker if any,
// centered between the offsets on the sloped face. A raised relief bulges
// out of the face; a cut relief points into the body. Either way the
// overlap base sits on the other side of the face.
func reliefNode(base derive.Taper, r Relief, width float64) (*csg.Node, error) {
	rx := (base.Span - r.TopOffset - r.BottomOffset) / 2
	pts, err := derive.HalfEllipse(rx, r.Depth, r.Segments, r.Overlap)
	if err != nil {
		return nil, err
	}
	shape := csg.Extrude(pts, width, csg.AxisZ)
	if m := r.Marker; m != nil {
		tri, err := derive.Marker(rx, m.Width, m.Height, r.Overlap)
		if err != nil {
			return nil, err
		}
		shape = csg.Union(shape, csg.Extrude(tri, width, csg.AxisZ))
	}

	place, err := derive.FacePlacement(base, r.TopOffset+rx)
	if err != nil {
		return nil, err
	}
	turn := 90.0
	if r.Raised {
		turn = -90
	}
	return csg.Transform(shape, csg.Affine{
		Rotate:    r3.Vec{Z: place.Rotate.Z + turn},
		Translate: place.Translate,
	}), nil
}

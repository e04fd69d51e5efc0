package model

// DefaultSegments is the scene-wide angular resolution used when a config
// leaves Segments unset.
const DefaultSegments = 100

// Defaults for optional fields. Dimensional parameters have no defaults.
const (
	DefaultCornerSegments = 50
	DefaultHoleClearance  = 2.0
	DefaultReliefOverlap  = 0.2
)

// Config is the complete, explicit parameter record for one product.
type Config struct {
	Name     string `yaml:"name" validate:"required,excludesall=/"`
	Segments int    `yaml:"segments,omitempty" validate:"gte=0"`

	// Exactly one body.
	Plate *Plate `yaml:"plate,omitempty" validate:"omitempty"`
	Taper *Taper `yaml:"taper,omitempty" validate:"omitempty"`

	Holes   []Hole   `yaml:"holes,omitempty" validate:"dive"`
	Corners *Corners `yaml:"corners,omitempty" validate:"omitempty"`
	Notches []Notch  `yaml:"notches,omitempty" validate:"dive"`
	Overlay *Overlay `yaml:"overlay,omitempty" validate:"omitempty"`
	Relief  *Relief  `yaml:"relief,omitempty" validate:"omitempty"`
}

// Plate is a flat panel lying in XY with thickness along Z and the two
// corners at y=Height rounded with CornerRadius.
type Plate struct {
	Width          float64 `yaml:"width" validate:"gt=0"`
	Height         float64 `yaml:"height" validate:"gt=0"`
	Thickness      float64 `yaml:"thickness" validate:"gt=0"`
	CornerRadius   float64 `yaml:"corner_radius,omitempty" validate:"gte=0"`
	CornerSegments int     `yaml:"corner_segments,omitempty" validate:"gte=0"`
}

// Taper is a wedge: thickness along X varying linearly from TopThickness at
// y=0 to BottomThickness at y=Height, extruded by Width along Z.
type Taper struct {
	Height          float64 `yaml:"height" validate:"gt=0"`
	Width           float64 `yaml:"width" validate:"gt=0"`
	TopThickness    float64 `yaml:"top_thickness" validate:"gte=0"`
	BottomThickness float64 `yaml:"bottom_thickness" validate:"gte=0"`
	// HoleClearance is added to the hole cylinder length so holes clear
	// every face they pass through.
	HoleClearance float64 `yaml:"hole_clearance,omitempty" validate:"gte=0"`
}

// Hole is a through-hole along the thickness axis. Exactly one of FromTop
// and FromBottom positions it along the span; Z defaults to mid-width.
type Hole struct {
	FromTop    *float64 `yaml:"from_top,omitempty" validate:"omitempty,gte=0"`
	FromBottom *float64 `yaml:"from_bottom,omitempty" validate:"omitempty,gte=0"`
	Diameter   float64  `yaml:"diameter" validate:"gt=0"`
	Z          *float64 `yaml:"z,omitempty" validate:"omitempty,gte=0"`
	Segments   int      `yaml:"segments,omitempty" validate:"gte=0"`
}

// Corners rounds the width edges at one or both ends of a taper body with
// rounded-corner masks.
type Corners struct {
	Radius   float64 `yaml:"radius" validate:"gt=0"`
	Top      bool    `yaml:"top"`
	Bottom   bool    `yaml:"bottom"`
	Segments int     `yaml:"segments,omitempty" validate:"gte=0"`
}

// Notch is a rectangular cut at (X, Y, Z) in body coordinates. X defaults
// to centering the notch across the body's X extent.
type Notch struct {
	Width  float64  `yaml:"width" validate:"gt=0"`
	Height float64  `yaml:"height" validate:"gt=0"`
	Depth  float64  `yaml:"depth" validate:"gt=0"`
	X      *float64 `yaml:"x,omitempty"`
	Y      float64  `yaml:"y,omitempty"`
	Z      float64  `yaml:"z,omitempty"`
}

// Overlay is a second wedge attached to the sloped face of a taper body,
// starting Offset down the body and running Span along the face.
type Overlay struct {
	Offset          float64 `yaml:"offset" validate:"gte=0"`
	Span            float64 `yaml:"span" validate:"gt=0"`
	TopThickness    float64 `yaml:"top_thickness" validate:"gte=0"`
	BottomThickness float64 `yaml:"bottom_thickness" validate:"gte=0"`
	Width           float64 `yaml:"width,omitempty" validate:"gte=0"`
	// Holes are positioned along the overlay span and derived from the
	// overlay's own taper.
	Holes []Hole `yaml:"holes,omitempty" validate:"dive"`
}

// Relief is a half-ellipse on the sloped face of a taper body spanning
// from TopOffset to Height-BottomOffset. It is cut into the face unless
// Raised is set.
type Relief struct {
	TopOffset    float64       `yaml:"top_offset" validate:"gte=0"`
	BottomOffset float64       `yaml:"bottom_offset" validate:"gte=0"`
	Depth        float64       `yaml:"depth" validate:"gt=0"`
	Overlap      float64       `yaml:"overlap,omitempty" validate:"gte=0"`
	Segments     int           `yaml:"segments,omitempty" validate:"gte=0"`
	Raised       bool          `yaml:"raised,omitempty"`
	Marker       *ReliefMarker `yaml:"marker,omitempty" validate:"omitempty"`
}

// ReliefMarker is the small triangular pointer extruded at the far end of
// a relief.
type ReliefMarker struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// WithDefaults returns a deep copy of c with unset optional fields filled.
func (c Config) WithDefaults() Config {
	out := c
	if out.Segments == 0 {
		out.Segments = DefaultSegments
	}
	if c.Plate != nil {
		p := *c.Plate
		if p.CornerSegments == 0 {
			p.CornerSegments = DefaultCornerSegments
		}
		out.Plate = &p
	}
	if c.Taper != nil {
		t := *c.Taper
		if t.HoleClearance == 0 {
			t.HoleClearance = DefaultHoleClearance
		}
		out.Taper = &t
	}
	out.Holes = copyHoles(c.Holes, out.Segments)
	if c.Corners != nil {
		k := *c.Corners
		if k.Segments == 0 {
			k.Segments = out.Segments
		}
		out.Corners = &k
	}
	out.Notches = append([]Notch(nil), c.Notches...)
	if c.Overlay != nil {
		o := *c.Overlay
		o.Holes = copyHoles(c.Overlay.Holes, out.Segments)
		if o.Width == 0 && out.Taper != nil {
			o.Width = out.Taper.Width
		}
		out.Overlay = &o
	}
	if c.Relief != nil {
		r := *c.Relief
		if r.Overlap == 0 {
			r.Overlap = DefaultReliefOverlap
		}
		if r.Segments == 0 {
			r.Segments = out.Segments
		}
		if c.Relief.Marker != nil {
			m := *c.Relief.Marker
			r.Marker = &m
		}
		out.Relief = &r
	}
	return out
}

func copyHoles(in []Hole, segments int) []Hole {
	if in == nil {
		return nil
	}
	out := make([]Hole, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Segments == 0 {
			out[i].Segments = segments
		}
	}
	return out
}

// Position returns the hole position along a span of the given length.
func (h Hole) Position(span float64) float64 {
	if h.FromTop != nil {
		return *h.FromTop
	}
	if h.FromBottom != nil {
		return span - *h.FromBottom
	}
	return 0
}

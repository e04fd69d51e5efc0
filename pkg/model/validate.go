package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/chazu/partgen/pkg/derive"
	"github.com/go-playground/validator/v10"
)

// ParamError reports a parameter that violates a constraint. Field is the
// dotted YAML path of the parameter, e.g. "taper.height" or
// "holes[1].diameter".
type ParamError struct {
	Field      string
	Constraint string
	Value      interface{}
}

func (e *ParamError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("parameter %s: %s", e.Field, e.Constraint)
	}
	return fmt.Sprintf("parameter %s = %v: %s", e.Field, e.Value, e.Constraint)
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	configValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks cfg, with defaults applied, and returns every violation
// joined into one error. Each joined error is a *ParamError.
func Validate(cfg Config) error {
	cfg = cfg.WithDefaults()

	var errs []error
	if err := configValidate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}
	errs = append(errs, crossCheck(cfg)...)
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) *ParamError {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}
	return &ParamError{Field: field, Constraint: constraint, Value: fe.Value()}
}

// crossCheck enforces the relations between parameters that struct tags
// cannot express. cfg must already carry defaults.
func crossCheck(cfg Config) []error {
	var errs []error
	add := func(field, constraint string, value interface{}) {
		errs = append(errs, &ParamError{Field: field, Constraint: constraint, Value: value})
	}

	switch {
	case cfg.Plate == nil && cfg.Taper == nil:
		add("body", "one of plate or taper is required", nil)
		return errs
	case cfg.Plate != nil && cfg.Taper != nil:
		add("body", "plate and taper are mutually exclusive", nil)
		return errs
	}

	if p := cfg.Plate; p != nil {
		if p.CornerRadius > 0 && 2*p.CornerRadius >= p.Width {
			add("plate.corner_radius", "twice the radius must be less than plate.width", p.CornerRadius)
		}
		if p.CornerRadius > 0 && p.CornerRadius >= p.Height {
			add("plate.corner_radius", "must be less than plate.height", p.CornerRadius)
		}
		for _, f := range []struct {
			name string
			set  bool
		}{
			{"holes", len(cfg.Holes) > 0},
			{"corners", cfg.Corners != nil},
			{"overlay", cfg.Overlay != nil},
			{"relief", cfg.Relief != nil},
		} {
			if f.set {
				add(f.name, "requires a taper body", nil)
			}
		}
	}

	if t := cfg.Taper; t != nil {
		taper, err := derive.NewTaper(t.TopThickness, t.BottomThickness, t.Height)
		if err != nil {
			add("taper", err.Error(), nil)
			return errs
		}
		for i, h := range cfg.Holes {
			errs = append(errs, checkHole(fmt.Sprintf("holes[%d]", i), h, taper, t.Width)...)
		}
		if c := cfg.Corners; c != nil {
			if !c.Top && !c.Bottom {
				add("corners", "at least one of top or bottom must be set", nil)
			}
			// The bottom mask spans 2R ending at the far end of the body.
			if c.Bottom && 2*c.Radius > t.Height {
				add("corners.radius", "twice the radius must not exceed taper.height", c.Radius)
			} else if c.Radius > t.Height {
				add("corners.radius", "must not exceed taper.height", c.Radius)
			}
		}
		if o := cfg.Overlay; o != nil {
			errs = append(errs, checkOverlay(o, taper, t.Width)...)
		}
		if r := cfg.Relief; r != nil {
			errs = append(errs, checkRelief(r, taper)...)
		}
	}

	for i, n := range cfg.Notches {
		if n.X != nil && *n.X < 0 {
			add(fmt.Sprintf("notches[%d].x", i), "gte=0", *n.X)
		}
		if extent := bodyExtentX(cfg); n.X == nil && n.Width > extent {
			add(fmt.Sprintf("notches[%d].width", i), "must not exceed the body extent to be centered", n.Width)
		}
	}
	return errs
}

func checkHole(field string, h Hole, t derive.Taper, width float64) []error {
	var errs []error
	add := func(f, constraint string, value interface{}) {
		errs = append(errs, &ParamError{Field: field + f, Constraint: constraint, Value: value})
	}
	if (h.FromTop == nil) == (h.FromBottom == nil) {
		add("", "exactly one of from_top or from_bottom is required", nil)
		return errs
	}
	r := h.Diameter / 2
	pos := h.Position(t.Span)
	if pos-r < 0 || pos+r > t.Span {
		add("", "hole must lie within the span", pos)
	}
	z := width / 2
	if h.Z != nil {
		z = *h.Z
	}
	if z-r < 0 || z+r > width {
		add(".z", "hole must lie within the width", z)
	}
	return errs
}

func checkOverlay(o *Overlay, base derive.Taper, width float64) []error {
	var errs []error
	add := func(f, constraint string, value interface{}) {
		errs = append(errs, &ParamError{Field: "overlay" + f, Constraint: constraint, Value: value})
	}
	if o.Offset > base.Span {
		add(".offset", "must not exceed taper.height", o.Offset)
		return errs
	}
	angle, _ := base.SlopeAngle()
	if end := o.Offset + o.Span*math.Cos(angle*math.Pi/180); end > base.Span+1e-9 {
		add(".span", "overlay runs past the end of the body", o.Span)
	}
	if o.Width > width {
		add(".width", "must not exceed taper.width", o.Width)
	}
	ot, err := derive.NewTaper(o.TopThickness, o.BottomThickness, o.Span)
	if err != nil {
		add("", err.Error(), nil)
		return errs
	}
	for i, h := range o.Holes {
		errs = append(errs, checkHole(fmt.Sprintf("overlay.holes[%d]", i), h, ot, o.Width)...)
	}
	return errs
}

func checkRelief(r *Relief, t derive.Taper) []error {
	var errs []error
	add := func(f, constraint string, value interface{}) {
		errs = append(errs, &ParamError{Field: "relief" + f, Constraint: constraint, Value: value})
	}
	length := t.Span - r.TopOffset - r.BottomOffset
	if length <= 0 {
		add(".bottom_offset", "top_offset + bottom_offset must be less than taper.height", r.BottomOffset)
		return errs
	}
	if !r.Raised {
		// A cut deeper than the thinner end of the relief breaks through.
		thin := math.Min(mustThickness(t, r.TopOffset), mustThickness(t, t.Span-r.BottomOffset))
		if r.Depth >= thin {
			add(".depth", fmt.Sprintf("cut must be shallower than the local thickness %g", thin), r.Depth)
		}
	}
	return errs
}

func mustThickness(t derive.Taper, pos float64) float64 {
	v, err := t.ThicknessAt(pos)
	if err != nil {
		return 0
	}
	return v
}

// bodyExtentX is the size of the body along X: the plate width or the
// larger taper thickness.
func bodyExtentX(cfg Config) float64 {
	switch {
	case cfg.Plate != nil:
		return cfg.Plate.Width
	case cfg.Taper != nil:
		return math.Max(cfg.Taper.TopThickness, cfg.Taper.BottomThickness)
	}
	return 0
}

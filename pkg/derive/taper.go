package derive

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrZeroSpan is returned when a taper span of zero would be used as a divisor.
	ErrZeroSpan = errors.New("derive: zero span")
	// ErrNegativeSpan is returned for a negative or NaN span.
	ErrNegativeSpan = errors.New("derive: span must be positive")
	// ErrOutOfSpan is returned when a query position lies outside [0, span].
	ErrOutOfSpan = errors.New("derive: position outside span")
)

func checkSpan(span float64) error {
	if span == 0 {
		return ErrZeroSpan
	}
	if !(span > 0) {
		return fmt.Errorf("%w: got %g", ErrNegativeSpan, span)
	}
	return nil
}

// SlopeAngle returns the angle in degrees between the tapered face and the
// span axis: atan2(top-bottom, span). It is positive when the part thins
// towards the far end and satisfies SlopeAngle(a,b,s) == -SlopeAngle(b,a,s).
func SlopeAngle(top, bottom, span float64) (float64, error) {
	if err := checkSpan(span); err != nil {
		return 0, err
	}
	return math.Atan2(top-bottom, span) * 180 / math.Pi, nil
}

// ThicknessAt linearly interpolates the thickness at pos along the span,
// computed as top - (top-bottom)*(pos/span). Both endpoints are exact and
// the result never leaves [min(top,bottom), max(top,bottom)].
func ThicknessAt(top, bottom, span, pos float64) (float64, error) {
	if err := checkSpan(span); err != nil {
		return 0, err
	}
	if !(pos >= 0 && pos <= span) {
		return 0, fmt.Errorf("%w: %g not in [0, %g]", ErrOutOfSpan, pos, span)
	}
	if pos == span {
		return bottom, nil
	}
	t := top - (top-bottom)*(pos/span)
	lo, hi := math.Min(top, bottom), math.Max(top, bottom)
	return math.Max(lo, math.Min(hi, t)), nil
}

// Taper is a linear thickness variation along a span: Top thickness at
// position 0, Bottom thickness at position Span.
type Taper struct {
	Top    float64
	Bottom float64
	Span   float64
}

// NewTaper validates and returns a Taper.
func NewTaper(top, bottom, span float64) (Taper, error) {
	if err := checkSpan(span); err != nil {
		return Taper{}, err
	}
	if top < 0 || bottom < 0 {
		return Taper{}, fmt.Errorf("derive: negative taper thickness top=%g bottom=%g", top, bottom)
	}
	if top == 0 && bottom == 0 {
		return Taper{}, errors.New("derive: taper has no thickness at either end")
	}
	return Taper{Top: top, Bottom: bottom, Span: span}, nil
}

// SlopeAngle returns the slope of the tapered face in degrees.
func (t Taper) SlopeAngle() (float64, error) {
	return SlopeAngle(t.Top, t.Bottom, t.Span)
}

// ThicknessAt returns the local thickness at pos.
func (t Taper) ThicknessAt(pos float64) (float64, error) {
	return ThicknessAt(t.Top, t.Bottom, t.Span, pos)
}

// Profile returns the cross-section of the taper in the XY plane:
// thickness along X, span along Y, counter-clockwise. A zero-thickness end
// collapses onto the Y axis, so the profile is then a triangle.
func (t Taper) Profile() []r2.Vec {
	pts := []r2.Vec{{X: 0, Y: 0}}
	if t.Top != 0 {
		pts = append(pts, r2.Vec{X: t.Top, Y: 0})
	}
	if t.Bottom != 0 {
		pts = append(pts, r2.Vec{X: t.Bottom, Y: t.Span})
	}
	return append(pts, r2.Vec{X: 0, Y: t.Span})
}

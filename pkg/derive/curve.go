package derive

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// HalfEllipse samples (rx·cos θ, ry·sin θ) for θ = π·i/segments,
// i = 0..segments, and closes the open arc with two base points at
// (-rx, -base) and (rx, -base). The result has segments+3 points, winds
// counter-clockwise and extends base below the chord so a cut or a raised
// feature overlaps the surface it sits on.
func HalfEllipse(rx, ry float64, segments int, base float64) ([]r2.Vec, error) {
	if rx <= 0 || ry <= 0 {
		return nil, fmt.Errorf("derive: half ellipse radii must be positive, got %g, %g", rx, ry)
	}
	if segments <= 0 {
		return nil, fmt.Errorf("derive: half ellipse segment count %d must be positive", segments)
	}
	if base <= 0 {
		return nil, fmt.Errorf("derive: half ellipse base %g must be positive", base)
	}

	pts := make([]r2.Vec, 0, segments+3)
	for i := 0; i <= segments; i++ {
		theta := math.Pi * float64(i) / float64(segments)
		pts = append(pts, r2.Vec{X: rx * math.Cos(theta), Y: ry * math.Sin(theta)})
	}
	pts = append(pts, r2.Vec{X: -rx, Y: -base}, r2.Vec{X: rx, Y: -base})
	return pts, nil
}

// Marker returns a right triangle pointer with its vertical leg at
// x = at - width/2: base width along X starting base below the chord,
// rising to height above it.
func Marker(at, width, height, base float64) ([]r2.Vec, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("derive: marker width %g and height %g must be positive", width, height)
	}
	return []r2.Vec{
		{X: at - width/2, Y: -base},
		{X: at + width/2, Y: -base},
		{X: at - width/2, Y: height},
	}, nil
}

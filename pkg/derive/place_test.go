package derive

import (
	"math"
	"testing"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var sidingWedge = Taper{Top: 23, Bottom: 2, Span: 151}

func TestSideHole(t *testing.T) {
	hole, err := SideHole(sidingWedge, 16.5, 21.75, 1.875, 45.5, 48)
	require.NoError(t, err)
	require.Equal(t, csg.KindTransform, hole.Kind())

	a := hole.Data().(csg.TransformData).Affine
	top, bottom, span, pos := 23.0, 2.0, 151.0, 16.5
	local := top - (top-bottom)*(pos/span)
	assert.Equal(t, r3.Vec{X: local / 2, Y: 16.5, Z: 21.75}, a.Translate)
	assert.Equal(t, r3.Vec{Y: 90}, a.Rotate)

	cyl := hole.Child(0).Data().(csg.CylinderData)
	assert.True(t, cyl.Centered)
	assert.Equal(t, 1.875, cyl.Radius)
	assert.Equal(t, 45.5, cyl.Height)
}

func TestSideHoleOutOfSpan(t *testing.T) {
	_, err := SideHole(sidingWedge, 200, 0, 1, 10, 16)
	assert.ErrorIs(t, err, ErrOutOfSpan)
}

func TestFacePlacement(t *testing.T) {
	a, err := FacePlacement(sidingWedge, 40)
	require.NoError(t, err)

	slope := math.Atan2(21, 151) * 180 / math.Pi
	assert.InDelta(t, slope, a.Rotate.Z, 1e-12)
	local, _ := sidingWedge.ThicknessAt(40)
	assert.Equal(t, r3.Vec{X: local, Y: 40}, a.Translate)

	// Local +Y, rotated by the slope, must run along the face.
	rad := a.Rotate.Z * math.Pi / 180
	down := r3.Vec{X: -math.Sin(rad), Y: math.Cos(rad)}
	face := r3.Unit(r3.Vec{X: sidingWedge.Bottom - sidingWedge.Top, Y: sidingWedge.Span})
	assert.InDelta(t, 1, r3.Dot(down, face), 1e-12)
}

func TestFacePlacementZeroSpan(t *testing.T) {
	_, err := FacePlacement(Taper{Top: 1, Bottom: 1}, 0)
	assert.ErrorIs(t, err, ErrZeroSpan)
}

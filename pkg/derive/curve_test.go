package derive

import (
	"math"
	"testing"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"
)

func TestHalfEllipsePointCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 500).Draw(t, "segments")
		rx := rapid.Float64Range(0.1, 200).Draw(t, "rx")
		ry := rapid.Float64Range(0.1, 50).Draw(t, "ry")
		base := rapid.Float64Range(0.01, 5).Draw(t, "base")

		pts, err := HalfEllipse(rx, ry, n, base)
		if err != nil {
			t.Fatal(err)
		}
		if len(pts) != n+1+2 {
			t.Fatalf("got %d points, want %d", len(pts), n+3)
		}
		if i := csg.DuplicatePoint(pts); i >= 0 {
			t.Fatalf("duplicate consecutive point at %d: %v", i, pts[i])
		}
		if csg.SignedArea(pts) <= 0 {
			t.Fatalf("polygon is not counter-clockwise")
		}
	})
}

func TestHalfEllipseShape(t *testing.T) {
	pts, err := HalfEllipse(53.5, 5, 4, 0.2)
	require.NoError(t, err)
	require.Len(t, pts, 7)

	assert.Equal(t, r2.Vec{X: 53.5, Y: 0}, pts[0])
	assert.InDelta(t, 0, pts[2].X, 1e-12)
	assert.InDelta(t, 5, pts[2].Y, 1e-12)
	assert.Equal(t, -53.5, pts[4].X)
	assert.Equal(t, r2.Vec{X: -53.5, Y: -0.2}, pts[5])
	assert.Equal(t, r2.Vec{X: 53.5, Y: -0.2}, pts[6])
	assert.False(t, csg.SelfIntersects(pts))

	for _, p := range pts[:5] {
		v := (p.X*p.X)/(53.5*53.5) + (p.Y*p.Y)/25
		assert.InDelta(t, 1, v, 1e-9, "arc point %v off the ellipse", p)
	}
}

func TestHalfEllipseRejectsBadInput(t *testing.T) {
	for _, tc := range []struct {
		rx, ry, base float64
		n            int
	}{
		{0, 5, 0.2, 10},
		{10, -1, 0.2, 10},
		{10, 5, 0.2, 0},
		{10, 5, 0, 10},
	} {
		_, err := HalfEllipse(tc.rx, tc.ry, tc.n, tc.base)
		assert.Error(t, err, "%+v", tc)
	}
}

func TestMarker(t *testing.T) {
	pts, err := Marker(53.5, 4, 1.35, 0.2)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, 51.5, pts[0].X)
	assert.Equal(t, 55.5, pts[1].X)
	assert.Equal(t, 1.35, pts[2].Y)
	assert.Greater(t, csg.SignedArea(pts), 0.0)
	assert.False(t, math.IsNaN(pts[2].X))

	_, err = Marker(0, 0, 1, 0.2)
	assert.Error(t, err)
}

package scad

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/chazu/partgen/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func marshal(t *testing.T, n *csg.Node, segments int) string {
	t.Helper()
	out, err := Marshal(n, Options{Segments: segments})
	require.NoError(t, err)
	return string(out)
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name string
		node *csg.Node
		want string
	}{
		{
			name: "cube",
			node: csg.Box(r3.Vec{X: 61.85, Y: 44.2, Z: 2.28}, false),
			want: "cube(size=[61.85, 44.2, 2.28], center=false);\n",
		},
		{
			name: "centered cylinder",
			node: csg.Cylinder(45.5, 1.875, 100, true),
			want: "cylinder(h=45.5, r=1.875, center=true, $fn=100);\n",
		},
		{
			name: "extrusion",
			node: csg.Extrude([]r2.Vec{{X: 0, Y: 0}, {X: 23, Y: 0}, {X: 2, Y: 151}, {X: 0, Y: 151}}, 43.5, csg.AxisZ),
			want: "linear_extrude(height=43.5) {\n" +
				"  polygon(points=[[0, 0], [23, 0], [2, 151], [0, 151]]);\n" +
				"}\n",
		},
		{
			name: "extrusion along x",
			node: csg.Extrude([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, 2, csg.AxisX),
			want: "rotate([0, 90, 0]) {\n" +
				"  linear_extrude(height=2) {\n" +
				"    polygon(points=[[0, 0], [1, 0], [0, 1]]);\n" +
				"  }\n" +
				"}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, marshal(t, tt.node, 0))
		})
	}
}

func TestHeader(t *testing.T) {
	out := marshal(t, csg.Box(r3.Vec{X: 1, Y: 1, Z: 1}, true), 100)
	assert.Equal(t, "$fn=100;\n\ncube(size=[1, 1, 1], center=true);\n", out)
	assert.Equal(t, 1, strings.Count(out, "$fn="))
}

func TestTransformNesting(t *testing.T) {
	n := csg.Transform(csg.Box(r3.Vec{X: 1, Y: 2, Z: 3}, false), csg.Affine{
		Translate: r3.Vec{X: 5},
		Rotate:    r3.Vec{Z: -90},
		Scale:     r3.Vec{X: 1, Y: 1, Z: 2},
	})
	want := "translate([5, 0, 0]) {\n" +
		"  rotate([0, 0, -90]) {\n" +
		"    scale([1, 1, 2]) {\n" +
		"      cube(size=[1, 2, 3], center=false);\n" +
		"    }\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, want, marshal(t, n, 0))

	// Only non-identity components are written.
	only := csg.Translate(csg.Box(r3.Vec{X: 1, Y: 1, Z: 1}, false), r3.Vec{Y: -0.5})
	assert.Equal(t, "translate([0, -0.5, 0]) {\n  cube(size=[1, 1, 1], center=false);\n}\n", marshal(t, only, 0))
}

func TestDifferenceOrderIsPreserved(t *testing.T) {
	a := csg.Box(r3.Vec{X: 2, Y: 2, Z: 2}, false)
	b := csg.Cylinder(3, 0.5, 16, false)

	ab := marshal(t, csg.Difference(a, b), 0)
	ba := marshal(t, csg.Difference(b, a), 0)
	assert.NotEqual(t, ab, ba)
	assert.Equal(t, "difference() {\n"+
		"  cube(size=[2, 2, 2], center=false);\n"+
		"  cylinder(h=3, r=0.5, center=false, $fn=16);\n"+
		"}\n", ab)
}

func TestSeparatorScene(t *testing.T) {
	cfg, ok := model.Preset("separator")
	require.True(t, ok)
	root, err := model.Assemble(cfg)
	require.NoError(t, err)

	out := marshal(t, root, cfg.Segments)
	assert.True(t, strings.HasPrefix(out, "$fn=100;\n\ndifference() {\n  union() {\n"))
	assert.Contains(t, out, "cube(size=[3, 4, 1.2], center=false);")
	assert.Equal(t, 2, strings.Count(out, "cylinder(h=2.28, r=15, center=false, $fn=50);"))
	assert.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"))
}

func TestDeterministic(t *testing.T) {
	cfg, ok := model.Preset("siding-wedge")
	require.True(t, ok)
	a, err := model.Assemble(cfg)
	require.NoError(t, err)
	b, err := model.Assemble(cfg)
	require.NoError(t, err)
	assert.Equal(t, marshal(t, a, 100), marshal(t, b, 100))
}

func TestErrors(t *testing.T) {
	_, err := Marshal(nil, Options{})
	assert.True(t, errors.Is(err, ErrNilTree))

	_, err = Marshal(csg.Box(r3.Vec{X: 1, Y: 1, Z: 1}, false), Options{Segments: -1})
	assert.Error(t, err)

	_, err = Marshal(&csg.Node{}, Options{})
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.scad")
	require.NoError(t, WriteFile(path, csg.Box(r3.Vec{X: 1, Y: 1, Z: 1}, false), Options{Segments: 8}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "$fn=8;\n\ncube(size=[1, 1, 1], center=false);\n", string(data))
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0", num(-0.0))
	assert.Equal(t, "0.1", num(0.1))
	assert.Equal(t, "-12.5", num(-12.5))
	assert.Equal(t, "1000000", num(1e6))
}

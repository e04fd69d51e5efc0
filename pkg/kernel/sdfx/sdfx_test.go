package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/partgen/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r2"
)

func checkBounds(t *testing.T, s kernel.Solid, expectMin, expectMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25, false)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoxPlacement(t *testing.T) {
	k := New()
	checkBounds(t, k.Box(100, 50, 25, false), [3]float64{0, 0, 0}, [3]float64{100, 50, 25}, 0.01)
	checkBounds(t, k.Box(100, 50, 25, true), [3]float64{-50, -25, -12.5}, [3]float64{50, 25, 12.5}, 0.01)
}

func TestCylinder(t *testing.T) {
	k := NewWithCells(64)
	cyl := k.Cylinder(50, 10, 32, false)
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	checkBounds(t, cyl, [3]float64{-10, -10, 0}, [3]float64{10, 10, 50}, 0.01)
	checkBounds(t, k.Cylinder(50, 10, 32, true), [3]float64{-10, -10, -25}, [3]float64{10, 10, 25}, 0.01)
}

func TestExtrude(t *testing.T) {
	k := NewWithCells(64)
	// The tapered wedge profile: thick at y=0, thin at y=151.
	profile := []r2.Vec{{X: 0, Y: 0}, {X: 23, Y: 0}, {X: 2, Y: 151}, {X: 0, Y: 151}}
	wedge := k.Extrude(profile, 43.5)
	checkBounds(t, wedge, [3]float64{0, 0, 0}, [3]float64{23, 151, 43.5}, 0.01)

	mesh, err := k.ToMesh(wedge)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("extrusion mesh is empty")
	}
}

func TestExtrudeRejectsBadPolygon(t *testing.T) {
	k := New()
	defer func() {
		r := recover()
		kerr, ok := r.(*kernel.Error)
		if !ok {
			t.Fatalf("recovered %v, want *kernel.Error", r)
		}
		if kerr.Op != "extrude" {
			t.Errorf("Op = %q, want extrude", kerr.Op)
		}
	}()
	k.Extrude([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, 0)
}

func TestDifference(t *testing.T) {
	k := NewWithCells(64)

	box := k.Box(100, 100, 100, false)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	cyl := k.Cylinder(120, 20, 32, true)
	diff := k.Difference(box, cyl)
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	t.Logf("box triangles: %d, difference triangles: %d", boxMesh.TriangleCount(), diffMesh.TriangleCount())
}

func TestUnion(t *testing.T) {
	k := NewWithCells(64)
	box1 := k.Box(50, 50, 50, false)
	box2 := k.Translate(k.Box(50, 50, 50, false), 30, 0, 0)
	u := k.Union(box1, box2)
	checkBounds(t, u, [3]float64{0, 0, 0}, [3]float64{80, 50, 50}, 0.01)
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := k.Box(10, 10, 10, true)
	translated := k.Translate(box, 100, 200, 300)

	// Translated box(10,10,10) by (100,200,300) should be centered at (100,200,300).
	checkBounds(t, translated, [3]float64{95, 195, 295}, [3]float64{105, 205, 305}, 0.5)
}

func TestRotate(t *testing.T) {
	k := New()
	box := k.Box(100, 10, 10, true)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestScale(t *testing.T) {
	k := New()
	cyl := k.Cylinder(10, 18, 32, true)

	stretched := k.Scale(cyl, 1, 1, 2)
	checkBounds(t, stretched, [3]float64{-18, -18, -10}, [3]float64{18, 18, 10}, 0.5)

	uniform := k.Scale(k.Box(2, 2, 2, true), 3, 3, 3)
	checkBounds(t, uniform, [3]float64{-3, -3, -3}, [3]float64{3, 3, 3}, 0.01)
}

func TestScaleRejectsZero(t *testing.T) {
	k := New()
	defer func() {
		var kerr *kernel.Error
		err, _ := recover().(error)
		if !errors.As(err, &kerr) {
			t.Fatalf("expected *kernel.Error panic, got %v", err)
		}
	}()
	k.Scale(k.Box(1, 1, 1, true), 1, 0, 1)
}

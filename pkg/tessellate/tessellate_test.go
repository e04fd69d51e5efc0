package tessellate_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/chazu/partgen/pkg/kernel"
	"github.com/chazu/partgen/pkg/kernel/sdfx"
	"github.com/chazu/partgen/pkg/model"
	"github.com/chazu/partgen/pkg/tessellate"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// opSolid records the expression that produced it.
type opSolid struct{ expr string }

func (s *opSolid) BoundingBox() (min, max [3]float64) { return }

// recordingKernel builds a textual expression instead of geometry and
// counts primitive constructions.
type recordingKernel struct {
	primitives int
	fail       string
}

func (k *recordingKernel) leaf(expr string) kernel.Solid {
	k.primitives++
	if k.fail != "" && strings.HasPrefix(expr, k.fail) {
		panic(&kernel.Error{Op: k.fail, Err: fmt.Errorf("rejected %s", expr)})
	}
	return &opSolid{expr: expr}
}

func e(s kernel.Solid) string { return s.(*opSolid).expr }

func (k *recordingKernel) Box(x, y, z float64, c bool) kernel.Solid {
	return k.leaf(fmt.Sprintf("box(%g,%g,%g,%t)", x, y, z, c))
}
func (k *recordingKernel) Cylinder(h, r float64, seg int, c bool) kernel.Solid {
	return k.leaf(fmt.Sprintf("cyl(%g,%g,%t)", h, r, c))
}
func (k *recordingKernel) Extrude(pts []r2.Vec, l float64) kernel.Solid {
	return k.leaf(fmt.Sprintf("extrude(%d,%g)", len(pts), l))
}
func (k *recordingKernel) Union(a, b kernel.Solid) kernel.Solid {
	return &opSolid{fmt.Sprintf("union(%s,%s)", e(a), e(b))}
}
func (k *recordingKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return &opSolid{fmt.Sprintf("diff(%s,%s)", e(a), e(b))}
}
func (k *recordingKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return &opSolid{fmt.Sprintf("T[%g,%g,%g](%s)", x, y, z, e(s))}
}
func (k *recordingKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return &opSolid{fmt.Sprintf("R[%g,%g,%g](%s)", x, y, z, e(s))}
}
func (k *recordingKernel) Scale(s kernel.Solid, x, y, z float64) kernel.Solid {
	return &opSolid{fmt.Sprintf("S[%g,%g,%g](%s)", x, y, z, e(s))}
}
func (k *recordingKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{Vertices: []float32{0, 0, 0}}, nil
}

var _ kernel.Kernel = (*recordingKernel)(nil)

func unit() *csg.Node { return csg.Box(r3.Vec{X: 1, Y: 1, Z: 1}, false) }

func TestDifferenceIsLeftFold(t *testing.T) {
	k := &recordingKernel{}
	root := csg.Difference(
		unit(),
		csg.Cylinder(2, 0.5, 16, true),
		csg.Box(r3.Vec{X: 2, Y: 2, Z: 2}, true),
	)
	s, err := tessellate.Solid(root, k)
	if err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	want := "diff(diff(box(1,1,1,false),cyl(2,0.5,true)),box(2,2,2,true))"
	if got := e(s); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestTransformOrder(t *testing.T) {
	k := &recordingKernel{}
	root := csg.Transform(unit(), csg.Affine{
		Translate: r3.Vec{X: 5},
		Rotate:    r3.Vec{Z: 90},
		Scale:     r3.Vec{X: 1, Y: 1, Z: 2},
	})
	s, err := tessellate.Solid(root, k)
	if err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	want := "T[5,0,0](R[0,0,90](S[1,1,2](box(1,1,1,false))))"
	if got := e(s); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	// Identity components are skipped.
	s, err = tessellate.Solid(csg.Translate(unit(), r3.Vec{Y: 3}), k)
	if err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	if got := e(s); got != "T[0,3,0](box(1,1,1,false))" {
		t.Errorf("got %s", got)
	}
}

func TestExtrusionAxis(t *testing.T) {
	k := &recordingKernel{}
	tri := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	s, err := tessellate.Solid(csg.Extrude(tri, 4, csg.AxisX), k)
	if err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	if got := e(s); got != "R[0,90,0](extrude(3,4))" {
		t.Errorf("got %s", got)
	}
}

func TestSharedSubtreeBuiltOnce(t *testing.T) {
	k := &recordingKernel{}
	shared := unit()
	root := csg.Union(shared, csg.Translate(shared, r3.Vec{X: 2}))
	if _, err := tessellate.Solid(root, k); err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	if k.primitives != 1 {
		t.Errorf("built %d primitives, want 1", k.primitives)
	}
}

func TestKernelErrorIsReturned(t *testing.T) {
	k := &recordingKernel{fail: "cyl"}
	root := csg.Difference(unit(), csg.Cylinder(2, 0.5, 16, true))
	_, err := tessellate.Solid(root, k)
	if err == nil {
		t.Fatal("expected error from failing kernel")
	}
	if !strings.Contains(err.Error(), "kernel cyl") {
		t.Errorf("error = %v, want kernel cyl", err)
	}
}

func TestInvalidTree(t *testing.T) {
	k := &recordingKernel{}
	if _, err := tessellate.Solid(nil, k); err == nil {
		t.Error("nil tree: expected error")
	}
	if _, err := tessellate.Solid(&csg.Node{}, k); err == nil {
		t.Error("zero node: expected error")
	}
}

func TestTessellateNamesMesh(t *testing.T) {
	m, err := tessellate.Tessellate(unit(), &recordingKernel{}, "cube")
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if m.PartName != "cube" {
		t.Errorf("PartName = %q, want cube", m.PartName)
	}
}

func TestSeparatorWithSdfx(t *testing.T) {
	if testing.Short() {
		t.Skip("meshing is slow")
	}
	cfg, ok := model.Preset("separator")
	if !ok {
		t.Fatal("separator preset missing")
	}
	root, err := model.Assemble(cfg)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	k := sdfx.NewWithCells(80)
	s, err := tessellate.Solid(root, k)
	if err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	min, max := s.BoundingBox()
	if min[0] > 0.01 || max[0] < 91.84 || max[1] < 44.19 {
		t.Errorf("bounds %v..%v do not cover the plate", min, max)
	}

	mesh, err := tessellate.Tessellate(root, k, cfg.Name)
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("separator mesh is empty")
	}
	if mesh.PartName != "separator" {
		t.Errorf("PartName = %q", mesh.PartName)
	}
}

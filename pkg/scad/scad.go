// Package scad serializes a CSG tree to an OpenSCAD scene description.
//
// Each primitive becomes one shape call, each transform becomes nested
// translate/rotate/scale blocks around its child, and each composite
// becomes a boolean block over its children in order. The global segment
// count is written once as a $fn header; cylinders also carry their own.
package scad

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/partgen/pkg/csg"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options controls scene output.
type Options struct {
	// Segments is written as the file-level $fn default. Zero omits the
	// header and leaves OpenSCAD's own default in place.
	Segments int
}

// ErrNilTree is returned when asked to serialize a nil tree.
var ErrNilTree = errors.New("scad: nil tree")

const indentUnit = "  "

type printer struct {
	w     io.Writer
	err   error
	depth int
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat(indentUnit, p.depth)+format+"\n", args...)
}

// Write serializes root to w.
func Write(w io.Writer, root *csg.Node, opts Options) error {
	if root == nil {
		return ErrNilTree
	}
	if opts.Segments < 0 {
		return fmt.Errorf("scad: negative segment count %d", opts.Segments)
	}
	p := &printer{w: w}
	if opts.Segments > 0 {
		p.line("$fn=%d;", opts.Segments)
		p.line("")
	}
	if err := p.node(root); err != nil {
		return err
	}
	return p.err
}

// Marshal returns the scene description for root.
func Marshal(root *csg.Node, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, root, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the scene description for root to path.
func WriteFile(path string, root *csg.Node, opts Options) error {
	data, err := Marshal(root, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scad: writing %s: %w", path, err)
	}
	return nil
}

func (p *printer) node(n *csg.Node) error {
	switch d := n.Data().(type) {
	case csg.BoxData:
		p.line("cube(size=%s, center=%t);", vec3(d.Size), d.Centered)
	case csg.CylinderData:
		p.line("cylinder(h=%s, r=%s, center=%t, $fn=%d);",
			num(d.Height), num(d.Radius), d.Centered, d.Segments)
	case csg.ExtrusionData:
		return p.extrusion(d)
	case csg.TransformData:
		if n.NumChildren() != 1 {
			return fmt.Errorf("scad: transform with %d children", n.NumChildren())
		}
		return p.transform(d.Affine, n.Child(0))
	case csg.CompositeData:
		var op string
		switch n.Kind() {
		case csg.KindUnion:
			op = "union"
		case csg.KindDifference:
			op = "difference"
		default:
			return fmt.Errorf("scad: composite of kind %s", n.Kind())
		}
		p.line("%s() {", op)
		p.depth++
		for _, c := range n.Children() {
			if err := p.node(c); err != nil {
				return err
			}
		}
		p.depth--
		p.line("}")
	default:
		return fmt.Errorf("scad: cannot serialize %s node", n.Kind())
	}
	return nil
}

// transform opens one block per non-identity component, outermost first,
// so the child is scaled, then rotated, then translated.
func (p *printer) transform(a csg.Affine, child *csg.Node) error {
	var wrappers []string
	if a.HasTranslate() {
		wrappers = append(wrappers, "translate("+vec3(a.Translate)+")")
	}
	if a.HasRotate() {
		wrappers = append(wrappers, "rotate("+vec3(a.Rotate)+")")
	}
	if a.HasScale() {
		wrappers = append(wrappers, "scale("+vec3(a.Normalize().Scale)+")")
	}
	return p.wrapped(wrappers, func() error { return p.node(child) })
}

func (p *printer) wrapped(wrappers []string, body func() error) error {
	for _, w := range wrappers {
		p.line("%s {", w)
		p.depth++
	}
	if err := body(); err != nil {
		return err
	}
	for range wrappers {
		p.depth--
		p.line("}")
	}
	return nil
}

func (p *printer) extrusion(d csg.ExtrusionData) error {
	var wrappers []string
	if rot := csg.AxisRotation(d.Axis); rot != (r3.Vec{}) {
		wrappers = append(wrappers, "rotate("+vec3(rot)+")")
	}
	return p.wrapped(wrappers, func() error {
		p.line("linear_extrude(height=%s) {", num(d.Length))
		p.depth++
		p.line("polygon(points=%s);", points(d.Points))
		p.depth--
		p.line("}")
		return nil
	})
}

func num(v float64) string {
	if v == 0 {
		// Collapse -0.
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func vec3(v r3.Vec) string {
	return "[" + num(v.X) + ", " + num(v.Y) + ", " + num(v.Z) + "]"
}

func points(pts []r2.Vec) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, pt := range pts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[" + num(pt.X) + ", " + num(pt.Y) + "]")
	}
	sb.WriteByte(']')
	return sb.String()
}

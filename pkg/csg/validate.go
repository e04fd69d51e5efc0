package csg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ValidationSeverity indicates whether a validation finding blocks export
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Path     string // slash-separated kinds and child indices from the root
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking error was found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the structural invariants of the tree rooted at root.
// Builders already enforce most of them; Validate catches zero-value
// nodes and reports degenerate geometry that builders deliberately allow.
// It is read-only.
func Validate(root *Node) ValidationResult {
	var res ValidationResult
	if root == nil {
		res.Errors = append(res.Errors, ValidationError{Path: "/", Message: "nil tree", Severity: SeverityError})
		return res
	}
	walkPath(root, root.kind.String(), func(n *Node, path string) {
		for _, f := range validateNode(n) {
			f.Path = path
			if f.Severity == SeverityError {
				res.Errors = append(res.Errors, f)
			} else {
				res.Warnings = append(res.Warnings, f)
			}
		}
	})
	return res
}

func validateNode(n *Node) []ValidationError {
	errf := func(format string, args ...interface{}) ValidationError {
		return ValidationError{Message: fmt.Sprintf(format, args...), Severity: SeverityError}
	}
	warnf := func(format string, args ...interface{}) ValidationError {
		return ValidationError{Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
	}

	var out []ValidationError
	switch d := n.data.(type) {
	case BoxData:
		if d.Size.X == 0 || d.Size.Y == 0 || d.Size.Z == 0 {
			out = append(out, warnf("box %v has zero volume", d.Size))
		}
	case CylinderData:
		if d.Segments <= 0 {
			out = append(out, errf("cylinder segment count %d must be positive", d.Segments))
		}
		if d.Height == 0 || d.Radius == 0 {
			out = append(out, warnf("cylinder h=%g r=%g has zero volume", d.Height, d.Radius))
		}
	case ExtrusionData:
		if len(d.Points) < 3 {
			out = append(out, errf("polygon has %d points, need at least 3", len(d.Points)))
			break
		}
		if i := DuplicatePoint(d.Points); i >= 0 {
			out = append(out, warnf("polygon repeats point %d %v", i, d.Points[i]))
		}
		if SignedArea(d.Points) == 0 {
			out = append(out, warnf("polygon has zero area"))
		}
		if SelfIntersects(d.Points) {
			out = append(out, warnf("polygon self-intersects"))
		}
	case TransformData:
		if len(n.children) != 1 {
			out = append(out, errf("transform has %d children, want 1", len(n.children)))
		}
		s := d.Affine.Normalize().Scale
		if s.X == 0 || s.Y == 0 || s.Z == 0 {
			out = append(out, errf("scale %v collapses an axis", s))
		}
	case CompositeData:
		if !n.kind.IsComposite() {
			out = append(out, errf("composite payload on %s node", n.kind))
		}
		if len(n.children) < 2 {
			out = append(out, errf("%s has %d children, need at least 2", n.kind, len(n.children)))
		}
	default:
		out = append(out, errf("unknown node kind %s", n.kind))
	}
	return out
}

// SignedArea returns the shoelace area of the closed polygon; positive for
// counter-clockwise winding.
func SignedArea(pts []r2.Vec) float64 {
	var a float64
	for i := range pts {
		a += r2.Cross(pts[i], pts[(i+1)%len(pts)])
	}
	return a / 2
}

// DuplicatePoint returns the index of the first point equal to its
// successor (wrapping around), or -1.
func DuplicatePoint(pts []r2.Vec) int {
	for i := range pts {
		if pts[i] == pts[(i+1)%len(pts)] {
			return i
		}
	}
	return -1
}

// SelfIntersects reports whether two non-adjacent edges of the closed
// polygon touch or cross.
func SelfIntersects(pts []r2.Vec) bool {
	n := len(pts)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a0, a1 := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // shares pts[0]
			}
			if segmentsIntersect(a0, a1, pts[j], pts[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

func onSegment(a, b, p r2.Vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 r2.Vec) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

package csg

// Op selects a boolean operator.
type Op int

const (
	OpUnion Op = iota
	OpDifference
)

func (o Op) kind() Kind {
	if o == OpDifference {
		return KindDifference
	}
	return KindUnion
}

// Union returns the union of at least two children. Structure only: no
// geometry is evaluated.
func Union(children ...*Node) *Node {
	return composite("csg.Union", KindUnion, children)
}

// Difference returns children[0] minus the union of children[1:]. The
// operand order is preserved exactly; swapping it changes which material
// is kept.
func Difference(children ...*Node) *Node {
	return composite("csg.Difference", KindDifference, children)
}

// Combine applies op like Union or Difference but returns a lone child
// unchanged instead of building a degenerate composite. It panics when
// children is empty.
func Combine(op Op, children ...*Node) *Node {
	switch len(children) {
	case 0:
		constructionf("csg.Combine", "no children for %s", op.kind())
	case 1:
		if children[0] == nil {
			constructionf("csg.Combine", "nil child")
		}
		return children[0]
	}
	return composite("csg.Combine", op.kind(), children)
}

func composite(op string, k Kind, children []*Node) *Node {
	if len(children) < 2 {
		constructionf(op, "%s needs at least 2 children, got %d", k, len(children))
	}
	for i, c := range children {
		if c == nil {
			constructionf(op, "child %d is nil", i)
		}
	}
	return &Node{
		kind:     k,
		data:     CompositeData{},
		children: append([]*Node(nil), children...),
	}
}

package csg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
)

// Walk visits every node in pre-order, children in their stored order.
// A shared sub-tree is visited once per parent reference.
func Walk(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	fn(root)
	for _, c := range root.children {
		Walk(c, fn)
	}
}

// Count returns the number of node references in the tree.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node) { n++ })
	return n
}

func walkPath(n *Node, path string, fn func(*Node, string)) {
	fn(n, path)
	for i, c := range n.children {
		walkPath(c, path+"/"+strconv.Itoa(i)+":"+c.kind.String(), fn)
	}
}

// Fingerprint returns a content hash of the tree. Structurally identical
// trees have identical fingerprints regardless of pointer identity.
func Fingerprint(root *Node) string {
	h := sha256.New()
	writeCanonical(h, root)
	return hex.EncodeToString(h.Sum(nil))
}

func writeCanonical(h hash.Hash, n *Node) {
	if n == nil {
		fmt.Fprint(h, "nil;")
		return
	}
	fmt.Fprintf(h, "%d{", n.kind)
	switch d := n.data.(type) {
	case BoxData:
		fmt.Fprintf(h, "%v,%v,%v,%t", d.Size.X, d.Size.Y, d.Size.Z, d.Centered)
	case CylinderData:
		fmt.Fprintf(h, "%v,%v,%d,%t", d.Height, d.Radius, d.Segments, d.Centered)
	case ExtrusionData:
		fmt.Fprintf(h, "%v,%d,", d.Length, d.Axis)
		for _, p := range d.Points {
			fmt.Fprintf(h, "[%v,%v]", p.X, p.Y)
		}
	case TransformData:
		a := d.Affine
		fmt.Fprintf(h, "%v|%v|%v", a.Translate, a.Rotate, a.Scale)
	}
	fmt.Fprint(h, "}(")
	for _, c := range n.children {
		writeCanonical(h, c)
	}
	fmt.Fprint(h, ");")
}

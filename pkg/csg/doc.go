// Package csg defines the immutable constructive solid geometry tree that
// partgen assembles and exports. A tree is built bottom-up from primitives,
// affine transform wrappers and boolean composites; every builder returns a
// new node and never mutates its inputs, so a sub-tree can be shared by
// several parents.
package csg

package csg

import "fmt"

// ConstructionError reports a violated tree invariant. Builders panic with
// a *ConstructionError; it marks a programming fault in the caller, not bad
// user input, which is rejected before any tree is built.
type ConstructionError struct {
	Op  string // builder that detected the problem, e.g. "csg.Union"
	Msg string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func constructionf(op, format string, args ...interface{}) {
	panic(&ConstructionError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

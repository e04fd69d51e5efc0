package kernel

import "fmt"

// Error is raised, as a panic value, by kernel operations whose underlying
// library rejects its input. Walkers recover it and return it as an error.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("kernel %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

package dependency

import (
	"errors"
	"strings"
)

// ErrCycle is matched by every *CycleError via errors.Is.
var ErrCycle = errors.New("dependency cycle detected")

// CycleError is returned by TopologicalSort when the declarations contain a
// cycle.  Path lists the cycle in "depends on" direction and starts and ends
// with the same key, e.g. [A, B, C, A] for A -> B -> C -> A.
type CycleError struct {
	Path []ComponentKey
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, key := range e.Path {
		parts[i] = key.String()
	}
	return ErrCycle.Error() + ": " + strings.Join(parts, " -> ")
}

// Is makes errors.Is(err, ErrCycle) work for wrapped cycle errors.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// IsCycle reports whether err is or wraps a *CycleError.
func IsCycle(err error) bool {
	var cycleErr *CycleError
	return errors.As(err, &cycleErr)
}

// newCycleError builds the error from the DFS stack at the moment key was
// found in progress.  The DFS walks dependents, so the stack runs against the
// edge direction and is reversed here.
func newCycleError(stack []ComponentKey, key ComponentKey) *CycleError {
	start := 0
	for i, k := range stack {
		if k == key {
			start = i
			break
		}
	}
	loop := append(cloneKeys(stack[start:]), key)
	for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
		loop[i], loop[j] = loop[j], loop[i]
	}
	return &CycleError{Path: loop}
}

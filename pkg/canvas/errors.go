package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometry is matched by every GeometryError.
	ErrGeometry = errors.New("invalid geometry")

	// ErrUnbalancedTransformStack is returned by Pop when only the base
	// transform is left on the stack.
	ErrUnbalancedTransformStack = errors.New("pop without matching push")

	// ErrInvalidSize is returned for non-positive canvas dimensions.
	ErrInvalidSize = errors.New("canvas size must be positive")
)

// GeometryError reports a primitive or transform called with a non-finite
// argument, or one whose result became non-finite after transformation.
// Stroke weights are also rejected when negative.
type GeometryError struct {
	// Op is the operation name, e.g. "line" or "translate".
	Op string
	// Args are the arguments as passed by the caller.
	Args []float64
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: invalid geometry %v", e.Op, e.Args)
}

// Is makes errors.Is(err, ErrGeometry) true for every GeometryError.
func (e *GeometryError) Is(target error) bool {
	return target == ErrGeometry
}

package reduction

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a context is asked for an accumulation
// kind it was not built to produce.
var ErrUnsupported = errors.New("unsupported accumulation kind")

// ErrShapeMismatch indicates that two vectors of different lengths were
// combined.
type ErrShapeMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: expected length %d, got %d", e.Expected, e.Actual)
}

func unsupported(ctx, kind string) error {
	return fmt.Errorf("%w: %s context does not produce %s values", ErrUnsupported, ctx, kind)
}

package splitmap

import (
	"errors"
	"fmt"

	"github.com/hupe1980/splitmap/reduction"
)

var (
	// ErrOutOfOrder is returned when a writer receives a value that is not
	// greater than the previous one.
	ErrOutOfOrder = errors.New("values must be strictly ascending")

	// ErrUnsupported is returned when a reduction context is asked for an
	// accumulation kind it does not produce.
	ErrUnsupported = errors.New("unsupported accumulation kind")

	// ErrUnknownFilter is returned for a filter identifier missing from a
	// QueryContext.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrUnknownMetric is returned for a metric identifier missing from a
	// QueryContext.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrPermutationMismatch is returned when structures built under
	// different key permutations are combined.
	ErrPermutationMismatch = errors.New("permutation mismatch")
)

// ErrOrdering reports the value that broke the ascending order of a writer.
// It matches ErrOutOfOrder with errors.Is.
type ErrOrdering struct {
	Previous uint32
	Value    uint32
}

func (e *ErrOrdering) Error() string {
	return fmt.Sprintf("%s: %d after %d", ErrOutOfOrder, e.Value, e.Previous)
}

func (e *ErrOrdering) Is(target error) bool { return target == ErrOutOfOrder }

// ErrShapeMismatch indicates that vectors of different lengths were
// combined during a reduction.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrShapeMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: expected length %d, got %d", e.Expected, e.Actual)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

// ErrCircuitPanic is returned when a circuit panics during evaluation.
// The evaluation is abandoned as a whole.
//
// Key is the key as callers see it. StoredKey is its permuted position in
// the index; both are equal for EvaluateIndex, which knows no permutation.
type ErrCircuitPanic struct {
	Partition int
	Key       uint16
	StoredKey uint16
	Value     any
}

func (e *ErrCircuitPanic) Error() string {
	return fmt.Sprintf("circuit panicked in partition %d at key %d: %v", e.Partition, e.Key, e.Value)
}

// ErrReductionPanic is returned when a procedure panics during a reduction.
type ErrReductionPanic struct {
	Partition int
	Value     any
}

func (e *ErrReductionPanic) Error() string {
	return fmt.Sprintf("reduction panicked in partition %d: %v", e.Partition, e.Value)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sm *reduction.ErrShapeMismatch
	if errors.As(err, &sm) {
		return &ErrShapeMismatch{Expected: sm.Expected, Actual: sm.Actual, cause: err}
	}
	if errors.Is(err, reduction.ErrUnsupported) {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	return err
}

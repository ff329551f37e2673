package reduction

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/splitmap/column"
)

// Op combines an accumulated value with a contribution. It must be
// associative so partial results can be merged with the same operator.
type Op func(acc, v float64) float64

// LongOp is Op for integer outputs.
type LongOp func(acc, v int64) int64

// VectorOp combines an accumulated vector with a contribution and returns
// the new accumulated vector. It may update acc in place.
type VectorOp func(acc, v []float64) ([]float64, error)

// Add is the Op for sums.
func Add(acc, v float64) float64 { return acc + v }

// AddLong is the LongOp for counts.
func AddLong(acc, v int64) int64 { return acc + v }

// AddVectors adds v into acc element-wise.
func AddVectors(acc, v []float64) ([]float64, error) {
	if len(acc) != len(v) {
		return nil, &ErrShapeMismatch{Expected: len(acc), Actual: len(v)}
	}
	floats.Add(acc, v)
	return acc, nil
}

// Context accumulates the outputs of one reduction and gives it access to
// the metric columns it reads.
//
// A Context is owned by a single goroutine.
type Context interface {
	// ReadChunk returns the column of input for key.
	ReadChunk(input int, key uint16) (*column.Column, bool)

	ContributeDouble(field int, value float64, op Op) error
	ContributeLong(field int, value int64, op LongOp) error
	ContributeVector(value []float64, op VectorOp) error

	ReducedDouble() (float64, error)
	ReducedLong() (int64, error)
	ReducedVector() ([]float64, error)
}

// inputs is the column lookup shared by all contexts.
type inputs []*column.Index

func (in inputs) ReadChunk(input int, key uint16) (*column.Column, bool) {
	if input < 0 || input >= len(in) {
		panic(fmt.Sprintf("reduction: input %d out of range [0, %d)", input, len(in)))
	}
	if in[input] == nil {
		return nil, false
	}
	return in[input].Get(key)
}

// column returns the column of input for key, or an empty column.
func (in inputs) column(input int, key uint16) *column.Column {
	c, ok := in.ReadChunk(input, key)
	if !ok || c == nil {
		return emptyColumn
	}
	return c
}

var emptyColumn = column.New()

// ScalarContext accumulates a single float64. The field argument of
// ContributeDouble is ignored.
type ScalarContext struct {
	inputs
	value float64
}

// NewScalarContext returns a context reading from the given column indexes.
func NewScalarContext(in ...*column.Index) *ScalarContext {
	return &ScalarContext{inputs: in}
}

// ContributeDouble implements Context.
func (c *ScalarContext) ContributeDouble(_ int, value float64, op Op) error {
	c.value = op(c.value, value)
	return nil
}

// ContributeLong implements Context.
func (c *ScalarContext) ContributeLong(int, int64, LongOp) error {
	return unsupported("scalar", "int64")
}

// ContributeVector implements Context.
func (c *ScalarContext) ContributeVector([]float64, VectorOp) error {
	return unsupported("scalar", "vector")
}

// ReducedDouble implements Context.
func (c *ScalarContext) ReducedDouble() (float64, error) { return c.value, nil }

// ReducedLong implements Context.
func (c *ScalarContext) ReducedLong() (int64, error) { return 0, unsupported("scalar", "int64") }

// ReducedVector implements Context.
func (c *ScalarContext) ReducedVector() ([]float64, error) {
	return nil, unsupported("scalar", "vector")
}

// VectorContext accumulates a fixed-size vector of named float64 fields.
type VectorContext struct {
	inputs
	values []float64
}

// NewVectorContext returns a context with size zeroed fields.
func NewVectorContext(size int, in ...*column.Index) *VectorContext {
	return &VectorContext{inputs: in, values: make([]float64, size)}
}

// ContributeDouble implements Context. field must be in [0, size).
func (c *VectorContext) ContributeDouble(field int, value float64, op Op) error {
	c.values[field] = op(c.values[field], value)
	return nil
}

// ContributeLong implements Context.
func (c *VectorContext) ContributeLong(int, int64, LongOp) error {
	return unsupported("vector", "int64")
}

// ContributeVector implements Context.
func (c *VectorContext) ContributeVector(value []float64, op VectorOp) error {
	out, err := op(c.values, value)
	if err != nil {
		return err
	}
	if len(out) != len(c.values) {
		return &ErrShapeMismatch{Expected: len(c.values), Actual: len(out)}
	}
	if len(out) > 0 && &out[0] != &c.values[0] {
		copy(c.values, out)
	}
	return nil
}

// ReducedDouble implements Context.
func (c *VectorContext) ReducedDouble() (float64, error) { return 0, unsupported("vector", "float64") }

// ReducedLong implements Context.
func (c *VectorContext) ReducedLong() (int64, error) { return 0, unsupported("vector", "int64") }

// ReducedVector implements Context. The returned slice is owned by the
// context.
func (c *VectorContext) ReducedVector() ([]float64, error) { return c.values, nil }

// CountContext accumulates a single int64.
type CountContext struct {
	inputs
	value int64
}

// NewCountContext returns a context reading from the given column indexes.
func NewCountContext(in ...*column.Index) *CountContext {
	return &CountContext{inputs: in}
}

// ContributeDouble implements Context.
func (c *CountContext) ContributeDouble(int, float64, Op) error {
	return unsupported("count", "float64")
}

// ContributeLong implements Context.
func (c *CountContext) ContributeLong(_ int, value int64, op LongOp) error {
	c.value = op(c.value, value)
	return nil
}

// ContributeVector implements Context.
func (c *CountContext) ContributeVector([]float64, VectorOp) error {
	return unsupported("count", "vector")
}

// ReducedDouble implements Context.
func (c *CountContext) ReducedDouble() (float64, error) { return 0, unsupported("count", "float64") }

// ReducedLong implements Context.
func (c *CountContext) ReducedLong() (int64, error) { return c.value, nil }

// ReducedVector implements Context.
func (c *CountContext) ReducedVector() ([]float64, error) {
	return nil, unsupported("count", "vector")
}

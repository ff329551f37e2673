package reduction

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/splitmap/column"
	"github.com/hupe1980/splitmap/container"
)

// Procedure reduces the selection of one partition. Accept is called once
// per present key in ascending key order with a repaired mask; Result is
// called once at the end.
type Procedure[R any] interface {
	Accept(key uint16, mask *container.Container) error
	Result() (R, error)
}

// Output fields of Average.
const (
	AverageSum = iota
	AverageCount
	averageFields
)

// Output fields of SimpleLinearRegression.
const (
	RegressionSX = iota
	RegressionSY
	RegressionSXX
	RegressionSYY
	RegressionSXY
	RegressionN
	regressionFields
)

// Sum adds the selected values of one column.
type Sum struct {
	ctx *ScalarContext
}

// NewSum returns a Sum over values.
func NewSum(values *column.Index) *Sum {
	return &Sum{ctx: NewScalarContext(values)}
}

// Accept implements Procedure.
func (s *Sum) Accept(key uint16, mask *container.Container) error {
	return s.ctx.ContributeDouble(0, maskedSum(s.ctx.column(0, key), mask), Add)
}

// Result implements Procedure.
func (s *Sum) Result() (float64, error) { return s.ctx.ReducedDouble() }

// SumProduct adds the products of the selected values of two columns.
type SumProduct struct {
	ctx *ScalarContext
}

// NewSumProduct returns a SumProduct over x and y.
func NewSumProduct(x, y *column.Index) *SumProduct {
	return &SumProduct{ctx: NewScalarContext(x, y)}
}

// Accept implements Procedure.
func (s *SumProduct) Accept(key uint16, mask *container.Container) error {
	x, y := s.ctx.column(0, key), s.ctx.column(1, key)
	return s.ctx.ContributeDouble(0, maskedDot(x, y, mask), Add)
}

// Result implements Procedure.
func (s *SumProduct) Result() (float64, error) { return s.ctx.ReducedDouble() }

// Average accumulates the sum and count of the selected values. Use Mean
// to finish the result.
type Average struct {
	ctx *VectorContext
}

// NewAverage returns an Average over values.
func NewAverage(values *column.Index) *Average {
	return &Average{ctx: NewVectorContext(averageFields, values)}
}

// Accept implements Procedure. Every selected offset is counted, including
// offsets whose page is not allocated.
func (a *Average) Accept(key uint16, mask *container.Container) error {
	if err := a.ctx.ContributeDouble(AverageSum, maskedSum(a.ctx.column(0, key), mask), Add); err != nil {
		return err
	}
	return a.ctx.ContributeDouble(AverageCount, float64(mask.Cardinality()), Add)
}

// Result implements Procedure.
func (a *Average) Result() ([]float64, error) { return a.ctx.ReducedVector() }

// Mean finishes an Average result. It is NaN for an empty selection.
func Mean(v []float64) float64 {
	if v[AverageCount] == 0 {
		return math.NaN()
	}
	return v[AverageSum] / v[AverageCount]
}

// SimpleLinearRegression accumulates the moments of y regressed on x.
// Finish with PMCC, Slope and Intercept.
type SimpleLinearRegression struct {
	ctx *VectorContext
}

// NewSimpleLinearRegression returns a regression of y on x.
func NewSimpleLinearRegression(x, y *column.Index) *SimpleLinearRegression {
	return &SimpleLinearRegression{ctx: NewVectorContext(regressionFields, x, y)}
}

// Accept implements Procedure.
func (r *SimpleLinearRegression) Accept(key uint16, mask *container.Container) error {
	m := moments{x: r.ctx.column(0, key), y: r.ctx.column(1, key)}
	walk(mask, m.x.PageMask()|m.y.PageMask(), &m)

	for field, v := range [...]float64{
		RegressionSX:  m.sx,
		RegressionSY:  m.sy,
		RegressionSXX: m.sxx,
		RegressionSYY: m.syy,
		RegressionSXY: m.sxy,
		RegressionN:   float64(mask.Cardinality()),
	} {
		if err := r.ctx.ContributeDouble(field, v, Add); err != nil {
			return err
		}
	}
	return nil
}

// Result implements Procedure.
func (r *SimpleLinearRegression) Result() ([]float64, error) { return r.ctx.ReducedVector() }

// PMCC returns the Pearson correlation coefficient of a regression result.
func PMCC(v []float64) float64 {
	n, sx, sy := v[RegressionN], v[RegressionSX], v[RegressionSY]
	num := n*v[RegressionSXY] - sx*sy
	den := math.Sqrt((n*v[RegressionSYY] - sy*sy) * (n*v[RegressionSXX] - sx*sx))
	return num / den
}

// Slope returns the least squares slope of a regression result.
func Slope(v []float64) float64 {
	n, sx := v[RegressionN], v[RegressionSX]
	return (n*v[RegressionSXY] - sx*v[RegressionSY]) / (n*v[RegressionSXX] - sx*sx)
}

// Intercept returns the least squares intercept of a regression result.
func Intercept(v []float64) float64 {
	return (v[RegressionSY] - Slope(v)*v[RegressionSX]) / v[RegressionN]
}

// VerticalSum adds the selected values of a column by their position within
// a page, giving a vector of column.PageSize partial sums.
type VerticalSum struct {
	ctx     *VectorContext
	scratch []float64
}

// NewVerticalSum returns a VerticalSum over values.
func NewVerticalSum(values *column.Index) *VerticalSum {
	return &VerticalSum{
		ctx:     NewVectorContext(column.PageSize, values),
		scratch: make([]float64, column.PageSize),
	}
}

// Accept implements Procedure.
func (s *VerticalSum) Accept(key uint16, mask *container.Container) error {
	clear(s.scratch)
	w := verticalWalker{c: s.ctx.column(0, key), acc: s.scratch}
	walk(mask, w.c.PageMask(), &w)
	return s.ctx.ContributeVector(s.scratch, AddVectors)
}

// Result implements Procedure.
func (s *VerticalSum) Result() ([]float64, error) { return s.ctx.ReducedVector() }

// HorizontalSum finishes a VerticalSum result into the total.
func HorizontalSum(v []float64) float64 { return floats.Sum(v) }

// Count counts the selected offsets.
type Count struct {
	ctx *CountContext
}

// NewCount returns a Count.
func NewCount() *Count {
	return &Count{ctx: NewCountContext()}
}

// Accept implements Procedure.
func (c *Count) Accept(_ uint16, mask *container.Container) error {
	return c.ctx.ContributeLong(0, int64(mask.Cardinality()), AddLong)
}

// Result implements Procedure.
func (c *Count) Result() (int64, error) { return c.ctx.ReducedLong() }

// CombineDouble merges two scalar partials.
func CombineDouble(a, b float64) (float64, error) { return a + b, nil }

// CombineLong merges two count partials.
func CombineLong(a, b int64) (int64, error) { return a + b, nil }

// CombineVectors merges two vector partials into a new slice.
func CombineVectors(a, b []float64) ([]float64, error) {
	return AddVectors(append([]float64(nil), a...), b)
}

package splitmap

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/prefix"
	"github.com/hupe1980/splitmap/reduction"
)

// Reduce runs one procedure per partition of sm in parallel and folds the
// partial results in partition order with combine. newProcedure is called
// once per partition; the procedures it returns may share read-only
// inputs.
//
// A panicking procedure aborts the reduction with *ErrReductionPanic.
func Reduce[R any](
	ctx context.Context,
	e *Executor,
	sm *SplitMap,
	newProcedure func() reduction.Procedure[R],
	combine func(a, b R) (R, error),
) (R, error) {
	start := time.Now()
	result, err := reduce(e, sm, newProcedure, combine)
	err = translateError(err)
	e.logger.LogReduce(ctx, sm.KeyCount(), time.Since(start), err)
	e.opts.metricsCollector.RecordReduce(sm.KeyCount(), time.Since(start), err)
	return result, err
}

func reduce[R any](e *Executor, sm *SplitMap, newProcedure func() reduction.Procedure[R], combine func(a, b R) (R, error)) (R, error) {
	parts := plan(e, []*prefix.Index[*container.Container]{sm.Index()})
	partials := make([]R, len(parts))
	err := e.run(len(parts), func(i int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &ErrReductionPanic{Partition: parts[i].ID(), Value: r}
			}
		}()
		proc := newProcedure()
		parts[i].ForEach(func(key uint16, mask *container.Container) bool {
			err = proc.Accept(key, mask.Repair())
			return err == nil
		})
		if err != nil {
			return err
		}
		partials[i], err = proc.Result()
		return err
	})
	if err != nil {
		var zero R
		return zero, err
	}

	acc := partials[0]
	for _, p := range partials[1:] {
		if acc, err = combine(acc, p); err != nil {
			var zero R
			return zero, err
		}
	}
	return acc, nil
}

func (e *Executor) checkMetrics(sm *SplitMap, metrics ...*Metric) error {
	for _, m := range metrics {
		if !samePermutation(sm.Permutation(), m.Permutation()) {
			return fmt.Errorf("%w: selection uses %s, metric uses %s",
				ErrPermutationMismatch, sm.Permutation().Name(), m.Permutation().Name())
		}
	}
	return nil
}

// Sum adds the values of m selected by sm.
func (e *Executor) Sum(ctx context.Context, sm *SplitMap, m *Metric) (float64, error) {
	if err := e.checkMetrics(sm, m); err != nil {
		return 0, err
	}
	return Reduce(ctx, e, sm, func() reduction.Procedure[float64] {
		return reduction.NewSum(m.Index())
	}, reduction.CombineDouble)
}

// SumProduct adds the products of the values of x and y selected by sm.
func (e *Executor) SumProduct(ctx context.Context, sm *SplitMap, x, y *Metric) (float64, error) {
	if err := e.checkMetrics(sm, x, y); err != nil {
		return 0, err
	}
	return Reduce(ctx, e, sm, func() reduction.Procedure[float64] {
		return reduction.NewSumProduct(x.Index(), y.Index())
	}, reduction.CombineDouble)
}

// Mean averages the values of m selected by sm. Selected positions without
// a written value count as zero. The mean of an empty selection is NaN.
func (e *Executor) Mean(ctx context.Context, sm *SplitMap, m *Metric) (float64, error) {
	if err := e.checkMetrics(sm, m); err != nil {
		return 0, err
	}
	v, err := Reduce(ctx, e, sm, func() reduction.Procedure[[]float64] {
		return reduction.NewAverage(m.Index())
	}, reduction.CombineVectors)
	if err != nil {
		return 0, err
	}
	return reduction.Mean(v), nil
}

// Count returns the number of values in sm.
func (e *Executor) Count(ctx context.Context, sm *SplitMap) (int64, error) {
	return Reduce(ctx, e, sm, func() reduction.Procedure[int64] {
		return reduction.NewCount()
	}, reduction.CombineLong)
}

// VerticalSum adds the values of m selected by sm by their position within
// a column page.
func (e *Executor) VerticalSum(ctx context.Context, sm *SplitMap, m *Metric) ([]float64, error) {
	if err := e.checkMetrics(sm, m); err != nil {
		return nil, err
	}
	return Reduce(ctx, e, sm, func() reduction.Procedure[[]float64] {
		return reduction.NewVerticalSum(m.Index())
	}, reduction.CombineVectors)
}

// Regression is a finished simple linear regression of y on x.
type Regression struct {
	N         float64
	PMCC      float64
	Slope     float64
	Intercept float64
}

// Regress fits y = Slope*x + Intercept over the positions selected by sm.
func (e *Executor) Regress(ctx context.Context, sm *SplitMap, x, y *Metric) (Regression, error) {
	if err := e.checkMetrics(sm, x, y); err != nil {
		return Regression{}, err
	}
	v, err := Reduce(ctx, e, sm, func() reduction.Procedure[[]float64] {
		return reduction.NewSimpleLinearRegression(x.Index(), y.Index())
	}, reduction.CombineVectors)
	if err != nil {
		return Regression{}, err
	}
	return Regression{
		N:         v[reduction.RegressionN],
		PMCC:      reduction.PMCC(v),
		Slope:     reduction.Slope(v),
		Intercept: reduction.Intercept(v),
	}, nil
}

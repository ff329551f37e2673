package splitmap

import (
	"fmt"
	"maps"

	"github.com/hupe1980/splitmap/column"
	"github.com/hupe1980/splitmap/permutation"
)

// QueryContext maps filter identifiers to SplitMaps and metric identifiers
// to Metrics. Everything in one QueryContext shares a key permutation, so
// permuted keys line up between filters and metrics.
//
// A QueryContext is immutable and safe for concurrent use.
type QueryContext[F, M comparable] struct {
	perm    permutation.Permutation
	filters map[F]*SplitMap
	metrics map[M]*Metric
}

// Permutation returns the shared key permutation.
func (qc *QueryContext[F, M]) Permutation() permutation.Permutation { return qc.perm }

// Filter returns the SplitMap registered as id.
func (qc *QueryContext[F, M]) Filter(id F) (*SplitMap, error) {
	sm, ok := qc.filters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFilter, id)
	}
	return sm, nil
}

// Metric returns the Metric registered as id.
func (qc *QueryContext[F, M]) Metric(id M) (*Metric, error) {
	m, ok := qc.metrics[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMetric, id)
	}
	return m, nil
}

// Columns resolves metric identifiers to their column indexes, in order.
func (qc *QueryContext[F, M]) Columns(ids ...M) ([]*column.Index, error) {
	out := make([]*column.Index, len(ids))
	for i, id := range ids {
		m, err := qc.Metric(id)
		if err != nil {
			return nil, err
		}
		out[i] = m.Index()
	}
	return out, nil
}

// QueryContextBuilder assembles a QueryContext. Writers obtained from the
// builder use its permutation; structures added directly must have been
// built with the same one.
type QueryContextBuilder[F, M comparable] struct {
	opts    options
	filters map[F]*SplitMap
	metrics map[M]*Metric
	err     error
}

// NewQueryContextBuilder returns a builder for the permutation configured
// with WithPermutation.
func NewQueryContextBuilder[F, M comparable](optFns ...Option) *QueryContextBuilder[F, M] {
	return &QueryContextBuilder[F, M]{
		opts:    applyOptions(optFns),
		filters: make(map[F]*SplitMap),
		metrics: make(map[M]*Metric),
	}
}

// Writer returns a SplitMap writer using the builder's permutation.
func (b *QueryContextBuilder[F, M]) Writer() *Writer {
	return NewWriter(b.forward()...)
}

// MetricWriter returns a Metric writer using the builder's permutation.
func (b *QueryContextBuilder[F, M]) MetricWriter() *MetricWriter {
	return NewMetricWriter(b.forward()...)
}

func (b *QueryContextBuilder[F, M]) forward() []Option {
	return []Option{
		WithPermutation(b.opts.permutation),
		WithLogger(b.opts.logger),
		WithMetricsCollector(b.opts.metricsCollector),
	}
}

// AddFilter registers sm as id, replacing any previous filter.
func (b *QueryContextBuilder[F, M]) AddFilter(id F, sm *SplitMap) *QueryContextBuilder[F, M] {
	if b.err == nil && !samePermutation(sm.Permutation(), b.opts.permutation) {
		b.err = fmt.Errorf("%w: filter %v uses %s, context uses %s",
			ErrPermutationMismatch, id, sm.Permutation().Name(), b.opts.permutation.Name())
	}
	b.filters[id] = sm
	return b
}

// AddMetric registers m as id, replacing any previous metric.
func (b *QueryContextBuilder[F, M]) AddMetric(id M, m *Metric) *QueryContextBuilder[F, M] {
	if b.err == nil && !samePermutation(m.Permutation(), b.opts.permutation) {
		b.err = fmt.Errorf("%w: metric %v uses %s, context uses %s",
			ErrPermutationMismatch, id, m.Permutation().Name(), b.opts.permutation.Name())
	}
	b.metrics[id] = m
	return b
}

// Build returns the QueryContext, or the first error recorded while adding
// filters and metrics. The permutation is verified with permutation.Check.
func (b *QueryContextBuilder[F, M]) Build() (*QueryContext[F, M], error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := permutation.Check(b.opts.permutation); err != nil {
		return nil, err
	}
	return &QueryContext[F, M]{
		perm:    b.opts.permutation,
		filters: maps.Clone(b.filters),
		metrics: maps.Clone(b.metrics),
	}, nil
}

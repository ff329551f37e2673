package splitmap

import (
	"context"
	"time"

	"github.com/hupe1980/splitmap/column"
	"github.com/hupe1980/splitmap/permutation"
)

// Metric is a set of float64 values addressed like SplitMap values: the
// high 16 bits select a key, the low 16 bits an offset in the key's column.
type Metric struct {
	index *column.Index
	perm  permutation.Permutation
}

// NewMetric wraps a column index whose keys are already permuted with perm.
// A nil perm selects permutation.Default.
func NewMetric(index *column.Index, perm permutation.Permutation) *Metric {
	if index == nil {
		index = column.NewIndex()
	}
	if perm == nil {
		perm = permutation.Default()
	}
	return &Metric{index: index, perm: perm}
}

// Index returns the underlying index keyed by permuted keys.
func (m *Metric) Index() *column.Index { return m.index }

// Permutation returns the key permutation the metric was built with.
func (m *Metric) Permutation() permutation.Permutation { return m.perm }

// Get returns the value at v, or zero if none was written.
func (m *Metric) Get(v uint32) float64 {
	c, ok := m.index.Get(m.perm.Apply(uint16(v >> 16)))
	if !ok {
		return 0
	}
	return c.Get(uint16(v))
}

// MetricWriter builds a Metric from values written in strictly ascending
// position order. Pages are filled in place and handed to the column when
// the position moves to another page or key.
//
// A MetricWriter is not safe for concurrent use.
type MetricWriter struct {
	opts    options
	index   *column.Index
	col     *column.Column
	page    []float64
	pageNo  int
	key     uint16
	last    uint32
	started bool
	begin   time.Time
	err     error
}

// NewMetricWriter returns a writer for the permutation configured with
// WithPermutation.
func NewMetricWriter(optFns ...Option) *MetricWriter {
	o := applyOptions(optFns)
	o.logger = o.logger.WithPermutation(o.permutation.Name())
	return &MetricWriter{
		opts:  o,
		index: column.NewIndex(),
		begin: time.Now(),
	}
}

// Add stores value at position v.
func (w *MetricWriter) Add(v uint32, value float64) error {
	if w.err != nil {
		return w.err
	}
	if w.started && v <= w.last {
		w.err = &ErrOrdering{Previous: w.last, Value: v}
		return w.err
	}

	key, offset := uint16(v>>16), int(v&0xFFFF)
	pageNo := offset / column.PageSize
	if w.started && key != w.key {
		w.flushKey()
	} else if w.page != nil && pageNo != w.pageNo {
		w.flushPage()
	}
	if w.col == nil {
		w.col = column.New()
	}
	if w.page == nil {
		w.page = make([]float64, column.PageSize)
	}

	w.key, w.pageNo = key, pageNo
	w.page[offset%column.PageSize] = value
	w.last, w.started = v, true
	return nil
}

func (w *MetricWriter) flushPage() {
	w.col.Transfer(w.pageNo, w.page)
	w.page = nil
}

func (w *MetricWriter) flushKey() {
	if w.page != nil {
		w.flushPage()
	}
	w.index.Insert(w.opts.permutation.Apply(w.key), w.col)
	w.col = nil
}

// Finish flushes the last page and returns the Metric. The writer must not
// be used afterwards.
func (w *MetricWriter) Finish() (*Metric, error) {
	ctx := context.Background()
	if w.err != nil {
		w.opts.logger.LogBuild(ctx, "metric", w.index.Len(), w.err)
		w.opts.metricsCollector.RecordBuild(w.index.Len(), time.Since(w.begin), w.err)
		return nil, w.err
	}
	if w.started {
		w.flushKey()
	}
	m := NewMetric(w.index, w.opts.permutation)
	w.opts.logger.LogBuild(ctx, "metric", w.index.Len(), nil)
	w.opts.metricsCollector.RecordBuild(w.index.Len(), time.Since(w.begin), nil)
	return m, nil
}

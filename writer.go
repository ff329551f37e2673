package splitmap

import (
	"context"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/prefix"
)

// Writer builds a SplitMap from strictly ascending values.
//
// Offsets of the current key are collected in a scratch bitmap and flushed
// as a container in its most compact form whenever the key changes. A
// value that is not greater than its predecessor poisons the writer: the
// offending Add and every later call return the same *ErrOrdering.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	opts    options
	index   *prefix.Index[*container.Container]
	scratch *bitset.BitSet
	key     uint16
	dirty   bool
	last    uint32
	started bool
	begin   time.Time
	err     error
}

// NewWriter returns a writer for the permutation configured with
// WithPermutation.
func NewWriter(optFns ...Option) *Writer {
	o := applyOptions(optFns)
	o.logger = o.logger.WithPermutation(o.permutation.Name())
	return &Writer{
		opts:    o,
		index:   prefix.New[*container.Container](),
		scratch: bitset.New(container.MaxCapacity),
		begin:   time.Now(),
	}
}

// Add appends v.
func (w *Writer) Add(v uint32) error {
	if w.err != nil {
		return w.err
	}
	if w.started && v <= w.last {
		w.err = &ErrOrdering{Previous: w.last, Value: v}
		return w.err
	}

	key := uint16(v >> 16)
	if w.dirty && key != w.key {
		w.flush()
	}
	w.key = key
	w.dirty = true
	w.scratch.Set(uint(v & 0xFFFF))
	w.last, w.started = v, true
	return nil
}

// AddMany appends values in order and stops at the first error.
func (w *Writer) AddMany(values ...uint32) error {
	for _, v := range values {
		if err := w.Add(v); err != nil {
			return err
		}
	}
	return nil
}

// AddRange appends every value in [start, end).
func (w *Writer) AddRange(start, end uint64) error {
	for v := start; v < end; v++ {
		if err := w.Add(uint32(v)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) flush() {
	w.index.Insert(w.opts.permutation.Apply(w.key), container.FromWords(w.scratch.Words()))
	w.scratch.ClearAll()
	w.dirty = false
}

// Finish flushes the last key and returns the SplitMap. The writer must not
// be used afterwards.
func (w *Writer) Finish() (*SplitMap, error) {
	ctx := context.Background()
	if w.err != nil {
		w.opts.logger.LogBuild(ctx, "splitmap", w.index.Len(), w.err)
		w.opts.metricsCollector.RecordBuild(w.index.Len(), time.Since(w.begin), w.err)
		return nil, w.err
	}
	if w.dirty {
		w.flush()
	}
	sm := New(w.index, w.opts.permutation)
	w.opts.logger.LogBuild(ctx, "splitmap", sm.KeyCount(), nil)
	w.opts.metricsCollector.RecordBuild(sm.KeyCount(), time.Since(w.begin), nil)
	return sm, nil
}

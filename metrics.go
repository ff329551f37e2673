package splitmap

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems;
// PrometheusCollector is one such implementation.
type MetricsCollector interface {
	// RecordEvaluate is called after each circuit evaluation.
	// inputs is the number of indexes combined, keys the number of keys in
	// the result.
	RecordEvaluate(inputs, keys int, duration time.Duration, err error)

	// RecordReduce is called after each parallel reduction over keys keys.
	RecordReduce(keys int, duration time.Duration, err error)

	// RecordBuild is called when a writer finishes.
	RecordBuild(keys int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEvaluate(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordReduce(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EvaluateCount      atomic.Int64
	EvaluateErrors     atomic.Int64
	EvaluateKeys       atomic.Int64
	EvaluateTotalNanos atomic.Int64
	ReduceCount        atomic.Int64
	ReduceErrors       atomic.Int64
	ReduceKeys         atomic.Int64
	ReduceTotalNanos   atomic.Int64
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	BuildKeys          atomic.Int64
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(inputs, keys int, duration time.Duration, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateKeys.Add(int64(keys))
	b.EvaluateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvaluateErrors.Add(1)
	}
}

// RecordReduce implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReduce(keys int, duration time.Duration, err error) {
	b.ReduceCount.Add(1)
	b.ReduceKeys.Add(int64(keys))
	b.ReduceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReduceErrors.Add(1)
	}
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(keys int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildKeys.Add(int64(keys))
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EvaluateCount:    b.EvaluateCount.Load(),
		EvaluateErrors:   b.EvaluateErrors.Load(),
		EvaluateKeys:     b.EvaluateKeys.Load(),
		EvaluateAvgNanos: avg(b.EvaluateTotalNanos.Load(), b.EvaluateCount.Load()),
		ReduceCount:      b.ReduceCount.Load(),
		ReduceErrors:     b.ReduceErrors.Load(),
		ReduceKeys:       b.ReduceKeys.Load(),
		ReduceAvgNanos:   avg(b.ReduceTotalNanos.Load(), b.ReduceCount.Load()),
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildKeys:        b.BuildKeys.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EvaluateCount    int64
	EvaluateErrors   int64
	EvaluateKeys     int64
	EvaluateAvgNanos int64
	ReduceCount      int64
	ReduceErrors     int64
	ReduceKeys       int64
	ReduceAvgNanos   int64
	BuildCount       int64
	BuildErrors      int64
	BuildKeys        int64
}

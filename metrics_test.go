package splitmap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/splitmap/container"
)

func TestBasicMetricsCollector(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	w := NewWriter(WithMetricsCollector(metrics))
	require.NoError(t, w.AddMany(1, 2, 1<<16))
	sm, err := w.Finish()
	require.NoError(t, err)

	exec := NewExecutor(WithMetricsCollector(metrics))
	_, err = exec.Or(ctx, sm, sm)
	require.NoError(t, err)
	_, err = exec.Count(ctx, sm)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(2), stats.BuildKeys)
	assert.Equal(t, int64(1), stats.EvaluateCount)
	assert.Equal(t, int64(2), stats.EvaluateKeys)
	assert.Zero(t, stats.EvaluateErrors)
	assert.Equal(t, int64(1), stats.ReduceCount)
	assert.Equal(t, int64(2), stats.ReduceKeys)

	metrics.RecordEvaluate(1, 0, time.Millisecond, errors.New("x"))
	assert.Equal(t, int64(1), metrics.GetStats().EvaluateErrors)
}

func TestPrometheusCollector(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	collector, err := NewPrometheusCollector(reg, "splitmap")
	require.NoError(t, err)

	// Registering twice fails.
	_, err = NewPrometheusCollector(reg, "splitmap")
	require.Error(t, err)

	exec := NewExecutor(WithMetricsCollector(collector))
	sm := build(t, nil, 1, 2, 3)
	_, err = exec.And(ctx, sm, sm)
	require.NoError(t, err)
	_, err = exec.EvaluateMaps(ctx, func(*Slice[*container.Container]) (*container.Container, bool) {
		panic("boom")
	}, sm)
	require.Error(t, err)

	assert.InDelta(t, 1.0, promtest.ToFloat64(collector.operations.WithLabelValues("evaluate", "ok")), 0)
	assert.InDelta(t, 1.0, promtest.ToFloat64(collector.operations.WithLabelValues("evaluate", "error")), 0)
	assert.InDelta(t, 1.0, promtest.ToFloat64(collector.keys.WithLabelValues("evaluate")), 0)
	assert.Equal(t, 1, promtest.CollectAndCount(collector.durations))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	exec := NewExecutor(WithLogger(logger), WithPartitions(2))
	sm := build(t, nil, 1, 1<<16)
	_, err := exec.Or(ctx, sm)
	require.NoError(t, err)
	_, err = exec.EvaluateMaps(ctx, func(*Slice[*container.Container]) (*container.Container, bool) {
		panic("boom")
	}, sm)
	require.Error(t, err)

	w := NewWriter(WithLogger(logger))
	require.NoError(t, w.Add(3))
	_, err = w.Finish()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"build completed"`)
	assert.Contains(t, out, `"permutation":"reverse"`)
	assert.Contains(t, out, `"msg":"executor created"`)
	assert.Contains(t, out, `"partitions":2`)
	assert.Contains(t, out, `"msg":"evaluation completed"`)
	assert.Contains(t, out, `"msg":"evaluation failed"`)

	// The noop logger swallows everything.
	NoopLogger().LogBuild(ctx, "splitmap", 1, errors.New("ignored"))
}

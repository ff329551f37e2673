package splitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/permutation"
	"github.com/hupe1980/splitmap/testutil"
)

func build(t *testing.T, perm permutation.Permutation, values ...uint32) *SplitMap {
	t.Helper()
	w := NewWriter(WithPermutation(perm))
	require.NoError(t, w.AddMany(values...))
	sm, err := w.Finish()
	require.NoError(t, err)
	return sm
}

func TestWriter(t *testing.T) {
	values := []uint32{0, 1, 2, 3, 70000, 70001, 1 << 20, 0xFFFFFFFF}
	sm := build(t, nil, values...)

	assert.Equal(t, len(values), sm.Cardinality())
	assert.Equal(t, 4, sm.KeyCount())
	assert.False(t, sm.IsEmpty())
	assert.Equal(t, values, sm.Values())
	for _, v := range values {
		assert.True(t, sm.Contains(v), v)
	}
	assert.False(t, sm.Contains(4))
	assert.False(t, sm.Contains(2<<16))

	// Containers are stored in their most compact form.
	c, ok := sm.Container(0)
	require.True(t, ok)
	assert.Equal(t, container.RunLength, c.Kind())
	c, ok = sm.Container(16)
	require.True(t, ok)
	assert.Equal(t, container.Sparse, c.Kind())
	assert.Contains(t, sm.String(), "keys: 4")
}

func TestWriterDense(t *testing.T) {
	rng := testutil.NewRNG(3)
	values := rng.Values(20000, 1<<16)
	sm := build(t, nil, values...)

	c, ok := sm.Container(0)
	require.True(t, ok)
	assert.Equal(t, container.Dense, c.Kind())
	assert.Equal(t, values, sm.Values())
}

func TestWriterRejectsOutOfOrder(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Add(5))

	err := w.Add(5)
	require.ErrorIs(t, err, ErrOutOfOrder)
	var ordering *ErrOrdering
	require.ErrorAs(t, err, &ordering)
	assert.Equal(t, uint32(5), ordering.Previous)
	assert.Equal(t, uint32(5), ordering.Value)

	// The writer stays poisoned.
	assert.Same(t, ordering, w.Add(10))
	_, err = w.Finish()
	assert.ErrorIs(t, err, ErrOutOfOrder)

	w = NewWriter()
	require.NoError(t, w.Add(1<<16))
	assert.ErrorIs(t, w.Add(3), ErrOutOfOrder)
}

func TestEmptyWriter(t *testing.T) {
	sm, err := NewWriter().Finish()
	require.NoError(t, err)
	assert.True(t, sm.IsEmpty())
	assert.Zero(t, sm.Cardinality())
	assert.Zero(t, sm.KeyCount())
	assert.Empty(t, sm.Values())
}

func TestMetricWriter(t *testing.T) {
	w := NewMetricWriter(WithPermutation(permutation.Identity))
	require.NoError(t, w.Add(1, 1.5))
	require.NoError(t, w.Add(1023, 2))
	require.NoError(t, w.Add(1024, 3))
	require.NoError(t, w.Add(5<<16|9, 4))

	assert.ErrorIs(t, w.Add(5<<16|9, 1), ErrOutOfOrder)
	_, err := w.Finish()
	assert.ErrorIs(t, err, ErrOutOfOrder)

	w = NewMetricWriter()
	require.NoError(t, w.Add(1, 1.5))
	require.NoError(t, w.Add(1023, 2))
	require.NoError(t, w.Add(1024, 3))
	require.NoError(t, w.Add(5<<16|9, 4))
	m, err := w.Finish()
	require.NoError(t, err)

	assert.InDelta(t, 1.5, m.Get(1), 0)
	assert.InDelta(t, 2.0, m.Get(1023), 0)
	assert.InDelta(t, 3.0, m.Get(1024), 0)
	assert.InDelta(t, 4.0, m.Get(5<<16|9), 0)
	assert.Zero(t, m.Get(2))
	assert.Zero(t, m.Get(9<<16))
	assert.Equal(t, 2, m.Index().Len())

	col, ok := m.Index().Get(m.Permutation().Apply(0))
	require.True(t, ok)
	assert.Equal(t, uint64(0b11), col.PageMask())
}

func TestRoaringRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(9)
	oracle := testutil.Roaring(rng.SkewedValues(50000, 64, 1.1)...)
	oracle.AddRange(3<<16, 4<<16)

	for _, perm := range []permutation.Permutation{nil, permutation.Identity, permutation.ReversePreserveLow6, permutation.NewScatter(5)} {
		sm, err := FromRoaring(oracle, perm)
		require.NoError(t, err)
		assert.Equal(t, int(oracle.GetCardinality()), sm.Cardinality())
		assert.True(t, oracle.Equals(sm.ToRoaring()))
	}
}

func TestCardinalityIsSumOfContainers(t *testing.T) {
	rng := testutil.NewRNG(4)
	sm := build(t, nil, rng.SkewedValues(30000, 200, 1.3)...)

	sum := 0
	sm.Index().ForEach(func(_ uint16, c *container.Container) bool {
		sum += c.Cardinality()
		return true
	})
	assert.Equal(t, sum, sm.Cardinality())
	assert.Positive(t, sm.SizeInBytes())
}

func TestEqual(t *testing.T) {
	a := build(t, nil, 1, 2, 3, 1<<20)
	b := build(t, nil, 1, 2, 3, 1<<20)
	c := build(t, nil, 1, 2, 4, 1<<20)
	d := build(t, permutation.Identity, 1, 2, 3, 1<<20)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

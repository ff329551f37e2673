package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsets(t *testing.T) {
	rng := NewRNG(4711)

	for _, card := range []int{0, 1, 100, 4096, 40000, 65536} {
		o := rng.Offsets(card)
		assert.Len(t, o, card)
		assert.True(t, slices.IsSorted(o))
		assert.Equal(t, len(o), len(slices.Compact(slices.Clone(o))))
	}
}

func TestRunOffsets(t *testing.T) {
	rng := NewRNG(4711)

	o := rng.RunOffsets(16, 100)
	require.NotEmpty(t, o)
	assert.True(t, slices.IsSorted(o))
	assert.LessOrEqual(t, int(RoaringOffsets(o).GetCardinality()), 16*100)
}

func TestValues(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Values(500, 1<<20)
	assert.Len(t, v, 500)
	assert.True(t, slices.IsSorted(v))
	assert.Less(t, v[len(v)-1], uint32(1<<20))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Offsets(10)
	rng.Reset()
	b := rng.Offsets(10)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestSkewedValues(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.SkewedValues(5000, 64, 1.5)
	require.Len(t, v, 5000)

	perKey := make(map[uint32]int)
	for _, x := range v {
		perKey[x>>16]++
	}
	// The hottest key dominates under s=1.5.
	assert.Greater(t, perKey[0], 5000/4)
	for k := range perKey {
		assert.Less(t, k, uint32(64))
	}
}

func TestSumOver(t *testing.T) {
	bm := Roaring(1, 2, 3)
	assert.InDelta(t, 6.0, SumOver(bm, func(v uint32) float64 { return float64(v) }), 1e-12)
	assert.Equal(t, []uint16{1, 2, 3}, Offsets16(bm))
}

package container

import (
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/splitmap/testutil"
)

var forced = []struct {
	kind Kind
	make func([]uint16) *Container
}{
	{Sparse, NewSparse},
	{Dense, NewDense},
	{RunLength, NewRun},
}

func datasets(rng *testutil.RNG) map[string][]uint16 {
	return map[string][]uint16{
		"empty":      nil,
		"tiny":       rng.Offsets(7),
		"sparse":     rng.Offsets(1500),
		"threshold":  rng.Offsets(SparseThreshold),
		"dense":      rng.Offsets(30000),
		"runs":       rng.RunOffsets(60, 400),
		"long runs":  rng.RunOffsets(6, 9000),
		"full range": testutil.Offsets16(rangeOracle(0, MaxCapacity)),
	}
}

func rangeOracle(start, end uint64) *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(start, end)
	return bm
}

func assertMinimal(t *testing.T, c *Container) {
	t.Helper()
	assert.Equal(t, bestKind(c.Cardinality(), c.NumberOfRuns()), c.Kind(), "container not in minimal form")
}

func TestSetAlgebraMatchesRoaring(t *testing.T) {
	rng := testutil.NewRNG(4711)
	data := datasets(rng)

	ops := []struct {
		name   string
		op     func(a, b *Container) *Container
		oracle func(a, b *roaring.Bitmap) *roaring.Bitmap
	}{
		{"and", (*Container).And, roaring.And},
		{"or", (*Container).Or, roaring.Or},
		{"xor", (*Container).Xor, roaring.Xor},
		{"andnot", (*Container).AndNot, roaring.AndNot},
	}

	for an, av := range data {
		for bn, bv := range data {
			oa, ob := testutil.RoaringOffsets(av), testutil.RoaringOffsets(bv)
			for _, ka := range forced {
				for _, kb := range forced {
					a, b := ka.make(av), kb.make(bv)
					for _, op := range ops {
						name := fmt.Sprintf("%s/%s(%s)/%s(%s)", op.name, an, ka.kind, bn, kb.kind)
						want := op.oracle(oa, ob)
						got := op.op(a, b)
						if !assert.Equal(t, int(want.GetCardinality()), got.Cardinality(), name) {
							continue
						}
						assert.Equal(t, testutil.Offsets16(want), got.Values(), name)
						assertMinimal(t, got)
					}
				}
			}
		}
	}
}

func TestOperandsUnchanged(t *testing.T) {
	rng := testutil.NewRNG(7)
	av, bv := rng.Offsets(5000), rng.RunOffsets(20, 1000)

	for _, ka := range forced {
		for _, kb := range forced {
			a, b := ka.make(av), kb.make(bv)
			a.And(b)
			a.Or(b)
			a.Xor(b)
			a.AndNot(b)
			b.AndNot(a)
			a.LazyOr(b).Repair()
			assert.Equal(t, av, a.Values())
			assert.Equal(t, bv, b.Values())
		}
	}
}

func TestIdempotence(t *testing.T) {
	rng := testutil.NewRNG(11)
	for name, v := range datasets(rng) {
		for _, k := range forced {
			c := k.make(v)
			assert.True(t, c.And(c).Equal(c), name)
			assert.True(t, c.Or(c).Equal(c), name)
			assert.True(t, c.Xor(c).IsEmpty(), name)
			assert.True(t, c.AndNot(c).IsEmpty(), name)
		}
	}
}

func TestRoundTripBoundaries(t *testing.T) {
	rng := testutil.NewRNG(42)

	tests := []struct {
		card int
		want Kind
	}{
		{0, Sparse},
		{1, Sparse},
		{SparseThreshold - 1, Sparse},
		{SparseThreshold, Sparse},
		{SparseThreshold + 1, Dense},
		{MaxCapacity, RunLength},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("card=%d", tt.card), func(t *testing.T) {
			v := rng.Offsets(tt.card)
			c := Of(v...)
			assert.Equal(t, tt.card, c.Cardinality())
			assert.Equal(t, tt.want, c.Kind())
			if tt.card == 0 {
				assert.Empty(t, c.Values())
				return
			}
			assert.Equal(t, v, c.Values())
			for _, k := range forced {
				f := k.make(v)
				assert.Equal(t, k.kind, f.Kind())
				assert.True(t, f.Equal(c))
				assert.Equal(t, c.Kind(), f.Optimize().Kind())
			}
		})
	}
}

func TestBestKind(t *testing.T) {
	tests := []struct {
		name       string
		card, runs int
		want       Kind
	}{
		{"empty", 0, 0, Sparse},
		{"single", 1, 1, Sparse},
		{"pair", 2, 1, RunLength},
		{"two scattered", 2, 2, Sparse},
		{"one big run", 60000, 1, RunLength},
		{"many runs", 60000, 30000, Dense},
		{"sparse beats runs", 100, 100, Sparse},
		{"runs beat bitmap", 20000, 2047, RunLength},
		{"bitmap beats runs", 20000, 2048, Dense},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestKind(tt.card, tt.runs))
		})
	}
}

func TestLazyOr(t *testing.T) {
	rng := testutil.NewRNG(3)
	a := Of(rng.Offsets(100)...)
	b := NewDense(rng.Offsets(8000))
	c := FromRange(100, 3000)

	acc := a.LazyOr(b).LazyOr(c)
	require.True(t, acc.IsDirty())
	assert.Equal(t, Dense, acc.Kind())
	assert.False(t, acc.IsEmpty())
	assert.Panics(t, func() { acc.Cardinality() })
	assert.Panics(t, func() { acc.And(a) })
	assert.Panics(t, func() { a.Or(acc) })

	got := acc.Repair()
	assert.False(t, got.IsDirty())
	assert.True(t, got.Equal(a.Or(b).Or(c)))
	assert.True(t, got.Equal(Union(a, b, c)))
	assertMinimal(t, got)
	assert.Same(t, got, got.Repair())
}

func TestLazyOrEmpty(t *testing.T) {
	acc := Empty().LazyOr(Empty())
	assert.True(t, acc.IsEmpty())
	got := acc.Repair()
	assert.Equal(t, 0, got.Cardinality())
	assert.Equal(t, Sparse, got.Kind())
}

func TestUnion(t *testing.T) {
	assert.True(t, Union().IsEmpty())
	c := Of(1, 2, 3)
	assert.Same(t, c, Union(c))
	assert.Equal(t, []uint16{1, 2, 3, 9}, Union(c, Of(9), Of(2)).Values())
}

func TestIntersectionAndSymmetricDifference(t *testing.T) {
	rng := testutil.NewRNG(5)
	inputs := [][]uint16{rng.Offsets(9000), rng.Offsets(12000), rng.Offsets(300), rng.RunOffsets(40, 800)}
	for i, in := range inputs {
		// A shared range keeps the intersection non-empty.
		bm := testutil.RoaringOffsets(in)
		bm.AddRange(5000, 5100)
		inputs[i] = testutil.Offsets16(bm)
	}

	for _, k := range forced {
		t.Run(k.kind.String(), func(t *testing.T) {
			cs := make([]*Container, len(inputs))
			and := testutil.RoaringOffsets(inputs[0])
			xor := testutil.RoaringOffsets(inputs[0])
			for i, in := range inputs {
				cs[i] = k.make(in)
				if i > 0 {
					and.And(testutil.RoaringOffsets(in))
					xor.Xor(testutil.RoaringOffsets(in))
				}
			}
			got := Intersection(cs...)
			require.False(t, got.IsEmpty())
			assert.Equal(t, testutil.Offsets16(and), got.Values())
			assertMinimal(t, got)

			got = SymmetricDifference(cs...)
			assert.Equal(t, testutil.Offsets16(xor), got.Values())
			assertMinimal(t, got)
		})
	}

	assert.True(t, Intersection().IsEmpty())
	assert.True(t, SymmetricDifference().IsEmpty())
	c := Of(4, 5)
	assert.Same(t, c, Intersection(c))
	assert.Same(t, c, SymmetricDifference(c))
	assert.True(t, Intersection(NewDense([]uint16{1}), NewDense([]uint16{2})).IsEmpty())
}

func TestDenseSubset(t *testing.T) {
	big := FromRange(0, 20000).ToDense()
	inside := NewDense(FromRange(100, 9000).Values())
	outside := NewDense(append(FromRange(100, 9000).Values(), 30000))

	assert.True(t, inside.IsSubsetOf(big))
	assert.False(t, outside.IsSubsetOf(big))
	assert.True(t, big.IsSubsetOf(big))
}

func TestQueries(t *testing.T) {
	v := []uint16{3, 4, 5, 6, 100, 65535}
	for _, k := range forced {
		t.Run(k.kind.String(), func(t *testing.T) {
			c := k.make(v)
			assert.True(t, c.Contains(5))
			assert.False(t, c.Contains(7))
			assert.True(t, c.Contains(65535))
			assert.True(t, c.ContainsRange(3, 7))
			assert.False(t, c.ContainsRange(3, 8))
			assert.True(t, c.ContainsRange(50, 50))

			first, err := c.First()
			require.NoError(t, err)
			assert.Equal(t, uint16(3), first)
			last, err := c.Last()
			require.NoError(t, err)
			assert.Equal(t, uint16(65535), last)

			assert.Equal(t, 3, c.NumberOfRuns())
			assert.Equal(t, []uint16{3, 4}, c.Limit(2).Values())
			assert.True(t, c.Limit(0).IsEmpty())
			assert.Same(t, c, c.Limit(100))

			var seen []uint16
			for x := range c.All() {
				seen = append(seen, x)
			}
			assert.Equal(t, v, seen)
		})
	}

	_, err := Empty().First()
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Empty().Last()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNot(t *testing.T) {
	c := Of(1, 5, 10)
	got := c.Not(0, 8)
	assert.Equal(t, []uint16{0, 2, 3, 4, 6, 7, 10}, got.Values())
	assert.Same(t, c, c.Not(4, 4))
	assert.Equal(t, MaxCapacity, Empty().Not(0, MaxCapacity).Cardinality())
	assert.Panics(t, func() { c.Not(5, 2) })
}

func TestSubsetAndIntersects(t *testing.T) {
	big := FromRange(0, 20000)
	small := Of(10, 500, 19999)
	other := Of(20000, 30000)

	for _, k := range forced {
		s := k.make(small.Values())
		assert.True(t, s.IsSubsetOf(big))
		assert.True(t, s.Intersects(big))
		assert.True(t, big.Intersects(s))
		assert.False(t, s.Intersects(other))
		assert.False(t, big.IsSubsetOf(s))
		assert.False(t, other.IsSubsetOf(big))
	}
	assert.True(t, NewDense(small.Values()).Intersects(big.ToDense()))
}

func TestConstructors(t *testing.T) {
	assert.Panics(t, func() { FromSorted([]uint16{3, 2}) })
	assert.Panics(t, func() { FromSorted([]uint16{2, 2}) })
	assert.Panics(t, func() { FromWords(make([]uint64, 3)) })
	assert.Panics(t, func() { FromRuns([]Run{{Start: 10, Length: 5}, {Start: 12, Length: 1}}) })

	c := FromRuns([]Run{{Start: 0, Length: 9}, {Start: 10, Length: 9}})
	assert.Equal(t, []Run{{Start: 0, Length: 19}}, c.Runs())
	assert.Equal(t, 20, c.Cardinality())

	words := make([]uint64, BitmapWords)
	words[0] = 0b1011
	w := FromWords(words)
	words[0] = 0
	assert.Equal(t, []uint16{0, 1, 3}, w.Values())

	assert.Equal(t, []uint16{1, 2, 9}, Of(9, 2, 1, 2).Values())
	assert.Nil(t, FromRange(0, 100).Array())
	assert.NotNil(t, Of(1, 9).Array())
	assert.Equal(t, uint16(65535), FromRange(0, MaxCapacity).Runs()[0].Last())
}

func TestIterator(t *testing.T) {
	rng := testutil.NewRNG(99)
	v := rng.Offsets(3000)
	for _, k := range forced {
		t.Run(k.kind.String(), func(t *testing.T) {
			c := k.make(v)
			it := c.Iterator()
			for _, target := range []uint16{0, 17, 1000, 1000, 40000, 65535} {
				it.AdvanceIfNeeded(target)
				want := testutil.RoaringOffsets(v)
				wantIt := want.Iterator()
				wantIt.AdvanceIfNeeded(uint32(target))
				if !wantIt.HasNext() {
					assert.False(t, it.HasNext())
					continue
				}
				require.True(t, it.HasNext())
				assert.Equal(t, uint16(wantIt.PeekNext()), it.PeekNext())
			}

			it = c.Iterator()
			n := 0
			for it.HasNext() {
				assert.Equal(t, v[n], it.Next())
				n++
			}
			assert.Equal(t, len(v), n)
		})
	}
}

func TestSizeInBytes(t *testing.T) {
	assert.Equal(t, 2+2*3, Of(1, 5, 9).SizeInBytes())
	assert.Equal(t, bitmapBytes, NewDense([]uint16{1}).SizeInBytes())
	assert.Equal(t, 2+4, FromRange(0, 100).SizeInBytes())
}

func BenchmarkAnd(b *testing.B) {
	rng := testutil.NewRNG(1)
	sparse := Of(rng.Offsets(2000)...)
	dense := Of(rng.Offsets(30000)...)
	runs := Of(rng.RunOffsets(40, 800)...)

	pairs := []struct {
		name string
		a, b *Container
	}{
		{"sparse-sparse", sparse, Of(rng.Offsets(2000)...)},
		{"sparse-dense", sparse, dense},
		{"dense-dense", dense, Of(rng.Offsets(30000)...)},
		{"dense-run", dense, runs},
		{"run-run", runs, Of(rng.RunOffsets(40, 800)...)},
	}
	for _, p := range pairs {
		b.Run(p.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				p.a.And(p.b)
			}
		})
	}
}

func BenchmarkLazyUnion(b *testing.B) {
	rng := testutil.NewRNG(1)
	cs := make([]*Container, 16)
	for i := range cs {
		cs[i] = Of(rng.Offsets(3000)...)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		acc := cs[0]
		for _, c := range cs[1:] {
			acc = acc.LazyOr(c)
		}
		acc.Repair()
	}
}

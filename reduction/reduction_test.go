package reduction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/splitmap/column"
	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/testutil"
)

// randomColumn fills every page whose bit is set in pages.
func randomColumn(rng *testutil.RNG, pages uint64) *column.Column {
	c := column.New()
	for p := range column.Pages {
		if pages&(1<<p) == 0 {
			continue
		}
		data := make([]float64, column.PageSize)
		rng.FillUniform(data, -10, 10)
		c.Transfer(p, data)
	}
	return c
}

type maskCase struct {
	name    string
	offsets []uint16
}

func maskCases(rng *testutil.RNG) []maskCase {
	full := make([]uint16, 0, 3*column.PageSize+10)
	for v := 2*column.PageSize - 5; v < 5*column.PageSize+5; v++ {
		full = append(full, uint16(v))
	}
	all := make([]uint16, 0, container.MaxCapacity)
	for v := range container.MaxCapacity {
		all = append(all, uint16(v))
	}
	return []maskCase{
		{"empty", nil},
		{"single", []uint16{777}},
		{"last", []uint16{0, 65535}},
		{"random-small", rng.Offsets(300)},
		{"random-large", rng.Offsets(30000)},
		{"runs", rng.RunOffsets(40, 3000)},
		{"full-pages", full},
		{"all", all},
	}
}

func forcedKinds(offsets []uint16) map[string]*container.Container {
	return map[string]*container.Container{
		"sparse": container.NewSparse(offsets),
		"dense":  container.NewDense(offsets),
		"run":    container.NewRun(offsets),
	}
}

func TestKernelsMatchBruteForce(t *testing.T) {
	rng := testutil.NewRNG(7)
	// Pages 0, 2, 3, 4 and 63 for x; 2, 5 and 63 for y.
	xc := randomColumn(rng, 1|1<<2|1<<3|1<<4|1<<63)
	yc := randomColumn(rng, 1<<2|1<<5|1<<63)

	for _, tc := range maskCases(rng) {
		var sum, dot float64
		var sx, sy, sxx, syy, sxy float64
		vertical := make([]float64, column.PageSize)
		for _, v := range tc.offsets {
			x, y := xc.Get(v), yc.Get(v)
			sum += x
			dot += x * y
			sx += x
			sy += y
			sxx += x * x
			syy += y * y
			sxy += x * y
			vertical[int(v)%column.PageSize] += x
		}

		for kind, mask := range forcedKinds(tc.offsets) {
			t.Run(tc.name+"/"+kind, func(t *testing.T) {
				assert.InDelta(t, sum, maskedSum(xc, mask), 1e-6)
				assert.InDelta(t, dot, maskedDot(xc, yc, mask), 1e-6)

				m := moments{x: xc, y: yc}
				walk(mask, xc.PageMask()|yc.PageMask(), &m)
				assert.InDelta(t, sx, m.sx, 1e-6)
				assert.InDelta(t, sy, m.sy, 1e-6)
				assert.InDelta(t, sxx, m.sxx, 1e-5)
				assert.InDelta(t, syy, m.syy, 1e-5)
				assert.InDelta(t, sxy, m.sxy, 1e-5)

				w := verticalWalker{c: xc, acc: make([]float64, column.PageSize)}
				walk(mask, xc.PageMask(), &w)
				assert.InDeltaSlice(t, vertical, w.acc, 1e-6)
			})
		}
	}
}

func TestWalkSplitsAtPageBoundaries(t *testing.T) {
	var segs [][3]int
	rec := recorder{onSegment: func(p, lo, hi int) { segs = append(segs, [3]int{p, lo, hi}) }}

	mask := container.FromRuns([]container.Run{{Start: 1000, Length: 2100}})
	require.Equal(t, container.RunLength, mask.Kind())
	walk(mask, math.MaxUint64, &rec)
	assert.Equal(t, [][3]int{{0, 1000, 1024}, {1, 0, 1024}, {2, 0, 1024}, {3, 0, 29}}, segs)

	segs = nil
	walk(mask, 1<<1|1<<3, &rec)
	assert.Equal(t, [][3]int{{1, 0, 1024}, {3, 0, 29}}, segs)
}

func TestWalkDenseBulkPages(t *testing.T) {
	var segs [][3]int
	var points []int
	rec := recorder{
		onSegment: func(p, lo, hi int) { segs = append(segs, [3]int{p, lo, hi}) },
		onPoint:   func(p, i int) { points = append(points, p<<10|i) },
	}

	offsets := make([]uint16, 0, 2*column.PageSize+2)
	offsets = append(offsets, 5)
	for v := column.PageSize; v < 3*column.PageSize; v++ {
		offsets = append(offsets, uint16(v))
	}
	offsets = append(offsets, 65535)

	walk(container.NewDense(offsets), math.MaxUint64, &rec)
	assert.Equal(t, [][3]int{{1, 0, 1024}, {2, 0, 1024}}, segs)
	assert.Equal(t, []int{5, 65535}, points)

	// Only the pages present in the page mask are visited.
	segs, points = nil, nil
	walk(container.NewDense(offsets), 1<<2, &rec)
	assert.Equal(t, [][3]int{{2, 0, 1024}}, segs)
	assert.Empty(t, points)

	walk(container.NewSparse(offsets), 0, &rec)
	assert.Equal(t, [][3]int{{2, 0, 1024}}, segs)
}

type recorder struct {
	onSegment func(p, lo, hi int)
	onPoint   func(p, i int)
}

func (r *recorder) segment(p, lo, hi int) { r.onSegment(p, lo, hi) }
func (r *recorder) point(p, i int)        { r.onPoint(p, i) }

func TestSumOfProducts(t *testing.T) {
	// 20 keys of 50 values each at offsets 0..49.
	const keys, n = 20, 50
	x, y := column.NewIndex(), column.NewIndex()
	var expected float64
	for k := range keys {
		xs, ys := make([]float64, n), make([]float64, n)
		for i := range n {
			xs[i] = float64(k*n+i) * 0.5
			ys[i] = float64(i) - 3.25
			expected += xs[i] * ys[i]
		}
		xc, yc := column.New(), column.New()
		xc.Write(0, xs)
		yc.Write(0, ys)
		x.Insert(uint16(k), xc)
		y.Insert(uint16(k), yc)
	}

	offsets := make([]uint16, n)
	for i := range offsets {
		offsets[i] = uint16(i)
	}
	for kind, mask := range forcedKinds(offsets) {
		t.Run(kind, func(t *testing.T) {
			p := NewSumProduct(x, y)
			for k := range keys {
				require.NoError(t, p.Accept(uint16(k), mask))
			}
			got, err := p.Result()
			require.NoError(t, err)
			assert.InDelta(t, expected, got, 1e-5)
		})
	}
}

func TestModels(t *testing.T) {
	rng := testutil.NewRNG(11)
	x, y := column.NewIndex(), column.NewIndex()
	masks := map[uint16]*container.Container{}

	type pair struct{ x, y float64 }
	var selected []pair
	for _, key := range []uint16{0, 3, 900, 65535} {
		xc := randomColumn(rng, 1|1<<7|1<<40)
		yc := column.New()
		for p := range column.Pages {
			if data := xc.Page(p); data != nil {
				ys := make([]float64, column.PageSize)
				for i, v := range data {
					ys[i] = 2*v + 1 + 0.1*math.Sin(float64(i))
				}
				yc.Transfer(p, ys)
			}
		}
		x.Insert(key, xc)
		y.Insert(key, yc)

		mask := container.FromSorted(rng.Offsets(2000 + int(key)%3000))
		masks[key] = mask
		for v := range mask.All() {
			selected = append(selected, pair{xc.Get(v), yc.Get(v)})
		}
	}
	// A key with a mask but no columns contributes zeros and counts.
	masks[12] = container.FromRange(0, 10)
	for range 10 {
		selected = append(selected, pair{})
	}

	run := func(t *testing.T, p interface {
		Accept(uint16, *container.Container) error
	}) {
		for _, key := range []uint16{0, 3, 12, 900, 65535} {
			require.NoError(t, p.Accept(key, masks[key]))
		}
	}

	var n, sx, sy, sxx, syy, sxy float64
	for _, s := range selected {
		n++
		sx += s.x
		sy += s.y
		sxx += s.x * s.x
		syy += s.y * s.y
		sxy += s.x * s.y
	}

	t.Run("Sum", func(t *testing.T) {
		p := NewSum(x)
		run(t, p)
		got, err := p.Result()
		require.NoError(t, err)
		assert.InDelta(t, sx, got, 1e-6)
	})

	t.Run("Average", func(t *testing.T) {
		p := NewAverage(x)
		run(t, p)
		got, err := p.Result()
		require.NoError(t, err)
		assert.InDelta(t, n, got[AverageCount], 0)
		assert.InDelta(t, sx/n, Mean(got), 1e-9)
	})

	t.Run("Count", func(t *testing.T) {
		p := NewCount()
		run(t, p)
		got, err := p.Result()
		require.NoError(t, err)
		assert.Equal(t, int64(n), got)
	})

	t.Run("SimpleLinearRegression", func(t *testing.T) {
		p := NewSimpleLinearRegression(x, y)
		run(t, p)
		got, err := p.Result()
		require.NoError(t, err)
		require.Len(t, got, regressionFields)

		pmcc := (n*sxy - sx*sy) / math.Sqrt((n*syy-sy*sy)*(n*sxx-sx*sx))
		slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
		assert.InDelta(t, pmcc, PMCC(got), 1e-9)
		assert.InDelta(t, slope, Slope(got), 1e-9)
		assert.InDelta(t, (sy-slope*sx)/n, Intercept(got), 1e-9)
		assert.Greater(t, PMCC(got), 0.9)
	})

	t.Run("VerticalSum", func(t *testing.T) {
		p := NewVerticalSum(x)
		run(t, p)
		got, err := p.Result()
		require.NoError(t, err)
		require.Len(t, got, column.PageSize)
		assert.InDelta(t, sx, HorizontalSum(got), 1e-6)
	})
}

func TestMeanOfNothing(t *testing.T) {
	p := NewAverage(column.NewIndex())
	got, err := p.Result()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(Mean(got)))
}

func TestContextsRejectUnsupportedKinds(t *testing.T) {
	scalar := NewScalarContext()
	vector := NewVectorContext(2)
	count := NewCountContext()

	assert.ErrorIs(t, scalar.ContributeLong(0, 1, AddLong), ErrUnsupported)
	assert.ErrorIs(t, scalar.ContributeVector(nil, AddVectors), ErrUnsupported)
	_, err := scalar.ReducedLong()
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = scalar.ReducedVector()
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.ErrorIs(t, vector.ContributeLong(0, 1, AddLong), ErrUnsupported)
	_, err = vector.ReducedDouble()
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = vector.ReducedLong()
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.ErrorIs(t, count.ContributeDouble(0, 1, Add), ErrUnsupported)
	assert.ErrorIs(t, count.ContributeVector(nil, AddVectors), ErrUnsupported)
	_, err = count.ReducedDouble()
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = count.ReducedVector()
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestVectorContext(t *testing.T) {
	ctx := NewVectorContext(3)
	require.NoError(t, ctx.ContributeDouble(1, 2, Add))
	require.NoError(t, ctx.ContributeDouble(1, 3, Add))
	require.NoError(t, ctx.ContributeDouble(2, 7, math.Max))
	require.NoError(t, ctx.ContributeVector([]float64{1, 1, 1}, AddVectors))

	got, err := ctx.ReducedVector()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 6, 8}, got)

	err = ctx.ContributeVector([]float64{1, 2}, AddVectors)
	var shape *ErrShapeMismatch
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 3, shape.Expected)
	assert.Equal(t, 2, shape.Actual)

	assert.Panics(t, func() { _ = ctx.ContributeDouble(3, 1, Add) })
	assert.Panics(t, func() { ctx.ReadChunk(0, 1) })
}

func TestCombine(t *testing.T) {
	a := []float64{1, 2}
	got, err := CombineVectors(a, []float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, got)
	assert.Equal(t, []float64{1, 2}, a)

	_, err = CombineVectors(a, []float64{1})
	var shape *ErrShapeMismatch
	assert.ErrorAs(t, err, &shape)

	d, _ := CombineDouble(1.5, 2)
	assert.InDelta(t, 3.5, d, 0)
	l, _ := CombineLong(3, 4)
	assert.Equal(t, int64(7), l)
}

func BenchmarkSumProduct(b *testing.B) {
	rng := testutil.NewRNG(1)
	xc := randomColumn(rng, math.MaxUint64)
	yc := randomColumn(rng, math.MaxUint64)
	for kind, mask := range forcedKinds(rng.RunOffsets(64, 900)) {
		b.Run(kind, func(b *testing.B) {
			for b.Loop() {
				_ = maskedDot(xc, yc, mask)
			}
		})
	}
}

package reduction

import (
	"math/bits"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/splitmap/column"
	"github.com/hupe1980/splitmap/container"
)

// zeroPage stands in for pages a column does not allocate.
var zeroPage = make([]float64, column.PageSize)

// page returns page p of c, or the zero page.
func page(c *column.Column, p int) []float64 {
	if data := c.Page(p); data != nil {
		return data
	}
	return zeroPage
}

// walker receives the selection of a mask one page at a time. lo and hi are
// offsets within page p; hi is exclusive.
type walker interface {
	segment(p, lo, hi int)
	point(p, i int)
}

// walk visits the offsets of mask that fall in the pages set in pages.
//
// RunLength masks are visited as intervals split at page boundaries. Dense
// masks take one segment per fully selected page and fall back to their set
// bits otherwise. Sparse masks are visited point by point.
func walk(mask *container.Container, pages uint64, w walker) {
	if pages == 0 {
		return
	}
	if mask.Kind() == container.RunLength {
		walkRuns(mask.Runs(), pages, w)
		return
	}

	dense := mask.Kind() == container.Dense
	it := mask.Iterator()
	for it.HasNext() {
		p := int(it.PeekNext()) >> 10
		if pages&(1<<p) == 0 {
			// Jump to the next page worth reading.
			rest := pages &^ (1<<(p+1) - 1)
			if p == column.Pages-1 || rest == 0 {
				return
			}
			it.AdvanceIfNeeded(uint16(bits.TrailingZeros64(rest) << 10))
			continue
		}

		start := p << 10
		end := start + column.PageSize
		if dense && mask.ContainsRange(start, end) {
			w.segment(p, 0, column.PageSize)
			if end == container.MaxCapacity {
				return
			}
			it.AdvanceIfNeeded(uint16(end))
			continue
		}
		for it.HasNext() {
			v := int(it.PeekNext())
			if v >= end {
				break
			}
			w.point(p, v-start)
			it.Next()
		}
	}
}

func walkRuns(runs []container.Run, pages uint64, w walker) {
	for _, r := range runs {
		start, last := int(r.Start), int(r.Last())
		for start <= last {
			p := start >> 10
			end := min(last+1, (p+1)<<10)
			if pages&(1<<p) != 0 {
				w.segment(p, start&(column.PageSize-1), end-(p<<10))
			}
			start = end
		}
	}
}

// sum4 adds the values of x with four independent partial sums.
func sum4(x []float64) float64 {
	if len(x) == column.PageSize {
		return floats.Sum(x)
	}
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(x); i += 4 {
		s0 += x[i]
		s1 += x[i+1]
		s2 += x[i+2]
		s3 += x[i+3]
	}
	for ; i < len(x); i++ {
		s0 += x[i]
	}
	return (s0 + s1) + (s2 + s3)
}

// dot4 returns the dot product of x and y with four partial sums.
func dot4(x, y []float64) float64 {
	if len(x) == column.PageSize {
		return floats.Dot(x, y)
	}
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(x); i += 4 {
		s0 += x[i] * y[i]
		s1 += x[i+1] * y[i+1]
		s2 += x[i+2] * y[i+2]
		s3 += x[i+3] * y[i+3]
	}
	for ; i < len(x); i++ {
		s0 += x[i] * y[i]
	}
	return (s0 + s1) + (s2 + s3)
}

// sumWalker sums one column.
type sumWalker struct {
	c   *column.Column
	sum float64
}

func (s *sumWalker) segment(p, lo, hi int) { s.sum += sum4(s.c.Page(p)[lo:hi]) }
func (s *sumWalker) point(p, i int)        { s.sum += s.c.Page(p)[i] }

func maskedSum(c *column.Column, mask *container.Container) float64 {
	s := sumWalker{c: c}
	walk(mask, c.PageMask(), &s)
	return s.sum
}

// dotWalker sums the products of two columns.
type dotWalker struct {
	x, y *column.Column
	sum  float64
}

func (d *dotWalker) segment(p, lo, hi int) {
	d.sum += dot4(d.x.Page(p)[lo:hi], d.y.Page(p)[lo:hi])
}

func (d *dotWalker) point(p, i int) { d.sum += d.x.Page(p)[i] * d.y.Page(p)[i] }

func maskedDot(x, y *column.Column, mask *container.Container) float64 {
	d := dotWalker{x: x, y: y}
	walk(mask, x.PageMask()&y.PageMask(), &d)
	return d.sum
}

// moments accumulates the sums a linear regression needs. Pages missing
// from one column read as zero.
type moments struct {
	x, y *column.Column

	sx, sy, sxx, syy, sxy float64
}

func (m *moments) segment(p, lo, hi int) {
	xs, ys := page(m.x, p)[lo:hi], page(m.y, p)[lo:hi]
	m.sx += sum4(xs)
	m.sy += sum4(ys)
	m.sxx += dot4(xs, xs)
	m.syy += dot4(ys, ys)
	m.sxy += dot4(xs, ys)
}

func (m *moments) point(p, i int) {
	x, y := page(m.x, p)[i], page(m.y, p)[i]
	m.sx += x
	m.sy += y
	m.sxx += x * x
	m.syy += y * y
	m.sxy += x * y
}

// verticalWalker adds selected values into acc at their position within
// the page.
type verticalWalker struct {
	c   *column.Column
	acc []float64
}

func (v *verticalWalker) segment(p, lo, hi int) {
	floats.Add(v.acc[lo:hi], v.c.Page(p)[lo:hi])
}

func (v *verticalWalker) point(p, i int) { v.acc[i] += v.c.Page(p)[i] }

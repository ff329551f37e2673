// Package column provides the paged float64 storage that metric values are
// reduced from.
//
// A Column holds the values of one key: up to 65536 float64s split into 64
// pages of 1024. Pages are allocated independently and a page mask records
// which exist. Missing pages read as zero and are skipped by reductions.
package column

import (
	"fmt"
	"math/bits"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/splitmap/prefix"
)

const (
	// PageSize is the number of values in a page.
	PageSize = 1024

	// Pages is the number of pages in a column.
	Pages = 64

	// Capacity is the number of values a column can hold.
	Capacity = PageSize * Pages
)

// Column is a sparsely allocated array of 65536 float64 values.
// It is read-only once published.
type Column struct {
	pages [Pages][]float64
	mask  uint64
}

// New returns an empty column.
func New() *Column {
	return &Column{}
}

// Write copies data into page p. Values past len(data) read as zero.
func (c *Column) Write(p int, data []float64) {
	checkPage(p)
	if len(data) > PageSize {
		panic(fmt.Sprintf("column: page holds %d values, got %d", PageSize, len(data)))
	}
	page := make([]float64, PageSize)
	copy(page, data)
	c.pages[p] = page
	c.mask |= 1 << p
}

// Transfer installs page without copying it. The caller must not modify
// page afterwards.
func (c *Column) Transfer(p int, page []float64) {
	checkPage(p)
	if len(page) != PageSize {
		panic(fmt.Sprintf("column: page holds %d values, got %d", PageSize, len(page)))
	}
	c.pages[p] = page
	c.mask |= 1 << p
}

// PageMask returns the bitmask of allocated pages.
func (c *Column) PageMask() uint64 { return c.mask }

// Get returns the value at offset, or zero if its page is missing.
func (c *Column) Get(offset uint16) float64 {
	page := c.pages[offset>>10]
	if page == nil {
		return 0
	}
	return page[offset&(PageSize-1)]
}

// Page returns page p without copying, or nil if it is missing.
// Callers must not modify it.
func (c *Column) Page(p int) []float64 {
	checkPage(p)
	return c.pages[p]
}

// CopyPage copies page p into dst and reports whether the page exists.
func (c *Column) CopyPage(p int, dst []float64) bool {
	checkPage(p)
	if c.mask&(1<<p) == 0 {
		return false
	}
	copy(dst, c.pages[p])
	return true
}

// Reduce folds every value of the allocated pages into initial with op,
// in ascending offset order.
func (c *Column) Reduce(initial float64, op func(acc, v float64) float64) float64 {
	acc := initial
	for m := c.mask; m != 0; m &= m - 1 {
		for _, v := range c.pages[bits.TrailingZeros64(m)] {
			acc = op(acc, v)
		}
	}
	return acc
}

// Sum returns the sum of all values.
func (c *Column) Sum() float64 {
	var sum float64
	for m := c.mask; m != 0; m &= m - 1 {
		sum += floats.Sum(c.pages[bits.TrailingZeros64(m)])
	}
	return sum
}

func checkPage(p int) {
	if p < 0 || p >= Pages {
		panic(fmt.Sprintf("column: page %d out of range [0, %d)", p, Pages))
	}
}

// Index maps keys to their columns.
type Index = prefix.Index[*Column]

// NewIndex returns an empty column index.
func NewIndex() *Index {
	return prefix.New[*Column]()
}

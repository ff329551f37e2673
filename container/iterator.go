package container

import "iter"

// Iterator walks the offsets of a container in ascending order.
//
//	it := c.Iterator()
//	for it.HasNext() {
//		v := it.Next()
//		...
//	}
type Iterator struct {
	c *Container

	// Sparse: index into array. Dense: next candidate bit (MaxCapacity when
	// exhausted). RunLength: index into runs.
	pos int
	// RunLength: next offset inside runs[pos].
	cur int
}

// Iterator returns an iterator positioned at the first offset.
func (c *Container) Iterator() *Iterator {
	it := &Iterator{c: c}
	switch c.kind {
	case Dense:
		it.pos = nextSetBit(c.words, 0)
	case RunLength:
		if len(c.runs) > 0 {
			it.cur = int(c.runs[0].Start)
		}
	}
	return it
}

// All returns a range-over-func sequence of the offsets.
func (c *Container) All() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		c.ForEach(yield)
	}
}

// HasNext reports whether Next will return another offset.
func (it *Iterator) HasNext() bool {
	switch it.c.kind {
	case Sparse:
		return it.pos < len(it.c.array)
	case Dense:
		return it.pos < MaxCapacity
	default:
		return it.pos < len(it.c.runs)
	}
}

// PeekNext returns the next offset without consuming it. HasNext must be true.
func (it *Iterator) PeekNext() uint16 {
	switch it.c.kind {
	case Sparse:
		return it.c.array[it.pos]
	case Dense:
		return uint16(it.pos)
	default:
		return uint16(it.cur)
	}
}

// Next returns the next offset and advances. HasNext must be true.
func (it *Iterator) Next() uint16 {
	v := it.PeekNext()
	switch it.c.kind {
	case Sparse:
		it.pos++
	case Dense:
		it.pos = nextSetBit(it.c.words, it.pos+1)
	default:
		it.cur++
		if it.cur >= it.c.runs[it.pos].end() {
			it.pos++
			if it.pos < len(it.c.runs) {
				it.cur = int(it.c.runs[it.pos].Start)
			}
		}
	}
	return v
}

// AdvanceIfNeeded skips every offset smaller than target.
func (it *Iterator) AdvanceIfNeeded(target uint16) {
	if !it.HasNext() || it.PeekNext() >= target {
		return
	}
	switch it.c.kind {
	case Sparse:
		it.pos = advanceUntil(it.c.array, it.pos, target)
	case Dense:
		it.pos = nextSetBit(it.c.words, int(target))
	default:
		runs := it.c.runs
		for it.pos < len(runs) && runs[it.pos].end() <= int(target) {
			it.pos++
		}
		if it.pos < len(runs) {
			it.cur = max(int(runs[it.pos].Start), int(target))
		}
	}
}

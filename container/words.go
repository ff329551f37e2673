package container

import (
	"math/bits"

	"github.com/hupe1980/splitmap/internal/simd"
)

func popcount(words []uint64) int {
	return simd.PopcountWords(words)
}

func isZero(words []uint64) bool {
	return simd.IsZero(words)
}

func orWords(dst, src []uint64) {
	simd.OrWords(dst, src)
}

func andWords(dst, src []uint64) {
	simd.AndWords(dst, src)
}

func xorWords(dst, src []uint64) {
	simd.XorWords(dst, src)
}

func intersectsWords(a, b []uint64) bool {
	return simd.Intersects(a, b)
}

func intersectCount(a, b []uint64) int {
	return simd.IntersectCount(a, b)
}

// rangeMasks returns the word span and edge masks of [start, end).
// end must be greater than start.
func rangeMasks(start, end int) (first, last int, firstMask, lastMask uint64) {
	first = start >> 6
	last = (end - 1) >> 6
	firstMask = ^uint64(0) << (uint(start) & 63)
	lastMask = ^uint64(0) >> (63 - (uint(end-1) & 63))
	return first, last, firstMask, lastMask
}

// setRange sets every bit in [start, end).
func setRange(words []uint64, start, end int) {
	if start >= end {
		return
	}
	first, last, fm, lm := rangeMasks(start, end)
	if first == last {
		words[first] |= fm & lm
		return
	}
	words[first] |= fm
	for w := first + 1; w < last; w++ {
		words[w] = ^uint64(0)
	}
	words[last] |= lm
}

// clearRange clears every bit in [start, end).
func clearRange(words []uint64, start, end int) {
	if start >= end {
		return
	}
	first, last, fm, lm := rangeMasks(start, end)
	if first == last {
		words[first] &^= fm & lm
		return
	}
	words[first] &^= fm
	for w := first + 1; w < last; w++ {
		words[w] = 0
	}
	words[last] &^= lm
}

// flipRange inverts every bit in [start, end).
func flipRange(words []uint64, start, end int) {
	if start >= end {
		return
	}
	first, last, fm, lm := rangeMasks(start, end)
	if first == last {
		words[first] ^= fm & lm
		return
	}
	words[first] ^= fm
	for w := first + 1; w < last; w++ {
		words[w] = ^words[w]
	}
	words[last] ^= lm
}

// copyRange copies the bits of src in [start, end) into dst.
func copyRange(dst, src []uint64, start, end int) {
	if start >= end {
		return
	}
	first, last, fm, lm := rangeMasks(start, end)
	if first == last {
		m := fm & lm
		dst[first] |= src[first] & m
		return
	}
	dst[first] |= src[first] & fm
	copy(dst[first+1:last], src[first+1:last])
	dst[last] |= src[last] & lm
}

// rangeFull reports whether every bit in [start, end) is set.
func rangeFull(words []uint64, start, end int) bool {
	first, last, fm, lm := rangeMasks(start, end)
	if first == last {
		m := fm & lm
		return words[first]&m == m
	}
	if words[first]&fm != fm || words[last]&lm != lm {
		return false
	}
	for w := first + 1; w < last; w++ {
		if words[w] != ^uint64(0) {
			return false
		}
	}
	return true
}

// rangeCount counts the set bits in [start, end).
func rangeCount(words []uint64, start, end int) int {
	if start >= end {
		return 0
	}
	first, last, fm, lm := rangeMasks(start, end)
	if first == last {
		return bits.OnesCount64(words[first] & fm & lm)
	}
	n := bits.OnesCount64(words[first]&fm) + bits.OnesCount64(words[last]&lm)
	return n + popcount(words[first+1:last])
}

// nextSetBit returns the first set bit at or after from, or MaxCapacity.
func nextSetBit(words []uint64, from int) int {
	if from >= MaxCapacity {
		return MaxCapacity
	}
	w := from >> 6
	word := words[w] & (^uint64(0) << (uint(from) & 63))
	for {
		if word != 0 {
			return w<<6 + bits.TrailingZeros64(word)
		}
		w++
		if w == BitmapWords {
			return MaxCapacity
		}
		word = words[w]
	}
}

// nextClearBit returns the first clear bit at or after from, or MaxCapacity.
func nextClearBit(words []uint64, from int) int {
	if from >= MaxCapacity {
		return MaxCapacity
	}
	w := from >> 6
	word := ^words[w] & (^uint64(0) << (uint(from) & 63))
	for {
		if word != 0 {
			return w<<6 + bits.TrailingZeros64(word)
		}
		w++
		if w == BitmapWords {
			return MaxCapacity
		}
		word = ^words[w]
	}
}

// prevSetBit returns the last set bit at or before from, or -1.
func prevSetBit(words []uint64, from int) int {
	w := from >> 6
	word := words[w] & (^uint64(0) >> (63 - (uint(from) & 63)))
	for {
		if word != 0 {
			return w<<6 + 63 - bits.LeadingZeros64(word)
		}
		w--
		if w < 0 {
			return -1
		}
		word = words[w]
	}
}

// forEachSetBit visits set bits in ascending order until fn returns false.
func forEachSetBit(words []uint64, fn func(uint16) bool) {
	for w, word := range words {
		base := w << 6
		for word != 0 {
			if !fn(uint16(base + bits.TrailingZeros64(word))) {
				return
			}
			word &= word - 1
		}
	}
}

// runsInWords counts maximal runs by counting run ends: a set bit followed by
// a clear bit, including across word boundaries.
func runsInWords(words []uint64) int {
	n := 0
	for i := 0; i < len(words)-1; i++ {
		word := words[i]
		n += bits.OnesCount64((word << 1) &^ word)
		n += int((word >> 63) &^ words[i+1])
	}
	last := words[len(words)-1]
	n += bits.OnesCount64((last << 1) &^ last)
	n += int(last >> 63)
	return n
}

func runsOfWords(words []uint64) []Run {
	runs := make([]Run, 0, runsInWords(words))
	for start := nextSetBit(words, 0); start < MaxCapacity; {
		end := nextClearBit(words, start)
		runs = append(runs, Run{Start: uint16(start), Length: uint16(end - start - 1)})
		start = nextSetBit(words, end)
	}
	return runs
}

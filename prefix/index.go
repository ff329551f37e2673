package prefix

import (
	"fmt"
	"math/bits"
	"runtime"
)

const (
	// Keys is the number of distinct keys an index can hold.
	Keys = 1 << 16

	// ChunkSize is the number of keys sharing one presence word and one chunk.
	ChunkSize = 64

	// Words is the number of presence words (and chunk slots).
	Words = Keys / ChunkSize
)

// Index maps a 16-bit key to a value of type V.
//
// Memory layout:
//
//	presence  [1024]uint64       bit k&63 of word k>>6 is set if key k is present
//	chunks    [1024]*[64]V       allocated on first write to a word
//
// An empty word costs one uint64. A populated word costs one 64-slot chunk.
// Keys are visited in ascending order by skipping zero presence words and
// walking set bits with TrailingZeros64.
//
// Insert does not check key order; writers built on top of an Index enforce
// it. After construction an Index is read-only and safe for concurrent
// readers. Disjoint Partitions may be written concurrently.
type Index[V any] struct {
	presence [Words]uint64
	chunks   [Words]*[ChunkSize]V
}

// New returns an empty index.
func New[V any]() *Index[V] {
	return &Index[V]{}
}

// Get returns the value stored under key.
func (x *Index[V]) Get(key uint16) (V, bool) {
	w := key >> 6
	if x.presence[w]&(1<<(key&63)) == 0 {
		var zero V
		return zero, false
	}
	return x.chunks[w][key&63], true
}

// Contains reports whether key is present.
func (x *Index[V]) Contains(key uint16) bool {
	return x.presence[key>>6]&(1<<(key&63)) != 0
}

// Insert stores value under key, replacing any previous value.
func (x *Index[V]) Insert(key uint16, value V) {
	w := key >> 6
	chunk := x.chunks[w]
	if chunk == nil {
		chunk = new([ChunkSize]V)
		x.chunks[w] = chunk
	}
	chunk[key&63] = value
	x.presence[w] |= 1 << (key & 63)
}

// Remove deletes key. The chunk is released once its last key is removed.
func (x *Index[V]) Remove(key uint16) {
	w := key >> 6
	x.presence[w] &^= 1 << (key & 63)
	if x.presence[w] == 0 {
		x.chunks[w] = nil
		return
	}
	if x.chunks[w] != nil {
		var zero V
		x.chunks[w][key&63] = zero
	}
}

// IsEmpty reports whether no key is present.
func (x *Index[V]) IsEmpty() bool {
	for _, word := range x.presence {
		if word != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of present keys.
func (x *Index[V]) Len() int {
	n := 0
	for _, word := range x.presence {
		n += bits.OnesCount64(word)
	}
	return n
}

// Keys returns the present keys in ascending order.
func (x *Index[V]) Keys() []uint16 {
	out := make([]uint16, 0, x.Len())
	x.ForEach(func(key uint16, _ V) bool {
		out = append(out, key)
		return true
	})
	return out
}

// ForEach visits keys in ascending order until fn returns false.
func (x *Index[V]) ForEach(fn func(key uint16, value V) bool) {
	forEach(x, 0, Words, fn)
}

func forEach[V any](x *Index[V], start, end int, fn func(uint16, V) bool) {
	for w := start; w < end; w++ {
		word := x.presence[w]
		if word == 0 {
			continue
		}
		chunk := x.chunks[w]
		for word != 0 {
			i := bits.TrailingZeros64(word)
			if !fn(uint16(w<<6|i), chunk[i]) {
				return
			}
			word &= word - 1
		}
	}
}

// ReadPresenceWord returns the presence bits of word w.
func (x *Index[V]) ReadPresenceWord(w int) uint64 {
	return x.presence[w]
}

// ComputePresenceWord folds the presence word w into acc with op.
func (x *Index[V]) ComputePresenceWord(w int, acc uint64, op func(acc, word uint64) uint64) uint64 {
	return op(acc, x.presence[w])
}

// Chunk returns the chunk of word w without copying, or nil if the word was
// never written. Callers must not modify it.
func (x *Index[V]) Chunk(w int) *[ChunkSize]V {
	return x.chunks[w]
}

// ReadChunk copies the chunk of word w into dst and reports whether the word
// has a chunk. Slots of absent keys hold whatever was last stored there and
// must be filtered with the presence word.
func (x *Index[V]) ReadChunk(w int, dst *[ChunkSize]V) bool {
	chunk := x.chunks[w]
	if chunk == nil {
		return false
	}
	*dst = *chunk
	return true
}

// WriteChunk replaces word w with presence bits mask and a copy of chunk.
// A zero mask clears the word.
func (x *Index[V]) WriteChunk(w int, mask uint64, chunk *[ChunkSize]V) {
	if mask == 0 {
		x.presence[w] = 0
		x.chunks[w] = nil
		return
	}
	dst := x.chunks[w]
	if dst == nil {
		dst = new([ChunkSize]V)
		x.chunks[w] = dst
	}
	*dst = *chunk
	x.clearAbsent(w, mask)
	x.presence[w] = mask
}

// TransferChunk is WriteChunk without the copy: the index takes ownership of
// chunk and the caller must not use it afterwards.
func (x *Index[V]) TransferChunk(w int, mask uint64, chunk *[ChunkSize]V) {
	if mask == 0 {
		x.presence[w] = 0
		x.chunks[w] = nil
		return
	}
	x.chunks[w] = chunk
	x.clearAbsent(w, mask)
	x.presence[w] = mask
}

// clearAbsent zeroes slots whose bit is not in mask so dropped values can be
// collected.
func (x *Index[V]) clearAbsent(w int, mask uint64) {
	var zero V
	chunk := x.chunks[w]
	for absent := ^mask; absent != 0; absent &= absent - 1 {
		chunk[bits.TrailingZeros64(absent)] = zero
	}
}

// PartitionCount returns the default number of partitions, one per
// available processor.
func PartitionCount() int {
	return runtime.GOMAXPROCS(0)
}

// UniformPartitions splits the index into n contiguous partitions of
// Words/n words each. The last partition also covers the remainder.
func (x *Index[V]) UniformPartitions(n int) []Partition[V] {
	n = clampPartitions(n)
	size := Words / n
	parts := make([]Partition[V], n)
	for i := range parts {
		end := (i + 1) * size
		if i == n-1 {
			end = Words
		}
		parts[i] = Partition[V]{index: x, id: i, start: i * size, end: end}
	}
	return parts
}

// BalancedPartitions splits the index into n contiguous partitions holding
// roughly equal weight. weight scores one key; nil counts keys. Partitions
// always cover every word, and some may be empty when weight is
// concentrated in few words.
func (x *Index[V]) BalancedPartitions(n int, weight func(key uint16, value V) int) []Partition[V] {
	n = clampPartitions(n)
	var perWord [Words]int
	total := 0
	for w := range Words {
		word := x.presence[w]
		if word == 0 {
			continue
		}
		if weight == nil {
			perWord[w] = bits.OnesCount64(word)
		} else {
			forEach(x, w, w+1, func(key uint16, v V) bool {
				perWord[w] += max(weight(key, v), 0)
				return true
			})
		}
		total += perWord[w]
	}

	parts := make([]Partition[V], n)
	start, acc := 0, 0
	for i := range parts {
		if i == n-1 {
			parts[i] = Partition[V]{index: x, id: i, start: start, end: Words}
			break
		}
		// Each partition takes words until its cumulative share is reached,
		// leaving at least one word for every partition after it.
		target := total * (i + 1) / n
		end := start
		limit := Words - (n - 1 - i)
		for end < limit && (acc < target || end == start) {
			acc += perWord[end]
			end++
		}
		parts[i] = Partition[V]{index: x, id: i, start: start, end: end}
		start = end
	}
	return parts
}

func clampPartitions(n int) int {
	if n < 1 {
		return 1
	}
	return min(n, Words)
}

// ReduceInt64 maps every present value with fn and folds the results with
// op, starting from identity.
func ReduceInt64[V any](x *Index[V], identity int64, fn func(V) int64, op func(a, b int64) int64) int64 {
	acc := identity
	x.ForEach(func(_ uint16, v V) bool {
		acc = op(acc, fn(v))
		return true
	})
	return acc
}

// ReduceFloat64 is ReduceInt64 for float64 results.
func ReduceFloat64[V any](x *Index[V], identity float64, fn func(V) float64, op func(a, b float64) float64) float64 {
	acc := identity
	x.ForEach(func(_ uint16, v V) bool {
		acc = op(acc, fn(v))
		return true
	})
	return acc
}

func checkWord(w, start, end int) {
	if w < start || w >= end {
		panic(fmt.Sprintf("prefix: word %d outside partition [%d, %d)", w, start, end))
	}
}

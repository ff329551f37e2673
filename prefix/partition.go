package prefix

// Partition is a view over the contiguous word range [Start, End) of an
// Index. It shares the index's storage. Writes through a partition must stay
// inside its range, which lets disjoint partitions be written from different
// goroutines without synchronization.
type Partition[V any] struct {
	index *Index[V]
	id    int
	start int
	end   int
}

// ID returns the position of the partition in the slice it came from.
func (p Partition[V]) ID() int { return p.id }

// Start returns the first word of the partition.
func (p Partition[V]) Start() int { return p.start }

// End returns the word after the last word of the partition.
func (p Partition[V]) End() int { return p.end }

// MinKey returns the smallest key the partition can hold.
func (p Partition[V]) MinKey() uint16 { return uint16(p.start << 6) }

// MaxKey returns the largest key the partition can hold.
func (p Partition[V]) MaxKey() uint16 { return uint16(p.end<<6 - 1) }

// Index returns the index the partition views.
func (p Partition[V]) Index() *Index[V] { return p.index }

// ForEach visits the partition's keys in ascending order until fn returns
// false.
func (p Partition[V]) ForEach(fn func(key uint16, value V) bool) {
	forEach(p.index, p.start, p.end, fn)
}

// Len returns the number of present keys in the partition.
func (p Partition[V]) Len() int {
	n := 0
	p.ForEach(func(uint16, V) bool {
		n++
		return true
	})
	return n
}

// ReadPresenceWord returns the presence bits of word w, which must lie in
// the partition.
func (p Partition[V]) ReadPresenceWord(w int) uint64 {
	checkWord(w, p.start, p.end)
	return p.index.presence[w]
}

// Chunk returns the chunk of word w without copying.
func (p Partition[V]) Chunk(w int) *[ChunkSize]V {
	checkWord(w, p.start, p.end)
	return p.index.chunks[w]
}

// ReadChunk copies the chunk of word w into dst.
func (p Partition[V]) ReadChunk(w int, dst *[ChunkSize]V) bool {
	checkWord(w, p.start, p.end)
	return p.index.ReadChunk(w, dst)
}

// WriteChunk replaces word w with mask and a copy of chunk.
func (p Partition[V]) WriteChunk(w int, mask uint64, chunk *[ChunkSize]V) {
	checkWord(w, p.start, p.end)
	p.index.WriteChunk(w, mask, chunk)
}

// TransferChunk replaces word w with mask and takes ownership of chunk.
func (p Partition[V]) TransferChunk(w int, mask uint64, chunk *[ChunkSize]V) {
	checkWord(w, p.start, p.end)
	p.index.TransferChunk(w, mask, chunk)
}

// Insert stores value under key, which must belong to the partition.
func (p Partition[V]) Insert(key uint16, value V) {
	checkWord(int(key>>6), p.start, p.end)
	p.index.Insert(key, value)
}

// Align returns partitions of x covering the same word ranges as like, so
// inputs and outputs of one evaluation can be split identically.
func Align[V, W any](x *Index[V], like []Partition[W]) []Partition[V] {
	parts := make([]Partition[V], len(like))
	for i, p := range like {
		parts[i] = Partition[V]{index: x, id: p.id, start: p.start, end: p.end}
	}
	return parts
}

package container

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

const (
	// MaxCapacity is the number of distinct offsets a container can hold.
	MaxCapacity = 1 << 16

	// SparseThreshold is the largest cardinality stored as a sorted array.
	// Past this point a sorted array is larger than the 8 KiB bitmap.
	SparseThreshold = 4096

	// BitmapWords is the number of 64-bit words in a Dense container.
	BitmapWords = MaxCapacity / 64

	bitmapBytes = BitmapWords * 8
)

// ErrEmpty is returned by First and Last on an empty container.
var ErrEmpty = errors.New("container is empty")

// Kind identifies the representation of a container.
type Kind uint8

const (
	// Sparse is a sorted array of distinct offsets.
	Sparse Kind = iota
	// Dense is a fixed 65536-bit bitmap.
	Dense
	// RunLength is a sorted list of non-overlapping intervals.
	RunLength

	numKinds = 3
)

// String returns the representation name.
func (k Kind) String() string {
	switch k {
	case Sparse:
		return "sparse"
	case Dense:
		return "dense"
	case RunLength:
		return "run"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Run is a maximal interval of present offsets. Length is the number of
// offsets in the run minus one, so a single run can cover all 65536 offsets.
type Run struct {
	Start  uint16
	Length uint16
}

// Last returns the last offset covered by the run.
func (r Run) Last() uint16 { return r.Start + r.Length }

// end returns the exclusive end of the run.
func (r Run) end() int { return int(r.Start) + int(r.Length) + 1 }

// cardinality is either Repaired (count is exact) or Dirty (count unknown
// after a lazy union).
type cardinality struct {
	count int
	dirty bool
}

func repaired(n int) cardinality { return cardinality{count: n} }

var dirtyCardinality = cardinality{dirty: true}

// Container is an immutable set of 16-bit offsets.
type Container struct {
	kind  Kind
	card  cardinality
	array []uint16 // Sparse
	words []uint64 // Dense, len == BitmapWords
	runs  []Run    // RunLength
}

var empty = &Container{kind: Sparse}

// Empty returns the empty container.
func Empty() *Container {
	return empty
}

// Of builds a container from offsets in any order. Duplicates are ignored.
func Of(values ...uint16) *Container {
	if len(values) == 0 {
		return empty
	}
	arr := slices.Clone(values)
	slices.Sort(arr)
	arr = slices.Compact(arr)
	return fromArray(arr)
}

// FromSorted builds a container from strictly ascending offsets.
// It panics if values are not strictly ascending.
func FromSorted(values []uint16) *Container {
	mustAscend(values)
	return fromArray(slices.Clone(values))
}

// FromWords builds a container from a 1024-word bitmap. The words are copied.
func FromWords(words []uint64) *Container {
	if len(words) != BitmapWords {
		panic(fmt.Sprintf("container: bitmap must have %d words, got %d", BitmapWords, len(words)))
	}
	w := slices.Clone(words)
	return fromWords(w, popcount(w))
}

// FromRange builds the container holding every offset in [start, end).
func FromRange(start, end int) *Container {
	checkRange(start, end)
	if start == end {
		return empty
	}
	return fromRuns([]Run{{Start: uint16(start), Length: uint16(end - start - 1)}})
}

// FromRuns builds a container from ascending, non-overlapping runs. Adjacent
// runs are coalesced.
func FromRuns(runs []Run) *Container {
	out := make([]Run, 0, len(runs))
	for i, r := range runs {
		if i > 0 && int(r.Start) <= int(runs[i-1].Last()) {
			panic(fmt.Sprintf("container: run %d overlaps or precedes run %d", i, i-1))
		}
		out = appendInterval(out, int(r.Start), r.end())
	}
	return fromRuns(out)
}

// NewSparse builds a Sparse container from strictly ascending offsets,
// regardless of cardinality.
func NewSparse(values []uint16) *Container {
	mustAscend(values)
	return &Container{kind: Sparse, card: repaired(len(values)), array: slices.Clone(values)}
}

// NewDense builds a Dense container from strictly ascending offsets,
// regardless of cardinality.
func NewDense(values []uint16) *Container {
	mustAscend(values)
	words := make([]uint64, BitmapWords)
	for _, v := range values {
		words[v>>6] |= 1 << (v & 63)
	}
	return &Container{kind: Dense, card: repaired(len(values)), words: words}
}

// NewRun builds a RunLength container from strictly ascending offsets,
// regardless of how many runs that takes.
func NewRun(values []uint16) *Container {
	mustAscend(values)
	return &Container{kind: RunLength, card: repaired(len(values)), runs: runsOfArray(values)}
}

func mustAscend(values []uint16) {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			panic(fmt.Sprintf("container: values not strictly ascending at index %d (%d after %d)", i, values[i], values[i-1]))
		}
	}
}

func checkRange(start, end int) {
	if start < 0 || end > MaxCapacity || start > end {
		panic(fmt.Sprintf("container: invalid range [%d, %d)", start, end))
	}
}

// Kind returns the current representation.
func (c *Container) Kind() Kind { return c.kind }

// IsDirty reports whether the cardinality is pending a Repair.
func (c *Container) IsDirty() bool { return c.card.dirty }

// Cardinality returns the number of offsets in the container.
// It panics on a Dirty container.
func (c *Container) Cardinality() int {
	if c.card.dirty {
		panic("container: cardinality read before Repair")
	}
	return c.card.count
}

// IsEmpty reports whether the container holds no offsets.
func (c *Container) IsEmpty() bool {
	if c.card.dirty {
		return isZero(c.words)
	}
	return c.card.count == 0
}

// Contains reports whether x is in the container.
func (c *Container) Contains(x uint16) bool {
	switch c.kind {
	case Sparse:
		_, found := slices.BinarySearch(c.array, x)
		return found
	case Dense:
		return c.words[x>>6]&(1<<(x&63)) != 0
	default:
		i := sort.Search(len(c.runs), func(i int) bool { return c.runs[i].Last() >= x })
		return i < len(c.runs) && c.runs[i].Start <= x
	}
}

// ContainsRange reports whether every offset in [start, end) is present.
// An empty range is always contained.
func (c *Container) ContainsRange(start, end int) bool {
	checkRange(start, end)
	if start == end {
		return true
	}
	switch c.kind {
	case Sparse:
		n := end - start
		if n > len(c.array) {
			return false
		}
		i, found := slices.BinarySearch(c.array, uint16(start))
		return found && i+n <= len(c.array) && int(c.array[i+n-1]) == end-1
	case Dense:
		return rangeFull(c.words, start, end)
	default:
		i := sort.Search(len(c.runs), func(i int) bool { return c.runs[i].end() > start })
		return i < len(c.runs) && int(c.runs[i].Start) <= start && c.runs[i].end() >= end
	}
}

// First returns the smallest offset.
func (c *Container) First() (uint16, error) {
	if c.IsEmpty() {
		return 0, ErrEmpty
	}
	switch c.kind {
	case Sparse:
		return c.array[0], nil
	case Dense:
		return uint16(nextSetBit(c.words, 0)), nil
	default:
		return c.runs[0].Start, nil
	}
}

// Last returns the largest offset.
func (c *Container) Last() (uint16, error) {
	if c.IsEmpty() {
		return 0, ErrEmpty
	}
	switch c.kind {
	case Sparse:
		return c.array[len(c.array)-1], nil
	case Dense:
		return uint16(prevSetBit(c.words, MaxCapacity-1)), nil
	default:
		return c.runs[len(c.runs)-1].Last(), nil
	}
}

// NumberOfRuns returns the number of maximal runs of consecutive offsets.
func (c *Container) NumberOfRuns() int {
	switch c.kind {
	case Sparse:
		return runsInArray(c.array)
	case Dense:
		return runsInWords(c.words)
	default:
		return len(c.runs)
	}
}

// SizeInBytes returns the encoded size of the current representation.
func (c *Container) SizeInBytes() int {
	switch c.kind {
	case Sparse:
		return 2 + 2*len(c.array)
	case Dense:
		return bitmapBytes
	default:
		return 2 + 4*len(c.runs)
	}
}

// Array exposes the sorted offsets of a Sparse container, or nil.
// The slice must not be modified.
func (c *Container) Array() []uint16 {
	if c.kind != Sparse {
		return nil
	}
	return c.array
}

// Words exposes the bitmap of a Dense container, or nil.
// The slice must not be modified.
func (c *Container) Words() []uint64 {
	if c.kind != Dense {
		return nil
	}
	return c.words
}

// Runs exposes the intervals of a RunLength container, or nil.
// The slice must not be modified.
func (c *Container) Runs() []Run {
	if c.kind != RunLength {
		return nil
	}
	return c.runs
}

// Clone returns a deep copy.
func (c *Container) Clone() *Container {
	return &Container{
		kind:  c.kind,
		card:  c.card,
		array: slices.Clone(c.array),
		words: slices.Clone(c.words),
		runs:  slices.Clone(c.runs),
	}
}

// Values returns the offsets in ascending order.
func (c *Container) Values() []uint16 {
	if c.card.dirty {
		return appendValues(make([]uint16, 0, popcount(c.words)), c)
	}
	return appendValues(make([]uint16, 0, c.card.count), c)
}

func appendValues(dst []uint16, c *Container) []uint16 {
	c.ForEach(func(v uint16) bool {
		dst = append(dst, v)
		return true
	})
	return dst
}

// ForEach calls fn for every offset in ascending order until fn returns false.
func (c *Container) ForEach(fn func(uint16) bool) {
	switch c.kind {
	case Sparse:
		for _, v := range c.array {
			if !fn(v) {
				return
			}
		}
	case Dense:
		forEachSetBit(c.words, fn)
	default:
		for _, r := range c.runs {
			for v := int(r.Start); v < r.end(); v++ {
				if !fn(uint16(v)) {
					return
				}
			}
		}
	}
}

// Equal reports whether both containers hold the same offsets.
func (c *Container) Equal(other *Container) bool {
	if c == other {
		return true
	}
	if c.IsEmpty() || other.IsEmpty() {
		return c.IsEmpty() && other.IsEmpty()
	}
	if !c.card.dirty && !other.card.dirty && c.card.count != other.card.count {
		return false
	}
	if c.kind == Dense && other.kind == Dense {
		return slices.Equal(c.words, other.words)
	}
	a, b := c.Iterator(), other.Iterator()
	for a.HasNext() && b.HasNext() {
		if a.Next() != b.Next() {
			return false
		}
	}
	return !a.HasNext() && !b.HasNext()
}

// String renders small containers for debugging.
func (c *Container) String() string {
	if c.card.dirty {
		return fmt.Sprintf("container{%s, dirty}", c.kind)
	}
	return fmt.Sprintf("container{%s, card=%d}", c.kind, c.card.count)
}

// ToSparse returns the container in Sparse form regardless of size.
func (c *Container) ToSparse() *Container {
	c.mustBeRepaired()
	if c.kind == Sparse {
		return c
	}
	return &Container{kind: Sparse, card: c.card, array: c.Values()}
}

// ToDense returns the container in Dense form regardless of size.
func (c *Container) ToDense() *Container {
	c.mustBeRepaired()
	if c.kind == Dense {
		return c
	}
	return &Container{kind: Dense, card: c.card, words: c.bitmap()}
}

// ToRun returns the container in RunLength form regardless of size.
func (c *Container) ToRun() *Container {
	c.mustBeRepaired()
	if c.kind == RunLength {
		return c
	}
	var runs []Run
	if c.kind == Sparse {
		runs = runsOfArray(c.array)
	} else {
		runs = runsOfWords(c.words)
	}
	return &Container{kind: RunLength, card: c.card, runs: runs}
}

// Optimize returns the container in its minimal representation.
func (c *Container) Optimize() *Container {
	c.mustBeRepaired()
	want := bestKind(c.card.count, c.NumberOfRuns())
	if want == c.kind {
		return c
	}
	return c.convert(want)
}

func (c *Container) convert(k Kind) *Container {
	switch k {
	case Sparse:
		return c.ToSparse()
	case Dense:
		return c.ToDense()
	default:
		return c.ToRun()
	}
}

func (c *Container) mustBeRepaired() {
	if c.card.dirty {
		panic("container: operation on a dirty container; call Repair first")
	}
}

// bitmap returns a fresh 1024-word bitmap holding the container's offsets.
func (c *Container) bitmap() []uint64 {
	words := make([]uint64, BitmapWords)
	switch c.kind {
	case Sparse:
		for _, v := range c.array {
			words[v>>6] |= 1 << (v & 63)
		}
	case Dense:
		copy(words, c.words)
	default:
		for _, r := range c.runs {
			setRange(words, int(r.Start), r.end())
		}
	}
	return words
}

// bestKind picks the smallest encoding for a set with the given shape.
func bestKind(card, runs int) Kind {
	if card == 0 {
		return Sparse
	}
	other, kind := bitmapBytes, Dense
	if card <= SparseThreshold {
		other, kind = 2+2*card, Sparse
	}
	if 2+4*runs <= min(other, bitmapBytes) {
		return RunLength
	}
	return kind
}

// fromArray takes ownership of a strictly ascending array.
func fromArray(arr []uint16) *Container {
	if len(arr) == 0 {
		return empty
	}
	card := len(arr)
	switch bestKind(card, runsInArray(arr)) {
	case Sparse:
		return &Container{kind: Sparse, card: repaired(card), array: arr}
	case RunLength:
		return &Container{kind: RunLength, card: repaired(card), runs: runsOfArray(arr)}
	default:
		words := make([]uint64, BitmapWords)
		for _, v := range arr {
			words[v>>6] |= 1 << (v & 63)
		}
		return &Container{kind: Dense, card: repaired(card), words: words}
	}
}

// fromWords takes ownership of a bitmap whose population count is card.
func fromWords(words []uint64, card int) *Container {
	if card == 0 {
		return empty
	}
	switch bestKind(card, runsInWords(words)) {
	case Sparse:
		arr := make([]uint16, 0, card)
		forEachSetBit(words, func(v uint16) bool {
			arr = append(arr, v)
			return true
		})
		return &Container{kind: Sparse, card: repaired(card), array: arr}
	case RunLength:
		return &Container{kind: RunLength, card: repaired(card), runs: runsOfWords(words)}
	default:
		return &Container{kind: Dense, card: repaired(card), words: words}
	}
}

// fromRuns takes ownership of ascending, coalesced runs.
func fromRuns(runs []Run) *Container {
	card := 0
	for _, r := range runs {
		card += int(r.Length) + 1
	}
	if card == 0 {
		return empty
	}
	switch bestKind(card, len(runs)) {
	case RunLength:
		return &Container{kind: RunLength, card: repaired(card), runs: runs}
	case Sparse:
		arr := make([]uint16, 0, card)
		for _, r := range runs {
			for v := int(r.Start); v < r.end(); v++ {
				arr = append(arr, uint16(v))
			}
		}
		return &Container{kind: Sparse, card: repaired(card), array: arr}
	default:
		words := make([]uint64, BitmapWords)
		for _, r := range runs {
			setRange(words, int(r.Start), r.end())
		}
		return &Container{kind: Dense, card: repaired(card), words: words}
	}
}

// runsOfArray groups a strictly ascending array into runs.
func runsOfArray(arr []uint16) []Run {
	if len(arr) == 0 {
		return nil
	}
	runs := make([]Run, 0, runsInArray(arr))
	start := arr[0]
	prev := arr[0]
	for _, v := range arr[1:] {
		if v != prev+1 {
			runs = append(runs, Run{Start: start, Length: prev - start})
			start = v
		}
		prev = v
	}
	return append(runs, Run{Start: start, Length: prev - start})
}

func runsInArray(arr []uint16) int {
	if len(arr) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(arr); i++ {
		if arr[i] != arr[i-1]+1 {
			n++
		}
	}
	return n
}

// appendInterval appends [start, end) to runs, coalescing with the last run
// when they touch.
func appendInterval(runs []Run, start, end int) []Run {
	if start >= end {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].end() >= start {
		last := &runs[n-1]
		if end > last.end() {
			last.Length = uint16(end - int(last.Start) - 1)
		}
		return runs
	}
	return append(runs, Run{Start: uint16(start), Length: uint16(end - start - 1)})
}

package splitmap

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/permutation"
	"github.com/hupe1980/splitmap/prefix"
)

// SplitMap is a compressed set of uint32 values. The high 16 bits of a
// value select a key, the low 16 bits an offset inside that key's
// container. Keys are stored permuted so that consecutive keys spread over
// the partitions an Executor works on.
//
// A SplitMap is immutable once built and safe for concurrent readers. A key
// may be present with an empty container; it then counts as present for
// evaluation but contributes nothing to Cardinality.
type SplitMap struct {
	index *prefix.Index[*container.Container]
	perm  permutation.Permutation
}

// New wraps an index whose keys are already permuted with perm.
// A nil perm selects permutation.Default.
func New(index *prefix.Index[*container.Container], perm permutation.Permutation) *SplitMap {
	if index == nil {
		index = prefix.New[*container.Container]()
	}
	if perm == nil {
		perm = permutation.Default()
	}
	return &SplitMap{index: index, perm: perm}
}

// Index returns the underlying index keyed by permuted keys.
func (s *SplitMap) Index() *prefix.Index[*container.Container] { return s.index }

// Permutation returns the key permutation the SplitMap was built with.
func (s *SplitMap) Permutation() permutation.Permutation { return s.perm }

// Container returns the container of an unpermuted key.
func (s *SplitMap) Container(key uint16) (*container.Container, bool) {
	return s.index.Get(s.perm.Apply(key))
}

// Contains reports whether v is in the set.
func (s *SplitMap) Contains(v uint32) bool {
	c, ok := s.Container(uint16(v >> 16))
	return ok && c.Contains(uint16(v))
}

// Cardinality returns the number of values, the sum of the cardinalities of
// all containers.
func (s *SplitMap) Cardinality() int {
	return int(prefix.ReduceInt64(s.index, 0, func(c *container.Container) int64 {
		return int64(c.Cardinality())
	}, func(a, b int64) int64 { return a + b }))
}

// IsEmpty reports whether no key is present. A SplitMap holding only
// empty containers is not empty, although its Cardinality is zero.
func (s *SplitMap) IsEmpty() bool { return s.index.IsEmpty() }

// KeyCount returns the number of present keys, empty containers included.
func (s *SplitMap) KeyCount() int { return s.index.Len() }

// SizeInBytes estimates the memory held by the containers.
func (s *SplitMap) SizeInBytes() int {
	return int(prefix.ReduceInt64(s.index, 0, func(c *container.Container) int64 {
		return int64(c.SizeInBytes())
	}, func(a, b int64) int64 { return a + b }))
}

// All visits the values grouped by key. Values of one key are ascending;
// keys are visited in permuted order.
func (s *SplitMap) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		s.index.ForEach(func(key uint16, c *container.Container) bool {
			high := uint32(s.perm.Invert(key)) << 16
			keep := true
			c.ForEach(func(offset uint16) bool {
				keep = yield(high | uint32(offset))
				return keep
			})
			return keep
		})
	}
}

// Values returns every value in ascending order.
func (s *SplitMap) Values() []uint32 {
	out := make([]uint32, 0, s.Cardinality())
	for v := range s.All() {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether s and other hold the same values under the same
// permutation. Empty containers are ignored.
func (s *SplitMap) Equal(other *SplitMap) bool {
	if !samePermutation(s.perm, other.perm) || s.Cardinality() != other.Cardinality() {
		return false
	}
	equal := true
	s.index.ForEach(func(key uint16, c *container.Container) bool {
		if c.IsEmpty() {
			return true
		}
		o, ok := other.index.Get(key)
		equal = ok && c.Equal(o)
		return equal
	})
	return equal
}

// Compact returns s without the keys whose container is empty. The result
// holds the same values and shares the remaining containers with s.
func (s *SplitMap) Compact() *SplitMap {
	out := prefix.New[*container.Container]()
	s.index.ForEach(func(key uint16, c *container.Container) bool {
		if !c.IsEmpty() {
			out.Insert(key, c)
		}
		return true
	})
	return New(out, s.perm)
}

// String summarizes the SplitMap.
func (s *SplitMap) String() string {
	var kinds [3]int
	s.index.ForEach(func(_ uint16, c *container.Container) bool {
		kinds[c.Kind()]++
		return true
	})
	var b strings.Builder
	fmt.Fprintf(&b, "SplitMap{keys: %d, cardinality: %d, permutation: %s",
		s.KeyCount(), s.Cardinality(), s.perm.Name())
	for k, n := range kinds {
		fmt.Fprintf(&b, ", %s: %d", container.Kind(k), n)
	}
	b.WriteByte('}')
	return b.String()
}

// samePermutation compares permutations by name. Unnamed permutations
// never match.
func samePermutation(a, b permutation.Permutation) bool {
	return a.Name() != "" && a.Name() == b.Name()
}

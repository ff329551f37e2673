package splitmap

import (
	"github.com/bits-and-blooms/bitset"
)

// Slice holds the values of every input at one key, as handed to a circuit.
// Inputs without the key read as the slice's missing value. Inputs are
// addressed by position, or by filter identifier through Lookup when the
// evaluation resolved them from a QueryContext.
//
// A Slice belongs to one partition of an evaluation and is refilled for
// every key. Circuits must not retain it.
type Slice[V any] struct {
	key     uint16
	values  []V
	present *bitset.BitSet
	list    []V
	missing V
	ids     map[any]int
}

// NewSlice returns a slice for n inputs that reads missing for absent ones.
func NewSlice[V any](n int, missing V) *Slice[V] {
	return &Slice[V]{
		values:  make([]V, n),
		present: bitset.New(uint(n)),
		list:    make([]V, 0, n),
		missing: missing,
	}
}

func (s *Slice[V]) reset(key uint16) {
	s.key = key
	for i := range s.values {
		s.values[i] = s.missing
	}
	s.present.ClearAll()
	s.list = s.list[:0]
}

func (s *Slice[V]) set(i int, v V) {
	s.values[i] = v
	s.present.Set(uint(i))
	s.list = append(s.list, v)
}

// Key returns the stored (permuted) key.
func (s *Slice[V]) Key() uint16 { return s.key }

// Len returns the number of inputs.
func (s *Slice[V]) Len() int { return len(s.values) }

// Get returns the value of input i, or the missing value.
func (s *Slice[V]) Get(i int) V { return s.values[i] }

// Has reports whether input i holds the key.
func (s *Slice[V]) Has(i int) bool { return s.present.Test(uint(i)) }

// Count returns the number of inputs holding the key.
func (s *Slice[V]) Count() int { return len(s.list) }

// Present returns the values of the inputs holding the key, in input
// order. The slice is reused for the next key.
func (s *Slice[V]) Present() []V { return s.list }

// Lookup returns the value of the input named id and whether that input
// holds the key. id must have the dynamic type of the filter identifiers
// passed to Evaluate; unknown identifiers read as missing.
func (s *Slice[V]) Lookup(id any) (V, bool) {
	i, ok := s.ids[id]
	if !ok {
		return s.missing, false
	}
	return s.values[i], s.Has(i)
}

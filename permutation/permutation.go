// Package permutation provides bijections over the 16-bit key space.
//
// A SplitMap stores key k at position Apply(k). Spreading neighboring keys
// apart balances the work of uniform partitions when values cluster in a
// narrow key range. Query results never depend on the permutation in use.
package permutation

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
)

// ErrNotBijective is returned by Check for a permutation that maps two keys
// to the same position or does not invert.
var ErrNotBijective = errors.New("permutation is not a bijection")

// ErrUnnamed is returned by Check for a permutation with an empty name.
var ErrUnnamed = errors.New("permutation has no name")

// Permutation is an invertible mapping of 16-bit keys.
//
// Implementations must satisfy Invert(Apply(k)) == k for every k and must
// be safe for concurrent use.
type Permutation interface {
	Apply(key uint16) uint16
	Invert(key uint16) uint16
	Name() string
}

type identity struct{}

func (identity) Apply(k uint16) uint16  { return k }
func (identity) Invert(k uint16) uint16 { return k }
func (identity) Name() string           { return "identity" }

type reverse struct{}

func (reverse) Apply(k uint16) uint16  { return bits.Reverse16(k) }
func (reverse) Invert(k uint16) uint16 { return bits.Reverse16(k) }
func (reverse) Name() string           { return "reverse" }

// reverseHigh reverses the 10 word bits among themselves and keeps the 6
// in-word bits, so keys that share a presence word keep sharing one.
type reverseHigh struct{}

func (reverseHigh) Apply(k uint16) uint16  { return bits.Reverse16(k&0xFFC0)<<6 | k&0x3F }
func (reverseHigh) Invert(k uint16) uint16 { return bits.Reverse16(k&0xFFC0)<<6 | k&0x3F }
func (reverseHigh) Name() string           { return "reverse-preserve-low6" }

var (
	// Identity stores every key at its own position.
	Identity Permutation = identity{}

	// Reverse reverses all 16 bits. Consecutive keys land in different
	// halves, quarters and so on of the key space.
	Reverse Permutation = reverse{}

	// ReversePreserveLow6 reverses the word index of a key and keeps its
	// position within the word.
	ReversePreserveLow6 Permutation = reverseHigh{}
)

// Default returns the permutation used when none is configured.
func Default() Permutation {
	return Reverse
}

// Scatter is a table-driven random bijection.
type Scatter struct {
	seed    int64
	forward [1 << 16]uint16
	inverse [1 << 16]uint16
}

// NewScatter builds a random bijection from seed. The same seed always
// yields the same table.
func NewScatter(seed int64) *Scatter {
	s := &Scatter{seed: seed}
	rng := rand.New(rand.NewSource(seed))
	for i, v := range rng.Perm(1 << 16) {
		s.forward[i] = uint16(v)
		s.inverse[v] = uint16(i)
	}
	return s
}

// Apply implements Permutation.
func (s *Scatter) Apply(k uint16) uint16 { return s.forward[k] }

// Invert implements Permutation.
func (s *Scatter) Invert(k uint16) uint16 { return s.inverse[k] }

// Name implements Permutation.
func (s *Scatter) Name() string { return fmt.Sprintf("scatter(%d)", s.seed) }

// Func adapts a pair of functions. Use Check to validate it.
//
// Structures are only combined when their permutation names match, so
// Label must be non-empty and must not be shared by different mappings.
type Func struct {
	Label   string
	Forward func(uint16) uint16
	Inverse func(uint16) uint16
}

// Apply implements Permutation.
func (f Func) Apply(k uint16) uint16 { return f.Forward(k) }

// Invert implements Permutation.
func (f Func) Invert(k uint16) uint16 { return f.Inverse(k) }

// Name implements Permutation.
func (f Func) Name() string { return f.Label }

// Check verifies that p is named and is a bijection over the whole key
// space.
func Check(p Permutation) error {
	if p.Name() == "" {
		return ErrUnnamed
	}
	var seen [1 << 16 / 64]uint64
	for k := range 1 << 16 {
		key := uint16(k)
		v := p.Apply(key)
		if seen[v>>6]&(1<<(v&63)) != 0 {
			return fmt.Errorf("%w: %s maps two keys to %d", ErrNotBijective, p.Name(), v)
		}
		seen[v>>6] |= 1 << (v & 63)
		if back := p.Invert(v); back != key {
			return fmt.Errorf("%w: %s inverts %d to %d, want %d", ErrNotBijective, p.Name(), v, back, key)
		}
	}
	return nil
}

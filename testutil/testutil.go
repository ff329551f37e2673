package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniform(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// Offsets returns card distinct offsets in [0, 65536), ascending.
func (r *RNG) Offsets(card int) []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	card = min(card, 1<<16)
	if card > 1<<15 {
		// Cheaper to pick the offsets to leave out.
		skip := make(map[int]struct{}, 1<<16-card)
		for len(skip) < 1<<16-card {
			skip[r.rand.Intn(1<<16)] = struct{}{}
		}
		out := make([]uint16, 0, card)
		for v := range 1 << 16 {
			if _, ok := skip[v]; !ok {
				out = append(out, uint16(v))
			}
		}
		return out
	}

	seen := make(map[uint16]struct{}, card)
	out := make([]uint16, 0, card)
	for len(out) < card {
		v := uint16(r.rand.Intn(1 << 16))
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// RunOffsets returns ascending offsets laid out as up to runs intervals of at
// most maxLen offsets each, separated by gaps of at least one.
func (r *RNG) RunOffsets(runs, maxLen int) []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	stride := (1 << 16) / max(runs, 1)
	out := make([]uint16, 0, runs*maxLen/2)
	for i := range runs {
		base := i * stride
		length := 1 + r.rand.Intn(min(maxLen, stride-1))
		for v := base; v < base+length; v++ {
			out = append(out, uint16(v))
		}
	}
	return out
}

// Values returns n distinct uint32 values in [0, limit), ascending.
func (r *RNG) Values(n int, limit uint32) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, int(limit))
	seen := make(map[uint32]struct{}, n)
	out := make([]uint32, 0, n)
	for len(out) < n {
		v := uint32(r.rand.Int63n(int64(limit)))
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// SkewedValues generates ascending values whose keys (high 16 bits) follow a
// Zipf distribution over the first keys keys, so a few keys hold most of
// the values. Use it to exercise load balancing across partitions.
func (r *RNG) SkewedValues(n, keys int, s float64) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := roaring.New()
	for set.GetCardinality() < uint64(n) {
		key := uint32(r.zipfLocked(keys, s))
		set.Add(key<<16 | uint32(r.rand.Intn(1<<16)))
	}
	return set.ToArray()
}

// Roaring builds the oracle bitmap for values.
func Roaring(values ...uint32) *roaring.Bitmap {
	return roaring.BitmapOf(values...)
}

// RoaringOffsets builds the oracle bitmap for 16-bit offsets.
func RoaringOffsets(offsets []uint16) *roaring.Bitmap {
	bm := roaring.New()
	for _, v := range offsets {
		bm.Add(uint32(v))
	}
	return bm
}

// Offsets16 converts an oracle bitmap holding values below 65536 back to
// offsets.
func Offsets16(bm *roaring.Bitmap) []uint16 {
	out := make([]uint16, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, uint16(it.Next()))
	}
	return out
}

// SumOver adds weight(v) over every value of bm in ascending order, the
// brute-force reference for column reductions.
func SumOver(bm *roaring.Bitmap, weight func(uint32) float64) float64 {
	var sum float64
	it := bm.Iterator()
	for it.HasNext() {
		sum += weight(it.Next())
	}
	return sum
}

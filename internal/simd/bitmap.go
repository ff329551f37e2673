package simd

import "math/bits"

// ==============================================================================
// Bitmap Word Kernels
// ==============================================================================
//
// These kernels back the Dense container representation. They operate on
// []uint64 bit arrays. The out-of-place variants write the result of the
// operation into dst and return the population count of dst, which is
// what a container needs to pick its final representation.

// Kernel function pointers. Generic implementations are the default;
// useKernels swaps in the set matching the detected ISA during init.
var (
	kernelAndWords       = andWordsGeneric
	kernelOrWords        = orWordsGeneric
	kernelXorWords       = xorWordsGeneric
	kernelPopcountWords  = popcountWordsGeneric
	kernelAndCount       = andCountGeneric
	kernelOrCount        = orCountGeneric
	kernelXorCount       = xorCountGeneric
	kernelAndNotCount    = andNotCountGeneric
	kernelIntersectCount = intersectCountGeneric
)

// Kernel set names reported in Capabilities.
const (
	kernelsGeneric  = "unrolled4"
	kernelsUnrolled = "unrolled8"
)

// useKernels installs the counting kernels for isa and returns the name of
// the installed set. Vector ISAs get the eight-word variants.
func useKernels(isa ISA) string {
	if isa == Generic {
		kernelPopcountWords = popcountWordsGeneric
		kernelAndCount = andCountGeneric
		kernelOrCount = orCountGeneric
		kernelXorCount = xorCountGeneric
		kernelAndNotCount = andNotCountGeneric
		kernelIntersectCount = intersectCountGeneric
		return kernelsGeneric
	}
	kernelPopcountWords = popcount8
	kernelAndCount = andCount8
	kernelOrCount = orCount8
	kernelXorCount = xorCount8
	kernelAndNotCount = andNotCount8
	kernelIntersectCount = intersectCount8
	return kernelsUnrolled
}

// AndWords performs dst[i] &= src[i] for all words.
func AndWords(dst, src []uint64) {
	kernelAndWords(dst, src)
}

// OrWords performs dst[i] |= src[i] for all words.
func OrWords(dst, src []uint64) {
	kernelOrWords(dst, src)
}

// XorWords performs dst[i] ^= src[i] for all words.
func XorWords(dst, src []uint64) {
	kernelXorWords(dst, src)
}

// PopcountWords counts all set bits across words.
func PopcountWords(words []uint64) int {
	return kernelPopcountWords(words)
}

// AndCount writes a[i] & b[i] into dst and returns the number of set bits.
func AndCount(dst, a, b []uint64) int {
	return kernelAndCount(dst, a, b)
}

// OrCount writes a[i] | b[i] into dst and returns the number of set bits.
func OrCount(dst, a, b []uint64) int {
	return kernelOrCount(dst, a, b)
}

// XorCount writes a[i] ^ b[i] into dst and returns the number of set bits.
func XorCount(dst, a, b []uint64) int {
	return kernelXorCount(dst, a, b)
}

// AndNotCount writes a[i] &^ b[i] into dst and returns the number of set bits.
func AndNotCount(dst, a, b []uint64) int {
	return kernelAndNotCount(dst, a, b)
}

// IntersectCount returns popcount(a & b) without materializing the result.
func IntersectCount(a, b []uint64) int {
	return kernelIntersectCount(a, b)
}

// Intersects reports whether a and b share at least one set bit.
func Intersects(a, b []uint64) bool {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i]&b[i] != 0 {
			return true
		}
	}
	return false
}

// IsZero reports whether every word is zero.
func IsZero(words []uint64) bool {
	for _, w := range words {
		if w != 0 {
			return false
		}
	}
	return true
}

// ==============================================================================
// Generic implementations
// ==============================================================================

func andWordsGeneric(dst, src []uint64) {
	// Process 4 words at a time (unrolled)
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] &= src[i]
		dst[i+1] &= src[i+1]
		dst[i+2] &= src[i+2]
		dst[i+3] &= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] &= src[i]
	}
}

func orWordsGeneric(dst, src []uint64) {
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] |= src[i]
		dst[i+1] |= src[i+1]
		dst[i+2] |= src[i+2]
		dst[i+3] |= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] |= src[i]
	}
}

func xorWordsGeneric(dst, src []uint64) {
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] ^= src[i]
		dst[i+1] ^= src[i+1]
		dst[i+2] ^= src[i+2]
		dst[i+3] ^= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] ^= src[i]
	}
}

func popcountWordsGeneric(words []uint64) int {
	count := 0
	i := 0
	for ; i+4 <= len(words); i += 4 {
		count += bits.OnesCount64(words[i])
		count += bits.OnesCount64(words[i+1])
		count += bits.OnesCount64(words[i+2])
		count += bits.OnesCount64(words[i+3])
	}
	for ; i < len(words); i++ {
		count += bits.OnesCount64(words[i])
	}
	return count
}

func andCountGeneric(dst, a, b []uint64) int {
	c0, c1, c2, c3 := 0, 0, 0, 0
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] = a[i] & b[i]
		dst[i+1] = a[i+1] & b[i+1]
		dst[i+2] = a[i+2] & b[i+2]
		dst[i+3] = a[i+3] & b[i+3]
		c0 += bits.OnesCount64(dst[i])
		c1 += bits.OnesCount64(dst[i+1])
		c2 += bits.OnesCount64(dst[i+2])
		c3 += bits.OnesCount64(dst[i+3])
	}
	for ; i < len(dst); i++ {
		dst[i] = a[i] & b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3
}

func orCountGeneric(dst, a, b []uint64) int {
	c0, c1, c2, c3 := 0, 0, 0, 0
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] = a[i] | b[i]
		dst[i+1] = a[i+1] | b[i+1]
		dst[i+2] = a[i+2] | b[i+2]
		dst[i+3] = a[i+3] | b[i+3]
		c0 += bits.OnesCount64(dst[i])
		c1 += bits.OnesCount64(dst[i+1])
		c2 += bits.OnesCount64(dst[i+2])
		c3 += bits.OnesCount64(dst[i+3])
	}
	for ; i < len(dst); i++ {
		dst[i] = a[i] | b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3
}

func xorCountGeneric(dst, a, b []uint64) int {
	c0, c1, c2, c3 := 0, 0, 0, 0
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] = a[i] ^ b[i]
		dst[i+1] = a[i+1] ^ b[i+1]
		dst[i+2] = a[i+2] ^ b[i+2]
		dst[i+3] = a[i+3] ^ b[i+3]
		c0 += bits.OnesCount64(dst[i])
		c1 += bits.OnesCount64(dst[i+1])
		c2 += bits.OnesCount64(dst[i+2])
		c3 += bits.OnesCount64(dst[i+3])
	}
	for ; i < len(dst); i++ {
		dst[i] = a[i] ^ b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3
}

func andNotCountGeneric(dst, a, b []uint64) int {
	c0, c1, c2, c3 := 0, 0, 0, 0
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] = a[i] &^ b[i]
		dst[i+1] = a[i+1] &^ b[i+1]
		dst[i+2] = a[i+2] &^ b[i+2]
		dst[i+3] = a[i+3] &^ b[i+3]
		c0 += bits.OnesCount64(dst[i])
		c1 += bits.OnesCount64(dst[i+1])
		c2 += bits.OnesCount64(dst[i+2])
		c3 += bits.OnesCount64(dst[i+3])
	}
	for ; i < len(dst); i++ {
		dst[i] = a[i] &^ b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3
}

func intersectCountGeneric(a, b []uint64) int {
	count := 0
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		count += bits.OnesCount64(a[i] & b[i])
	}
	return count
}

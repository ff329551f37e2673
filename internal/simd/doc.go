// Package simd provides the 64-bit word kernels used by dense containers.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON, SVE2
//
// Runtime CPU feature detection picks the best instruction set available
// and installs the matching kernel set: eight-word unrolled kernels with
// independent accumulators on vector ISAs, four-word kernels otherwise.
// Both are plain Go over math/bits, which the compiler lowers to
// POPCNT/CNT. SPLITMAP_SIMD forces an ISA, for example "generic".
//
// # Operations
//
//   - In place: AndWords, OrWords, XorWords
//   - Out of place with population count: AndCount, OrCount, XorCount, AndNotCount
//   - Queries: PopcountWords, IntersectCount, Intersects, IsZero
package simd

// Package container implements the compressed 16-bit set that backs every key
// of a SplitMap.
//
// # Representations
//
// A Container holds the low 16 bits (the offset) of the values that share a
// key. It is stored in one of three forms:
//
//	Sparse  sorted []uint16            2 + 2*card bytes  (card <= 4096)
//	Dense   1024 x uint64 bitmap        8192 bytes
//	Run     sorted []Run intervals      2 + 4*runs bytes
//
// The representation is an implementation detail: two containers holding the
// same offsets answer every query identically. Every operation picks the
// smallest form for its result once, at the end.
//
// # Set Algebra
//
// And, Or, Xor and AndNot are dispatched through a [3][3] table keyed by the
// representation of both operands. Each cell is a stand-alone function, so
// the algorithm for a given pair can be read in one place.
//
// # Lazy Union
//
// LazyOr skips the population count and returns a Dense container whose
// cardinality is Dirty. Chain LazyOr calls, then call Repair once:
//
//	acc := a.LazyOr(b).LazyOr(c)
//	u := acc.Repair() // exact cardinality, minimal representation
//
// Reading the cardinality of a Dirty container, or feeding it to a non-lazy
// operator, panics.
//
// Containers are immutable after construction and safe for concurrent reads.
package container

// Package testutil provides testing utilities for splitmap.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded value generators and a roaring bitmap oracle that
// every set-algebra test compares against.
//
// # Random Offsets and Values
//
//	rng := testutil.NewRNG(seed)
//	sparse := rng.Offsets(100)          // 100 distinct offsets
//	runs := rng.RunOffsets(32, 500)     // clustered offsets
//	values := rng.Values(1000, 1<<24)   // ascending uint32 values
//
// # Oracle
//
//	want := roaring.And(testutil.RoaringOffsets(a), testutil.RoaringOffsets(b))
//	assert.Equal(t, testutil.Offsets16(want), got.Values())
package testutil

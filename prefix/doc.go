// Package prefix provides a chunked map from 16-bit keys to values.
//
// An Index groups its 65536 keys into 1024 words of 64 keys. Each word has a
// presence bitmask and, once a key in it is written, a 64-slot chunk. Empty
// regions of the key space cost one uint64 per word.
//
// # Partitions
//
// Partitions are contiguous, disjoint word ranges over the same storage.
// They are the unit of parallel work: each goroutine reads and writes only
// its own range, so no locks are needed.
//
//	parts := idx.UniformPartitions(prefix.PartitionCount())
//	for _, p := range parts {
//		go func() {
//			for w := p.Start(); w < p.End(); w++ {
//				mask := p.ReadPresenceWord(w)
//				...
//			}
//		}()
//	}
//
// BalancedPartitions draws the boundaries by key weight instead of word
// count. Both schemes cover every word exactly once.
package prefix

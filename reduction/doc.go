// Package reduction computes statistics over the offsets a selection mask
// picks out of paged float64 columns.
//
// A Procedure is fed one (key, mask) pair at a time and accumulates into a
// Context. Contexts combine contributions with an associative operator, so
// the partial results of independent partitions merge with the same
// operator:
//
//	p := reduction.NewSumProduct(prices, quantities)
//	for key, mask := range selection {
//		if err := p.Accept(key, mask); err != nil {
//			return err
//		}
//	}
//	total, err := p.Result()
//
// Masks are walked according to their representation. Run containers are
// summed interval by interval with four partial sums, fully selected pages
// of Dense containers are summed in bulk and everything else is visited
// offset by offset. Pages a column does not allocate read as zero.
package reduction

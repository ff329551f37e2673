// Package splitmap provides a compressed bitmap index for uint32 values
// together with a parallel circuit evaluator and reductions over numeric
// columns.
//
// # Layout
//
// A value splits into a 16-bit key and a 16-bit offset. Each present key
// owns a container that stores its offsets as a sorted array, a 65536-bit
// bitmap or a list of runs, whichever is smallest. Keys are stored
// permuted (bit reversal by default) in a prefix index so that neighbouring
// keys land in different partitions of an Executor.
//
// # Building
//
//	b := splitmap.NewQueryContextBuilder[string, string]()
//
//	w := b.Writer()
//	for _, row := range matchingRows { // ascending
//		_ = w.Add(row)
//	}
//	red, _ := w.Finish()
//
//	mw := b.MetricWriter()
//	for _, row := range rows { // ascending
//		_ = mw.Add(row.ID, row.Price)
//	}
//	price, _ := mw.Finish()
//
//	qc, _ := b.AddFilter("red", red).AddMetric("price", price).Build()
//
// # Evaluating
//
// A Circuit sees the containers of one key across all inputs and returns the
// container to keep:
//
//	exec := splitmap.NewExecutor()
//	sel, _ := splitmap.EvaluateIfKeysIntersect(ctx, exec, qc,
//		func(s *splitmap.Slice[*container.Container]) (*container.Container, bool) {
//			return s.Get(0).And(s.Get(1)), true
//		}, "red", "large")
//
// # Reducing
//
//	price, _ := qc.Metric("price")
//	total, _ := exec.Sum(ctx, sel, price)
//
// Custom statistics implement reduction.Procedure and run through Reduce.
//
// # Concurrency
//
// Writers are single-threaded. Everything they produce is immutable. An
// Executor splits the key space into disjoint partitions and works on them
// with up to WithPartitions goroutines; no locks are taken on the hot path.
package splitmap

package splitmap

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/internal/simd"
	"github.com/hupe1980/splitmap/prefix"
)

// Grouping selects the keys an evaluation visits.
type Grouping uint8

const (
	// GroupUnion visits every key present in at least one input.
	GroupUnion Grouping = iota
	// GroupIntersection visits only keys present in every input.
	GroupIntersection
)

func (g Grouping) String() string {
	if g == GroupIntersection {
		return "intersection"
	}
	return "union"
}

// Executor evaluates circuits and reductions in parallel over disjoint key
// partitions. An Executor is stateless between calls and safe for
// concurrent use.
type Executor struct {
	opts   options
	logger *Logger
}

// NewExecutor returns an executor configured by optFns.
func NewExecutor(optFns ...Option) *Executor {
	o := applyOptions(optFns)
	e := &Executor{
		opts:   o,
		logger: o.logger.WithPartitions(o.partitions),
	}
	e.logger.Debug("executor created",
		"balanced", o.balanced,
		"simd", simd.Detected(),
	)
	return e
}

// Partitions returns the number of partitions work is split into.
func (e *Executor) Partitions() int { return e.opts.partitions }

// plan splits the key space for inputs. Balanced plans follow the keys of
// the largest input.
func plan[V any](e *Executor, inputs []*prefix.Index[V]) []prefix.Partition[V] {
	if len(inputs) == 0 {
		return prefix.New[V]().UniformPartitions(e.opts.partitions)
	}
	driver := inputs[0]
	if !e.opts.balanced {
		return driver.UniformPartitions(e.opts.partitions)
	}
	for _, in := range inputs[1:] {
		if in.Len() > driver.Len() {
			driver = in
		}
	}
	return driver.BalancedPartitions(e.opts.partitions, nil)
}

// run executes task once per partition, at most Partitions at a time.
func (e *Executor) run(n int, task func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(e.opts.partitions)
	for i := range n {
		g.Go(func() error { return task(i) })
	}
	return g.Wait()
}

// EvaluateIndex applies circuit to every key selected by group and stores
// each result it accepts. A circuit returning false drops the key. Inputs
// lacking a key read as missing in the Slice.
//
// Partitions are evaluated concurrently, so circuit must be safe to call
// from several goroutines. A panicking circuit aborts the evaluation with
// *ErrCircuitPanic.
func EvaluateIndex[V, R any](
	ctx context.Context,
	e *Executor,
	group Grouping,
	missing V,
	circuit func(*Slice[V]) (R, bool),
	inputs ...*prefix.Index[V],
) (*prefix.Index[R], error) {
	return evaluateIndex(ctx, e, group, missing, circuit, inputs, binding{})
}

// binding carries what an evaluation knows about its inputs beyond their
// indices: filter identifiers for Slice.Lookup and the permutation that
// turns stored keys back into caller keys.
type binding struct {
	ids    map[any]int
	invert func(uint16) uint16
}

func (b binding) key(stored uint16) uint16 {
	if b.invert == nil {
		return stored
	}
	return b.invert(stored)
}

// evaluateIndex is EvaluateIndex with an input binding.
func evaluateIndex[V, R any](
	ctx context.Context,
	e *Executor,
	group Grouping,
	missing V,
	circuit func(*Slice[V]) (R, bool),
	inputs []*prefix.Index[V],
	bind binding,
) (*prefix.Index[R], error) {
	start := time.Now()
	out, err := evaluate(e, group, missing, circuit, inputs, bind)
	keys := 0
	if err == nil {
		keys = out.Len()
	}
	e.logger.LogEvaluate(ctx, group.String(), len(inputs), keys, time.Since(start), err)
	e.opts.metricsCollector.RecordEvaluate(len(inputs), keys, time.Since(start), err)
	return out, err
}

func evaluate[V, R any](e *Executor, group Grouping, missing V, circuit func(*Slice[V]) (R, bool), inputs []*prefix.Index[V], bind binding) (*prefix.Index[R], error) {
	out := prefix.New[R]()
	if len(inputs) == 0 {
		return out, nil
	}
	parts := plan(e, inputs)
	outParts := prefix.Align(out, parts)
	err := e.run(len(parts), func(i int) error {
		return evaluatePartition(parts[i], outParts[i], group, missing, circuit, inputs, bind)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func evaluatePartition[V, R any](
	part prefix.Partition[V],
	out prefix.Partition[R],
	group Grouping,
	missing V,
	circuit func(*Slice[V]) (R, bool),
	inputs []*prefix.Index[V],
	bind binding,
) (err error) {
	slice := NewSlice(len(inputs), missing)
	slice.ids = bind.ids
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCircuitPanic{Partition: part.ID(), Key: bind.key(slice.Key()), StoredKey: slice.Key(), Value: r}
		}
	}()

	acc, op := uint64(0), or
	if group == GroupIntersection {
		acc, op = ^uint64(0), and
	}

	for w := part.Start(); w < part.End(); w++ {
		word := acc
		for _, in := range inputs {
			word = in.ComputePresenceWord(w, word, op)
		}
		if word == 0 {
			continue
		}

		var chunk *[prefix.ChunkSize]R
		var mask uint64
		for rest := word; rest != 0; rest &= rest - 1 {
			bit := bits.TrailingZeros64(rest)
			slice.reset(uint16(w<<6 | bit))
			for i, in := range inputs {
				if in.ReadPresenceWord(w)&(1<<bit) != 0 {
					slice.set(i, in.Chunk(w)[bit])
				}
			}
			r, ok := circuit(slice)
			if !ok {
				continue
			}
			if chunk == nil {
				chunk = new([prefix.ChunkSize]R)
			}
			chunk[bit] = r
			mask |= 1 << bit
		}
		if mask != 0 {
			out.TransferChunk(w, mask, chunk)
		}
	}
	return nil
}

func or(acc, word uint64) uint64  { return acc | word }
func and(acc, word uint64) uint64 { return acc & word }

// Circuit combines the containers of one key. Inputs lacking the key read
// as empty containers. Returning false drops the key from the result;
// returning an empty container keeps the key present.
type Circuit func(s *Slice[*container.Container]) (*container.Container, bool)

// repaired wraps circuit so stored containers always have an exact
// cardinality.
func (c Circuit) repaired() func(*Slice[*container.Container]) (*container.Container, bool) {
	return func(s *Slice[*container.Container]) (*container.Container, bool) {
		out, ok := c(s)
		if !ok {
			return nil, false
		}
		if out == nil {
			return container.Empty(), true
		}
		return out.Repair(), true
	}
}

// EvaluateMaps applies circuit to every key present in at least one of
// maps.
func (e *Executor) EvaluateMaps(ctx context.Context, circuit Circuit, maps ...*SplitMap) (*SplitMap, error) {
	return e.evaluateMaps(ctx, GroupUnion, circuit, maps, nil)
}

// EvaluateMapsIfKeysIntersect applies circuit to every key present in all
// of maps.
func (e *Executor) EvaluateMapsIfKeysIntersect(ctx context.Context, circuit Circuit, maps ...*SplitMap) (*SplitMap, error) {
	return e.evaluateMaps(ctx, GroupIntersection, circuit, maps, nil)
}

func (e *Executor) evaluateMaps(ctx context.Context, group Grouping, circuit Circuit, maps []*SplitMap, ids map[any]int) (*SplitMap, error) {
	if len(maps) == 0 {
		return New(nil, e.opts.permutation), nil
	}
	perm := maps[0].Permutation()
	inputs := make([]*prefix.Index[*container.Container], len(maps))
	for i, sm := range maps {
		if !samePermutation(sm.Permutation(), perm) {
			return nil, fmt.Errorf("%w: input %d uses %s, input 0 uses %s",
				ErrPermutationMismatch, i, sm.Permutation().Name(), perm.Name())
		}
		inputs[i] = sm.Index()
	}
	bind := binding{ids: ids, invert: perm.Invert}
	out, err := evaluateIndex(ctx, e, group, container.Empty(), circuit.repaired(), inputs, bind)
	if err != nil {
		return nil, err
	}
	return New(out, perm), nil
}

// Evaluate resolves filters in qc and applies circuit to every key present
// in at least one of them. The circuit can address inputs by position in
// filters or by identifier with Slice.Lookup.
func Evaluate[F, M comparable](ctx context.Context, e *Executor, qc *QueryContext[F, M], circuit Circuit, filters ...F) (*SplitMap, error) {
	maps, ids, err := resolve(qc, filters)
	if err != nil {
		return nil, err
	}
	return e.evaluateMaps(ctx, GroupUnion, circuit, maps, ids)
}

// EvaluateIfKeysIntersect resolves filters in qc and applies circuit to
// every key present in all of them.
func EvaluateIfKeysIntersect[F, M comparable](ctx context.Context, e *Executor, qc *QueryContext[F, M], circuit Circuit, filters ...F) (*SplitMap, error) {
	maps, ids, err := resolve(qc, filters)
	if err != nil {
		return nil, err
	}
	return e.evaluateMaps(ctx, GroupIntersection, circuit, maps, ids)
}

// resolve looks up filters in qc. A filter named twice is found by Lookup
// at its first position.
func resolve[F, M comparable](qc *QueryContext[F, M], filters []F) ([]*SplitMap, map[any]int, error) {
	maps := make([]*SplitMap, len(filters))
	ids := make(map[any]int, len(filters))
	for i, id := range filters {
		sm, err := qc.Filter(id)
		if err != nil {
			return nil, nil, err
		}
		maps[i] = sm
		if _, ok := ids[id]; !ok {
			ids[id] = i
		}
	}
	return maps, ids, nil
}

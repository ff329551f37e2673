package splitmap

import (
	"context"

	"github.com/hupe1980/splitmap/container"
)

// Set algebra over whole SplitMaps. A key visited by an operation stays
// present in the result even when its container ends up empty; use Compact
// to drop such keys.

// Or returns the union of maps.
func (e *Executor) Or(ctx context.Context, maps ...*SplitMap) (*SplitMap, error) {
	return e.EvaluateMaps(ctx, func(s *Slice[*container.Container]) (*container.Container, bool) {
		return container.Union(s.Present()...), true
	}, maps...)
}

// And returns the intersection of maps. Only keys present in every map are
// visited.
func (e *Executor) And(ctx context.Context, maps ...*SplitMap) (*SplitMap, error) {
	return e.EvaluateMapsIfKeysIntersect(ctx, func(s *Slice[*container.Container]) (*container.Container, bool) {
		return container.Intersection(s.Present()...), true
	}, maps...)
}

// Xor returns the values present in an odd number of maps.
func (e *Executor) Xor(ctx context.Context, maps ...*SplitMap) (*SplitMap, error) {
	return e.EvaluateMaps(ctx, func(s *Slice[*container.Container]) (*container.Container, bool) {
		return container.SymmetricDifference(s.Present()...), true
	}, maps...)
}

// AndNot returns the values of a that are not in b. Keys of a stay present;
// keys only in b are dropped.
func (e *Executor) AndNot(ctx context.Context, a, b *SplitMap) (*SplitMap, error) {
	return e.EvaluateMaps(ctx, func(s *Slice[*container.Container]) (*container.Container, bool) {
		if !s.Has(0) {
			return nil, false
		}
		return s.Get(0).AndNot(s.Get(1)), true
	}, a, b)
}

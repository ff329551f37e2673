package splitmap

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/splitmap/container"
	"github.com/hupe1980/splitmap/permutation"
)

// FromRoaring builds a SplitMap holding the values of bm, with keys
// permuted by perm. A nil perm selects permutation.Default.
func FromRoaring(bm *roaring.Bitmap, perm permutation.Permutation) (*SplitMap, error) {
	w := NewWriter(WithPermutation(perm))
	it := bm.ManyIterator()
	buf := make([]uint32, 4096)
	for n := it.NextMany(buf); n > 0; n = it.NextMany(buf) {
		if err := w.AddMany(buf[:n]...); err != nil {
			return nil, err
		}
	}
	return w.Finish()
}

// ToRoaring returns the values of s as a roaring bitmap.
func (s *SplitMap) ToRoaring() *roaring.Bitmap {
	bm := roaring.New()
	buf := make([]uint32, 0, container.MaxCapacity)
	s.index.ForEach(func(key uint16, c *container.Container) bool {
		high := uint32(s.perm.Invert(key)) << 16
		buf = buf[:0]
		c.ForEach(func(offset uint16) bool {
			buf = append(buf, high|uint32(offset))
			return true
		})
		bm.AddMany(buf)
		return true
	})
	bm.RunOptimize()
	return bm
}

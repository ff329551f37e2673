package container

import (
	"slices"

	"github.com/hupe1980/splitmap/internal/simd"
)

func andDenseDense(a, b *Container) *Container {
	words := make([]uint64, BitmapWords)
	return fromWords(words, simd.AndCount(words, a.words, b.words))
}

func orDenseDense(a, b *Container) *Container {
	words := make([]uint64, BitmapWords)
	return fromWords(words, simd.OrCount(words, a.words, b.words))
}

func xorDenseDense(a, b *Container) *Container {
	words := make([]uint64, BitmapWords)
	return fromWords(words, simd.XorCount(words, a.words, b.words))
}

func andNotDenseDense(a, b *Container) *Container {
	words := make([]uint64, BitmapWords)
	return fromWords(words, simd.AndNotCount(words, a.words, b.words))
}

func andDenseRun(d, r *Container) *Container {
	if r.card.count <= SparseThreshold {
		out := make([]uint16, 0, r.card.count)
		for _, run := range r.runs {
			for v := int(run.Start); v < run.end(); v++ {
				if d.words[v>>6]&(1<<(uint(v)&63)) != 0 {
					out = append(out, uint16(v))
				}
			}
		}
		return fromArray(out)
	}
	words := make([]uint64, BitmapWords)
	for _, run := range r.runs {
		copyRange(words, d.words, int(run.Start), run.end())
	}
	return fromWords(words, popcount(words))
}

func orDenseRun(d, r *Container) *Container {
	words := slices.Clone(d.words)
	card := d.card.count
	for _, run := range r.runs {
		start, end := int(run.Start), run.end()
		card += (end - start) - rangeCount(words, start, end)
		setRange(words, start, end)
	}
	return fromWords(words, card)
}

func xorDenseRun(d, r *Container) *Container {
	words := slices.Clone(d.words)
	card := d.card.count
	for _, run := range r.runs {
		start, end := int(run.Start), run.end()
		set := rangeCount(words, start, end)
		card += (end - start) - 2*set
		flipRange(words, start, end)
	}
	return fromWords(words, card)
}

func andNotDenseRun(d, r *Container) *Container {
	words := slices.Clone(d.words)
	card := d.card.count
	for _, run := range r.runs {
		start, end := int(run.Start), run.end()
		card -= rangeCount(words, start, end)
		clearRange(words, start, end)
	}
	return fromWords(words, card)
}

func andNotRunDense(r, d *Container) *Container {
	words := r.bitmap()
	return fromWords(words, simd.AndNotCount(words, words, d.words))
}

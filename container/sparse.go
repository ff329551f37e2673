package container

import "slices"

// gallopFactor is the size ratio past which intersection switches from a
// linear merge to galloping through the larger array.
const gallopFactor = 64

func andSparseSparse(a, b *Container) *Container {
	x, y := a.array, b.array
	if len(x) > len(y) {
		x, y = y, x
	}
	if len(x) == 0 {
		return empty
	}
	out := make([]uint16, 0, len(x))
	if len(x)*gallopFactor < len(y) {
		pos := 0
		for _, v := range x {
			pos = advanceUntil(y, pos, v)
			if pos == len(y) {
				break
			}
			if y[pos] == v {
				out = append(out, v)
			}
		}
		return fromArray(out)
	}
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			i++
		case x[i] > y[j]:
			j++
		default:
			out = append(out, x[i])
			i++
			j++
		}
	}
	return fromArray(out)
}

func orSparseSparse(a, b *Container) *Container {
	x, y := a.array, b.array
	out := make([]uint16, 0, len(x)+len(y))
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			out = append(out, x[i])
			i++
		case x[i] > y[j]:
			out = append(out, y[j])
			j++
		default:
			out = append(out, x[i])
			i++
			j++
		}
	}
	out = append(out, x[i:]...)
	out = append(out, y[j:]...)
	return fromArray(out)
}

func xorSparseSparse(a, b *Container) *Container {
	x, y := a.array, b.array
	out := make([]uint16, 0, len(x)+len(y))
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			out = append(out, x[i])
			i++
		case x[i] > y[j]:
			out = append(out, y[j])
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, x[i:]...)
	out = append(out, y[j:]...)
	return fromArray(out)
}

func andNotSparseSparse(a, b *Container) *Container {
	x, y := a.array, b.array
	out := make([]uint16, 0, len(x))
	j := 0
	for _, v := range x {
		for j < len(y) && y[j] < v {
			j++
		}
		if j < len(y) && y[j] == v {
			continue
		}
		out = append(out, v)
	}
	return fromArray(out)
}

func andSparseDense(s, d *Container) *Container {
	out := make([]uint16, 0, len(s.array))
	for _, v := range s.array {
		if d.words[v>>6]&(1<<(v&63)) != 0 {
			out = append(out, v)
		}
	}
	return fromArray(out)
}

func orSparseDense(s, d *Container) *Container {
	words := slices.Clone(d.words)
	card := d.card.count
	for _, v := range s.array {
		w, bit := v>>6, uint64(1)<<(v&63)
		if words[w]&bit == 0 {
			words[w] |= bit
			card++
		}
	}
	return fromWords(words, card)
}

func xorSparseDense(s, d *Container) *Container {
	words := slices.Clone(d.words)
	card := d.card.count
	for _, v := range s.array {
		w, bit := v>>6, uint64(1)<<(v&63)
		if words[w]&bit == 0 {
			card++
		} else {
			card--
		}
		words[w] ^= bit
	}
	return fromWords(words, card)
}

func andNotSparseDense(s, d *Container) *Container {
	out := make([]uint16, 0, len(s.array))
	for _, v := range s.array {
		if d.words[v>>6]&(1<<(v&63)) == 0 {
			out = append(out, v)
		}
	}
	return fromArray(out)
}

func andNotDenseSparse(d, s *Container) *Container {
	words := slices.Clone(d.words)
	card := d.card.count
	for _, v := range s.array {
		w, bit := v>>6, uint64(1)<<(v&63)
		if words[w]&bit != 0 {
			words[w] &^= bit
			card--
		}
	}
	return fromWords(words, card)
}

func andSparseRun(s, r *Container) *Container {
	out := make([]uint16, 0, len(s.array))
	k := 0
	for _, v := range s.array {
		for k < len(r.runs) && r.runs[k].end() <= int(v) {
			k++
		}
		if k == len(r.runs) {
			break
		}
		if r.runs[k].Start <= v {
			out = append(out, v)
		}
	}
	return fromArray(out)
}

// orSparseRun merges the offsets of s into the runs of r as unit intervals.
func orSparseRun(s, r *Container) *Container {
	out := make([]Run, 0, len(r.runs)+len(s.array))
	i, k := 0, 0
	for i < len(s.array) || k < len(r.runs) {
		if k == len(r.runs) || (i < len(s.array) && int(s.array[i]) < int(r.runs[k].Start)) {
			v := int(s.array[i])
			out = appendInterval(out, v, v+1)
			i++
			continue
		}
		out = appendInterval(out, int(r.runs[k].Start), r.runs[k].end())
		k++
	}
	return fromRuns(out)
}

func xorSparseRun(s, r *Container) *Container {
	return fromRuns(sweep(runsOfArray(s.array), r.runs, xorKeep))
}

func andNotSparseRun(s, r *Container) *Container {
	out := make([]uint16, 0, len(s.array))
	k := 0
	for _, v := range s.array {
		for k < len(r.runs) && r.runs[k].end() <= int(v) {
			k++
		}
		if k < len(r.runs) && r.runs[k].Start <= v {
			continue
		}
		out = append(out, v)
	}
	return fromArray(out)
}

// andNotRunSparse punches the offsets of s out of the runs of r.
func andNotRunSparse(r, s *Container) *Container {
	out := make([]Run, 0, len(r.runs)+len(s.array))
	i := 0
	for _, run := range r.runs {
		start, end := int(run.Start), run.end()
		for i < len(s.array) && int(s.array[i]) < start {
			i++
		}
		for i < len(s.array) && int(s.array[i]) < end {
			v := int(s.array[i])
			out = appendInterval(out, start, v)
			start = v + 1
			i++
		}
		out = appendInterval(out, start, end)
	}
	return fromRuns(out)
}

// advanceUntil returns the index of the first element of arr at or after pos
// that is >= target, or len(arr).
func advanceUntil(arr []uint16, pos int, target uint16) int {
	lower := pos
	if lower >= len(arr) || arr[lower] >= target {
		return lower
	}
	span := 1
	for lower+span < len(arr) && arr[lower+span] < target {
		span <<= 1
	}
	upper := min(lower+span, len(arr)-1)
	if arr[upper] < target {
		return len(arr)
	}
	lower += span >> 1
	i, _ := slices.BinarySearch(arr[lower:upper+1], target)
	return lower + i
}

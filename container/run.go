package container

func andKeep(inA, inB bool) bool    { return inA && inB }
func orKeep(inA, inB bool) bool     { return inA || inB }
func xorKeep(inA, inB bool) bool    { return inA != inB }
func andNotKeep(inA, inB bool) bool { return inA && !inB }

func andRunRun(a, b *Container) *Container    { return fromRuns(sweep(a.runs, b.runs, andKeep)) }
func orRunRun(a, b *Container) *Container     { return fromRuns(sweep(a.runs, b.runs, orKeep)) }
func xorRunRun(a, b *Container) *Container    { return fromRuns(sweep(a.runs, b.runs, xorKeep)) }
func andNotRunRun(a, b *Container) *Container { return fromRuns(sweep(a.runs, b.runs, andNotKeep)) }

// sweep walks the boundaries of two run lists and emits every interval whose
// membership satisfies keep. The output is ascending and coalesced.
func sweep(a, b []Run, keep func(inA, inB bool) bool) []Run {
	out := make([]Run, 0, len(a)+len(b))
	i, j := 0, 0
	for pos := 0; pos < MaxCapacity; {
		for i < len(a) && a[i].end() <= pos {
			i++
		}
		for j < len(b) && b[j].end() <= pos {
			j++
		}
		if i == len(a) && j == len(b) {
			break
		}
		inA := i < len(a) && int(a[i].Start) <= pos
		inB := j < len(b) && int(b[j].Start) <= pos
		next := min(boundary(a, i, inA), boundary(b, j, inB))
		if keep(inA, inB) {
			out = appendInterval(out, pos, next)
		}
		pos = next
	}
	return out
}

// boundary returns the next position at which membership in runs[i:] changes.
func boundary(runs []Run, i int, in bool) int {
	switch {
	case i == len(runs):
		return MaxCapacity
	case in:
		return runs[i].end()
	default:
		return int(runs[i].Start)
	}
}

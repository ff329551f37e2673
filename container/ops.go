package container

// pairFunc computes a binary operation for one pair of representations.
type pairFunc func(a, b *Container) *Container

// Dispatch tables indexed by [kind of receiver][kind of argument].
// Commutative operators reuse one function for both orders via swap.
var (
	andTable    [numKinds][numKinds]pairFunc
	orTable     [numKinds][numKinds]pairFunc
	xorTable    [numKinds][numKinds]pairFunc
	andNotTable [numKinds][numKinds]pairFunc
)

func swap(f pairFunc) pairFunc {
	return func(a, b *Container) *Container { return f(b, a) }
}

func init() {
	andTable = [numKinds][numKinds]pairFunc{
		Sparse:    {Sparse: andSparseSparse, Dense: andSparseDense, RunLength: andSparseRun},
		Dense:     {Sparse: swap(andSparseDense), Dense: andDenseDense, RunLength: andDenseRun},
		RunLength: {Sparse: swap(andSparseRun), Dense: swap(andDenseRun), RunLength: andRunRun},
	}
	orTable = [numKinds][numKinds]pairFunc{
		Sparse:    {Sparse: orSparseSparse, Dense: orSparseDense, RunLength: orSparseRun},
		Dense:     {Sparse: swap(orSparseDense), Dense: orDenseDense, RunLength: orDenseRun},
		RunLength: {Sparse: swap(orSparseRun), Dense: swap(orDenseRun), RunLength: orRunRun},
	}
	xorTable = [numKinds][numKinds]pairFunc{
		Sparse:    {Sparse: xorSparseSparse, Dense: xorSparseDense, RunLength: xorSparseRun},
		Dense:     {Sparse: swap(xorSparseDense), Dense: xorDenseDense, RunLength: xorDenseRun},
		RunLength: {Sparse: swap(xorSparseRun), Dense: swap(xorDenseRun), RunLength: xorRunRun},
	}
	andNotTable = [numKinds][numKinds]pairFunc{
		Sparse:    {Sparse: andNotSparseSparse, Dense: andNotSparseDense, RunLength: andNotSparseRun},
		Dense:     {Sparse: andNotDenseSparse, Dense: andNotDenseDense, RunLength: andNotDenseRun},
		RunLength: {Sparse: andNotRunSparse, Dense: andNotRunDense, RunLength: andNotRunRun},
	}
}

// And returns the intersection of c and other.
func (c *Container) And(other *Container) *Container {
	mustBeRepaired(c, other)
	return andTable[c.kind][other.kind](c, other)
}

// Or returns the union of c and other.
func (c *Container) Or(other *Container) *Container {
	mustBeRepaired(c, other)
	return orTable[c.kind][other.kind](c, other)
}

// Xor returns the symmetric difference of c and other.
func (c *Container) Xor(other *Container) *Container {
	mustBeRepaired(c, other)
	return xorTable[c.kind][other.kind](c, other)
}

// AndNot returns the offsets of c that are not in other.
func (c *Container) AndNot(other *Container) *Container {
	mustBeRepaired(c, other)
	return andNotTable[c.kind][other.kind](c, other)
}

// LazyOr returns the union of c and other as a Dense container whose
// cardinality is Dirty. Either operand may itself be Dirty.
func (c *Container) LazyOr(other *Container) *Container {
	words := c.bitmap()
	orInto(words, other)
	return &Container{kind: Dense, card: dirtyCardinality, words: words}
}

// Repair computes the exact cardinality of a Dirty container and returns it
// in minimal form. Repaired containers are returned unchanged.
func (c *Container) Repair() *Container {
	if !c.card.dirty {
		return c
	}
	return fromWords(append([]uint64(nil), c.words...), popcount(c.words))
}

// Union returns the union of all containers using one lazy pass and a single
// repair.
func Union(cs ...*Container) *Container {
	switch len(cs) {
	case 0:
		return empty
	case 1:
		return cs[0].Repair()
	}
	words := make([]uint64, BitmapWords)
	for _, c := range cs {
		orInto(words, c)
	}
	return fromWords(words, popcount(words))
}

// Intersection returns the intersection of all containers. When every
// operand is Dense they are combined in place on a single buffer.
func Intersection(cs ...*Container) *Container {
	switch len(cs) {
	case 0:
		return empty
	case 1:
		return cs[0].Repair()
	}
	if !allDense(cs) {
		out := cs[0]
		for _, c := range cs[1:] {
			if out.IsEmpty() {
				break
			}
			out = out.And(c)
		}
		return out
	}
	words := append([]uint64(nil), cs[0].words...)
	for _, c := range cs[1:] {
		andWords(words, c.words)
	}
	return fromWords(words, popcount(words))
}

// SymmetricDifference returns the offsets present in an odd number of
// containers.
func SymmetricDifference(cs ...*Container) *Container {
	switch len(cs) {
	case 0:
		return empty
	case 1:
		return cs[0].Repair()
	}
	if !allDense(cs) {
		out := cs[0]
		for _, c := range cs[1:] {
			out = out.Xor(c)
		}
		return out
	}
	words := append([]uint64(nil), cs[0].words...)
	for _, c := range cs[1:] {
		xorWords(words, c.words)
	}
	return fromWords(words, popcount(words))
}

func allDense(cs []*Container) bool {
	for _, c := range cs {
		if c.kind != Dense {
			return false
		}
	}
	return true
}

// Intersects reports whether c and other share an offset.
func (c *Container) Intersects(other *Container) bool {
	if c.kind == Dense && other.kind == Dense {
		return intersectsWords(c.words, other.words)
	}
	small, large := c, other
	if small.kind == Dense {
		small, large = large, small
	}
	it := small.Iterator()
	for it.HasNext() {
		if large.Contains(it.Next()) {
			return true
		}
	}
	return false
}

// IsSubsetOf reports whether every offset of c is in other.
func (c *Container) IsSubsetOf(other *Container) bool {
	mustBeRepaired(c, other)
	if c.card.count > other.card.count {
		return false
	}
	if c.kind == Dense && other.kind == Dense {
		return intersectCount(c.words, other.words) == c.card.count
	}
	if c.kind == RunLength {
		for _, r := range c.runs {
			if !other.ContainsRange(int(r.Start), r.end()) {
				return false
			}
		}
		return true
	}
	it := c.Iterator()
	for it.HasNext() {
		if !other.Contains(it.Next()) {
			return false
		}
	}
	return true
}

// Not returns c with every offset in [start, end) flipped.
func (c *Container) Not(start, end int) *Container {
	checkRange(start, end)
	if start == end {
		return c
	}
	return c.Xor(FromRange(start, end))
}

// Limit returns the container of the first n offsets of c.
func (c *Container) Limit(n int) *Container {
	c.mustBeRepaired()
	if n >= c.card.count {
		return c
	}
	if n <= 0 {
		return empty
	}
	arr := make([]uint16, 0, n)
	c.ForEach(func(v uint16) bool {
		arr = append(arr, v)
		return len(arr) < n
	})
	return fromArray(arr)
}

func mustBeRepaired(a, b *Container) {
	a.mustBeRepaired()
	b.mustBeRepaired()
}

// orInto sets every offset of c in words.
func orInto(words []uint64, c *Container) {
	switch c.kind {
	case Sparse:
		for _, v := range c.array {
			words[v>>6] |= 1 << (v & 63)
		}
	case Dense:
		orWords(words, c.words)
	default:
		for _, r := range c.runs {
			setRange(words, int(r.Start), r.end())
		}
	}
}

package simd

import "math/bits"

// Eight-word kernels, selected when the CPU reports a vector ISA. Operands
// are resliced to fixed windows and popcounts go to eight accumulators.

func andCount8(dst, a, b []uint64) int {
	n := len(dst)
	a, b = a[:n], b[:n]
	var c0, c1, c2, c3, c4, c5, c6, c7 int
	i := 0
	for ; i+8 <= n; i += 8 {
		d, x, y := dst[i : i+8 : i+8], a[i : i+8 : i+8], b[i : i+8 : i+8]
		d[0] = x[0] & y[0]
		d[1] = x[1] & y[1]
		d[2] = x[2] & y[2]
		d[3] = x[3] & y[3]
		d[4] = x[4] & y[4]
		d[5] = x[5] & y[5]
		d[6] = x[6] & y[6]
		d[7] = x[7] & y[7]
		c0 += bits.OnesCount64(d[0])
		c1 += bits.OnesCount64(d[1])
		c2 += bits.OnesCount64(d[2])
		c3 += bits.OnesCount64(d[3])
		c4 += bits.OnesCount64(d[4])
		c5 += bits.OnesCount64(d[5])
		c6 += bits.OnesCount64(d[6])
		c7 += bits.OnesCount64(d[7])
	}
	for ; i < n; i++ {
		dst[i] = a[i] & b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3 + c4 + c5 + c6 + c7
}

func orCount8(dst, a, b []uint64) int {
	n := len(dst)
	a, b = a[:n], b[:n]
	var c0, c1, c2, c3, c4, c5, c6, c7 int
	i := 0
	for ; i+8 <= n; i += 8 {
		d, x, y := dst[i : i+8 : i+8], a[i : i+8 : i+8], b[i : i+8 : i+8]
		d[0] = x[0] | y[0]
		d[1] = x[1] | y[1]
		d[2] = x[2] | y[2]
		d[3] = x[3] | y[3]
		d[4] = x[4] | y[4]
		d[5] = x[5] | y[5]
		d[6] = x[6] | y[6]
		d[7] = x[7] | y[7]
		c0 += bits.OnesCount64(d[0])
		c1 += bits.OnesCount64(d[1])
		c2 += bits.OnesCount64(d[2])
		c3 += bits.OnesCount64(d[3])
		c4 += bits.OnesCount64(d[4])
		c5 += bits.OnesCount64(d[5])
		c6 += bits.OnesCount64(d[6])
		c7 += bits.OnesCount64(d[7])
	}
	for ; i < n; i++ {
		dst[i] = a[i] | b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3 + c4 + c5 + c6 + c7
}

func xorCount8(dst, a, b []uint64) int {
	n := len(dst)
	a, b = a[:n], b[:n]
	var c0, c1, c2, c3, c4, c5, c6, c7 int
	i := 0
	for ; i+8 <= n; i += 8 {
		d, x, y := dst[i : i+8 : i+8], a[i : i+8 : i+8], b[i : i+8 : i+8]
		d[0] = x[0] ^ y[0]
		d[1] = x[1] ^ y[1]
		d[2] = x[2] ^ y[2]
		d[3] = x[3] ^ y[3]
		d[4] = x[4] ^ y[4]
		d[5] = x[5] ^ y[5]
		d[6] = x[6] ^ y[6]
		d[7] = x[7] ^ y[7]
		c0 += bits.OnesCount64(d[0])
		c1 += bits.OnesCount64(d[1])
		c2 += bits.OnesCount64(d[2])
		c3 += bits.OnesCount64(d[3])
		c4 += bits.OnesCount64(d[4])
		c5 += bits.OnesCount64(d[5])
		c6 += bits.OnesCount64(d[6])
		c7 += bits.OnesCount64(d[7])
	}
	for ; i < n; i++ {
		dst[i] = a[i] ^ b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3 + c4 + c5 + c6 + c7
}

func andNotCount8(dst, a, b []uint64) int {
	n := len(dst)
	a, b = a[:n], b[:n]
	var c0, c1, c2, c3, c4, c5, c6, c7 int
	i := 0
	for ; i+8 <= n; i += 8 {
		d, x, y := dst[i : i+8 : i+8], a[i : i+8 : i+8], b[i : i+8 : i+8]
		d[0] = x[0] &^ y[0]
		d[1] = x[1] &^ y[1]
		d[2] = x[2] &^ y[2]
		d[3] = x[3] &^ y[3]
		d[4] = x[4] &^ y[4]
		d[5] = x[5] &^ y[5]
		d[6] = x[6] &^ y[6]
		d[7] = x[7] &^ y[7]
		c0 += bits.OnesCount64(d[0])
		c1 += bits.OnesCount64(d[1])
		c2 += bits.OnesCount64(d[2])
		c3 += bits.OnesCount64(d[3])
		c4 += bits.OnesCount64(d[4])
		c5 += bits.OnesCount64(d[5])
		c6 += bits.OnesCount64(d[6])
		c7 += bits.OnesCount64(d[7])
	}
	for ; i < n; i++ {
		dst[i] = a[i] &^ b[i]
		c0 += bits.OnesCount64(dst[i])
	}
	return c0 + c1 + c2 + c3 + c4 + c5 + c6 + c7
}

func popcount8(words []uint64) int {
	var c0, c1, c2, c3, c4, c5, c6, c7 int
	i := 0
	for ; i+8 <= len(words); i += 8 {
		w := words[i : i+8 : i+8]
		c0 += bits.OnesCount64(w[0])
		c1 += bits.OnesCount64(w[1])
		c2 += bits.OnesCount64(w[2])
		c3 += bits.OnesCount64(w[3])
		c4 += bits.OnesCount64(w[4])
		c5 += bits.OnesCount64(w[5])
		c6 += bits.OnesCount64(w[6])
		c7 += bits.OnesCount64(w[7])
	}
	for ; i < len(words); i++ {
		c0 += bits.OnesCount64(words[i])
	}
	return c0 + c1 + c2 + c3 + c4 + c5 + c6 + c7
}

func intersectCount8(a, b []uint64) int {
	n := min(len(a), len(b))
	a, b = a[:n], b[:n]
	var c0, c1, c2, c3, c4, c5, c6, c7 int
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := a[i : i+8 : i+8], b[i : i+8 : i+8]
		c0 += bits.OnesCount64(x[0] & y[0])
		c1 += bits.OnesCount64(x[1] & y[1])
		c2 += bits.OnesCount64(x[2] & y[2])
		c3 += bits.OnesCount64(x[3] & y[3])
		c4 += bits.OnesCount64(x[4] & y[4])
		c5 += bits.OnesCount64(x[5] & y[5])
		c6 += bits.OnesCount64(x[6] & y[6])
		c7 += bits.OnesCount64(x[7] & y[7])
	}
	for ; i < n; i++ {
		c0 += bits.OnesCount64(a[i] & b[i])
	}
	return c0 + c1 + c2 + c3 + c4 + c5 + c6 + c7
}

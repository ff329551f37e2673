//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func init() {
	caps.POPCNT = cpu.X86.HasPOPCNT
	caps.AVX2 = cpu.X86.HasAVX2 && cpu.X86.HasFMA
	caps.AVX512 = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW
	initCapabilities()
}

//go:build arm64

package simd

import "golang.org/x/sys/cpu"

func init() {
	// CNT is part of the base ARMv8 ISA.
	caps.POPCNT = true
	caps.ASIMD = cpu.ARM64.HasASIMD
	caps.SVE2 = cpu.ARM64.HasSVE2
	initCapabilities()
}

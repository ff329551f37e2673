package simd

import (
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// ISA identifies the instruction set the word kernels are tuned for.
type ISA uint8

const (
	// Generic is the portable Go implementation.
	Generic ISA = iota
	// NEON is ARM64 Advanced SIMD.
	NEON
	// SVE2 is ARM64 Scalable Vector Extension 2.
	SVE2
	// AVX2 is x86-64 AVX2.
	AVX2
	// AVX512 is x86-64 AVX-512 (F+BW).
	AVX512
)

var isaNames = [...]string{
	Generic: "generic",
	NEON:    "neon",
	SVE2:    "sve2",
	AVX2:    "avx2",
	AVX512:  "avx512",
}

// String returns the lower-case name of the ISA.
func (i ISA) String() string {
	if int(i) < len(isaNames) {
		return isaNames[i]
	}
	return "unknown"
}

// ParseISA parses a name produced by ISA.String.
func ParseISA(s string) (ISA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range isaNames {
		if name == s {
			return ISA(i), true
		}
	}
	return Generic, false
}

// Capabilities is a snapshot of the detected CPU features.
type Capabilities struct {
	ISA        ISA
	Overridden bool
	POPCNT     bool
	ASIMD      bool
	SVE2       bool
	AVX2       bool
	AVX512     bool
	// Kernels names the word kernel set installed for ISA.
	Kernels string
}

// LogValue implements slog.LogValuer so capabilities can be logged as a group.
func (c Capabilities) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("isa", c.ISA.String()),
		slog.Bool("overridden", c.Overridden),
		slog.Bool("popcnt", c.POPCNT),
		slog.String("kernels", c.Kernels),
		slog.String("arch", runtime.GOARCH),
	)
}

// caps is written once by the platform init and read-only afterwards.
var caps Capabilities

// initCapabilities selects the active ISA after the platform init has filled
// in the feature flags and installs its kernels. SPLITMAP_SIMD forces a
// specific ISA when available.
func initCapabilities() {
	caps.ISA = best()
	if override := os.Getenv("SPLITMAP_SIMD"); override != "" {
		if isa, ok := ParseISA(override); ok && available(isa) {
			caps.ISA = isa
			caps.Overridden = true
		}
	}
	caps.Kernels = useKernels(caps.ISA)
}

func available(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return caps.ASIMD
	case SVE2:
		return caps.SVE2
	case AVX2:
		return caps.AVX2
	case AVX512:
		return caps.AVX512
	default:
		return false
	}
}

func best() ISA {
	switch runtime.GOARCH {
	case "arm64":
		// Apple silicon emulates SVE2; NEON is faster there.
		if caps.SVE2 && runtime.GOOS != "darwin" {
			return SVE2
		}
		if caps.ASIMD {
			return NEON
		}
	case "amd64":
		if caps.AVX512 {
			return AVX512
		}
		if caps.AVX2 {
			return AVX2
		}
	}
	return Generic
}

// Detected returns the capability snapshot taken at package init.
func Detected() Capabilities {
	return caps
}

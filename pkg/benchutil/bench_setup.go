package benchutil

import (
	"os"
	"testing"
)

// SkipIfNoLongBench skips the benchmark if FSFIXTURE_LONG_BENCH is not set.
// Use this to gate long-running benchmarks that shouldn't run by default.
func SkipIfNoLongBench(b *testing.B) {
	if os.Getenv(LongBenchEnv) == "" {
		b.Skip("set " + LongBenchEnv + "=1 to run scaling benchmark")
	}
}

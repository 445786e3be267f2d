package benchutil

// Shared constants for benchmarks across packages.

// BenchmarkSeed is the default seed for reproducible benchmark data generation.
const BenchmarkSeed = 42

// LongBenchEnv gates long-running benchmarks.
const LongBenchEnv = "FSFIXTURE_LONG_BENCH"

// BenchmarkSizes are file counts for quick runs.
var BenchmarkSizes = []int{100, 1000, 5000}

// ScalingSizes are larger file counts for scaling runs.
// Used with FSFIXTURE_LONG_BENCH=1.
var ScalingSizes = []int{10000, 50000, 250000}

// Concurrencies are the permit capacities compared by generator benchmarks.
var Concurrencies = []int{1, 16, 200}

// Package harness drives the benchmarked interpreter binary through
// repeated runs per variant, parses its textual output, and enforces that
// every run measured the same deterministic workload.
package harness

import (
	"math"

	"github.com/orus-lang/loopbench/variant"
)

// RunResult holds the scalars parsed from one invocation's stdout. Trials,
// Iterations, and Checksum are nil when the run did not report them; a run
// with zero elapsed samples never produces a RunResult.
type RunResult struct {
	Samples    []float64
	Trials     *int64
	Iterations *int64
	Checksum   *int64
}

// VariantStats is the aggregated, validated result for one variant.
type VariantStats struct {
	Variant            variant.Variant
	AverageSeconds     float64
	StdevSeconds       float64
	IterationsPerTrial int64
	TrialsPerRun       int64
	SampleCount        int
	Checksum           int64
	Telemetry          map[string]int64
}

// IterationsPerSecond derives throughput from the iteration count and the
// average elapsed time.
func (s VariantStats) IterationsPerSecond() float64 {
	if s.AverageSeconds == 0 {
		return 0
	}

	return float64(s.IterationsPerTrial) / s.AverageSeconds
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}

	return sum / float64(len(samples))
}

// stdev is the sample standard deviation, 0 for fewer than two samples.
func stdev(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}

	avg := mean(samples)

	var sumSq float64
	for _, s := range samples {
		d := s - avg
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(samples)-1))
}

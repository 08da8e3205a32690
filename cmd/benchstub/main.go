// Benchstub is a stand-in for the interpreter binary: it runs a small
// deterministic loop workload and emits timing, iteration, and checksum
// lines in the format the harness parses, plus a loop-trace line on stderr
// when tracing is enabled. Useful for smoke-testing the harness without a
// built interpreter.
package main

import (
	"fmt"
	"os"
	"time"
)

const (
	trials     = 3
	iterations = 100000
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: benchstub <benchmark-source>")
		os.Exit(1)
	}

	// The source argument is accepted for invocation compatibility; the
	// stub always runs the same workload.
	fastPath := os.Getenv("ORUS_DISABLE_INC_TYPED_FASTPATH") == ""

	fmt.Println("benchstub: deterministic loop workload")
	fmt.Printf("trials: %d\n", trials)

	var checksum int64

	for t := 0; t < trials; t++ {
		start := time.Now()
		checksum = runTrial(fastPath)
		elapsed := time.Since(start).Seconds()

		fmt.Printf("elapsed: %.6f\n", elapsed)
	}

	fmt.Printf("iterations: %d\n", iterations)
	fmt.Printf("checksum: %d\n", checksum)

	if os.Getenv("ORUS_TRACE_TYPED_FALLBACKS") != "" {
		hits, misses := iterations, 0
		if !fastPath {
			hits, misses = 0, iterations
		}

		fmt.Fprintf(os.Stderr,
			"[loop-trace] typed_hit=%d typed_miss=%d inc_overflow_bailouts=0 inc_type_instability=0\n",
			hits, misses,
		)
	}
}

func runTrial(fastPath bool) int64 {
	var sum int64

	for i := 0; i < iterations; i++ {
		sum += int64(i)

		if !fastPath {
			// Simulate the boxed fallback being slower without changing
			// the checksum.
			for j := 0; j < 8; j++ {
				sum = boxedAdd(sum, 0)
			}
		}
	}

	return sum
}

//go:noinline
func boxedAdd(a, b int64) int64 {
	return a + b
}

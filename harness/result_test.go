package harness

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := mean([]float64{1.0, 2.0, 3.0}); got != 2.0 {
		t.Errorf("mean = %v, want 2.0", got)
	}
	if got := mean(nil); got != 0 {
		t.Errorf("mean of nothing = %v, want 0", got)
	}
}

func TestStdev(t *testing.T) {
	if got := stdev([]float64{5.0}); got != 0.0 {
		t.Errorf("stdev of single sample = %v, want 0", got)
	}
	if got := stdev(nil); got != 0.0 {
		t.Errorf("stdev of nothing = %v, want 0", got)
	}

	// Sample stdev of [1,2,3] is 1.
	got := stdev([]float64{1.0, 2.0, 3.0})
	if math.Abs(got-1.0) > 1e-12 {
		t.Errorf("stdev = %v, want 1.0", got)
	}
}

func TestIterationsPerSecond(t *testing.T) {
	s := VariantStats{IterationsPerTrial: 100, AverageSeconds: 0.5}
	if got := s.IterationsPerSecond(); got != 200.0 {
		t.Errorf("IterationsPerSecond = %v, want 200", got)
	}

	zero := VariantStats{IterationsPerTrial: 100}
	if got := zero.IterationsPerSecond(); got != 0 {
		t.Errorf("IterationsPerSecond with zero average = %v, want 0", got)
	}
}

package report

import (
	"fmt"

	"github.com/orus-lang/loopbench/harness"
)

// Comparison expresses one variant's average runtime relative to the
// baseline. Undefined marks a ratio that could not be computed because an
// average was zero or negative; such rows are reported, never silently
// divided.
type Comparison struct {
	Variant   string
	Baseline  string
	Ratio     float64
	Undefined bool
}

// String renders the comparison the way the summary prints it.
func (c Comparison) String() string {
	if c.Undefined {
		return fmt.Sprintf(
			"Speed ratio (%s vs %s): undefined (non-positive average)",
			c.Variant, c.Baseline,
		)
	}

	if c.Ratio >= 1.0 {
		return fmt.Sprintf(
			"Speed ratio (%s vs %s): %.3fx slower",
			c.Variant, c.Baseline, c.Ratio,
		)
	}

	return fmt.Sprintf(
		"Speed ratio (%s vs %s): %.3fx faster",
		c.Variant, c.Baseline, 1.0/c.Ratio,
	)
}

// Compare computes runtime ratios against the baseline variant. The
// baseline is the first variant named baselineName, or the first variant
// overall when no name matches. The baseline itself produces no row.
func Compare(stats []harness.VariantStats, baselineName string) []Comparison {
	if len(stats) == 0 {
		return nil
	}

	baseline := stats[0]

	for _, s := range stats {
		if s.Variant.Name == baselineName {
			baseline = s
			break
		}
	}

	comparisons := make([]Comparison, 0, len(stats)-1)

	for _, s := range stats {
		if s.Variant.Name == baseline.Variant.Name {
			continue
		}

		c := Comparison{
			Variant:  s.Variant.Name,
			Baseline: baseline.Variant.Name,
		}

		if baseline.AverageSeconds <= 0 || s.AverageSeconds <= 0 {
			c.Undefined = true
		} else {
			c.Ratio = s.AverageSeconds / baseline.AverageSeconds
		}

		comparisons = append(comparisons, c)
	}

	return comparisons
}

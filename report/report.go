// Package report formats aggregated benchmark results into comparison
// tables and a row-oriented CSV export with a fixed column schema.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/orus-lang/loopbench/harness"
)

// knownCounters are the telemetry columns the loop trace has always
// reported, kept first and in this order so exports diff cleanly across
// harness runs. Counters outside this list are appended in sorted order.
var knownCounters = []string{
	"typed_hit",
	"typed_miss",
	"inc_overflow_bailouts",
	"inc_type_instability",
}

// Generate writes the human-readable summary: a preamble describing the
// workload shape, a markdown table with one row per variant, and the speed
// ratios against the baseline.
func Generate(w io.Writer, stats []harness.VariantStats, baselineName string) error {
	if len(stats) == 0 {
		return fmt.Errorf("no results to report")
	}

	first := stats[0]

	runs := 0
	if first.TrialsPerRun > 0 {
		runs = first.SampleCount / int(first.TrialsPerRun)
	}

	fmt.Fprintln(w, "## Loop Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  iterations per trial: %d\n", first.IterationsPerTrial)
	fmt.Fprintf(w, "  trials per run:       %d\n", first.TrialsPerRun)
	fmt.Fprintf(w, "  harness runs:         %d\n", runs)
	fmt.Fprintln(w)

	counters := telemetryColumns(stats)

	header := append(
		[]string{"Variant", "Avg (s)", "Stdev (s)", "Iters/s"},
		counters...,
	)
	fmt.Fprintln(w, "| "+strings.Join(header, " | ")+" |")

	rule := make([]string, len(header))
	for i := range rule {
		rule[i] = strings.Repeat("-", len(header[i]))
	}
	fmt.Fprintln(w, "|-"+strings.Join(rule, "-|-")+"-|")

	for _, s := range stats {
		row := statRow(s, counters)
		fmt.Fprintln(w, "| "+strings.Join(row, " | ")+" |")
	}

	fmt.Fprintln(w)

	for _, c := range Compare(stats, baselineName) {
		fmt.Fprintln(w, c.String())
	}

	return nil
}

// WriteCSV writes the row-oriented export. The column order is fixed:
// variant, avg_seconds, stdev_seconds, iterations_per_second, then the
// telemetry counters in the same stable order the table uses.
func WriteCSV(w io.Writer, stats []harness.VariantStats) error {
	if len(stats) == 0 {
		return fmt.Errorf("no results to export")
	}

	counters := telemetryColumns(stats)

	writer := csv.NewWriter(w)

	header := append(
		[]string{"variant", "avg_seconds", "stdev_seconds", "iterations_per_second"},
		counters...,
	)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, s := range stats {
		if err := writer.Write(statRow(s, counters)); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", s.Variant.Name, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

func statRow(s harness.VariantStats, counters []string) []string {
	row := []string{
		s.Variant.Name,
		fmt.Sprintf("%.6f", s.AverageSeconds),
		fmt.Sprintf("%.6f", s.StdevSeconds),
		fmt.Sprintf("%.2f", s.IterationsPerSecond()),
	}

	for _, name := range counters {
		row = append(row, strconv.FormatInt(s.Telemetry[name], 10))
	}

	return row
}

// telemetryColumns returns the counter column order: the known counters
// first, then any additional names seen in the results, sorted.
func telemetryColumns(stats []harness.VariantStats) []string {
	known := make(map[string]bool, len(knownCounters))
	for _, name := range knownCounters {
		known[name] = true
	}

	extraSet := make(map[string]bool)

	for _, s := range stats {
		for name := range s.Telemetry {
			if !known[name] {
				extraSet[name] = true
			}
		}
	}

	extras := make([]string, 0, len(extraSet))
	for name := range extraSet {
		extras = append(extras, name)
	}

	sort.Strings(extras)

	return append(append([]string{}, knownCounters...), extras...)
}

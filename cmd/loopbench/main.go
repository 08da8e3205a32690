// Package main provides the CLI entry point for loopbench, a loop
// microbenchmark harness for the typed increment fast path.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/orus-lang/loopbench/harness"
	"github.com/orus-lang/loopbench/report"
	"github.com/orus-lang/loopbench/variant"
)

const defaultBenchSource = "tests/benchmarks/loop_fastpath_phase2.orus"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("harness failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "loopbench",
		Short: "Loop microbenchmark harness for the interpreter's typed fast paths",
		Long: `Loopbench runs the dedicated loop benchmark program under different
runtime configurations (variants), verifies every run computed the same
deterministic workload, and compares iteration throughput plus typed loop
telemetry across variants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		phase      string
		suitesFile string
		repoRoot   string
		binaryPath string
		benchPath  string
		runs       int
		csvPath    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the loop benchmark across the configured variants",
		Long: `Run every variant of the selected suite sequentially, each variant
consisting of repeated timing runs plus one telemetry run, then print a
comparison summary and optionally export CSV rows.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				logger = slog.New(slog.NewTextHandler(
					os.Stderr,
					&slog.HandlerOptions{Level: slog.LevelDebug},
				))
			}

			return runBenchmark(cmd.Context(), logger, benchConfig{
				phase:      phase,
				suitesFile: suitesFile,
				repoRoot:   repoRoot,
				binaryPath: binaryPath,
				benchPath:  benchPath,
				runs:       runs,
				csvPath:    csvPath,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&phase, "phase", "2",
		"Benchmark suite (phase) to execute")
	flags.StringVar(&suitesFile, "suites-file", "",
		"Path to a YAML file with additional variant suites")
	flags.StringVar(&repoRoot, "repo-root", ".",
		"Interpreter repository root, used to locate the default binary")
	flags.StringVar(&binaryPath, "binary", "",
		"Path to the built interpreter binary (default: orus or orus_debug under --repo-root)")
	flags.StringVar(&benchPath, "bench", defaultBenchSource,
		"Path to the loop benchmark source")
	flags.IntVar(&runs, "runs", 3,
		"Number of harness invocations per variant")
	flags.StringVar(&csvPath, "csv", "",
		"Optional path to write CSV results")
	flags.BoolVar(&verbose, "verbose", false,
		"Enable per-run debug logging")

	return cmd
}

type benchConfig struct {
	phase      string
	suitesFile string
	repoRoot   string
	binaryPath string
	benchPath  string
	runs       int
	csvPath    string
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg benchConfig,
) error {
	suite, err := resolveSuite(cfg.phase, cfg.suitesFile)
	if err != nil {
		return err
	}

	binary := harness.ResolveBinary(cfg.repoRoot, cfg.binaryPath)
	if err := harness.EnsurePrerequisites(binary, cfg.benchPath); err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("suite", suite.Name),
		slog.String("binary", binary),
		slog.String("bench", cfg.benchPath),
		slog.Int("runs", cfg.runs),
		slog.Int("variants", len(suite.Variants)),
	)

	runner := harness.NewRunner(binary, cfg.benchPath, logger)

	// Variants run strictly one after another so their timing samples never
	// contend for the CPU.
	stats := make([]harness.VariantStats, 0, len(suite.Variants))

	for _, v := range suite.Variants {
		vs, err := runner.CollectStats(ctx, v, cfg.runs)
		if err != nil {
			return fmt.Errorf("collect variant %q: %w", v.Name, err)
		}

		stats = append(stats, *vs)
	}

	if err := harness.VerifyComparable(stats); err != nil {
		return err
	}

	if err := report.Generate(os.Stdout, stats, suite.Baseline); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if cfg.csvPath != "" {
		if err := writeCSVFile(cfg.csvPath, stats); err != nil {
			return err
		}

		logger.InfoContext(ctx, "wrote CSV results",
			slog.String("path", cfg.csvPath),
		)
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

// resolveSuite picks the requested suite from the built-in registry,
// optionally extended (or overridden) by a user-provided suites file.
func resolveSuite(phase, suitesFile string) (variant.Suite, error) {
	suites := variant.BuiltinSuites()

	if suitesFile != "" {
		f, err := os.Open(suitesFile)
		if err != nil {
			return variant.Suite{}, fmt.Errorf("open suites file: %w", err)
		}
		defer f.Close()

		loaded, err := variant.LoadSuites(f)
		if err != nil {
			return variant.Suite{}, fmt.Errorf("load %s: %w", suitesFile, err)
		}

		for name, s := range loaded {
			suites[name] = s
		}
	}

	suite, ok := suites[phase]
	if !ok {
		return variant.Suite{}, fmt.Errorf(
			"no benchmark variants registered for phase %q", phase,
		)
	}

	return suite, nil
}

func writeCSVFile(path string, stats []harness.VariantStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}

	if err := report.WriteCSV(f, stats); err != nil {
		f.Close()

		return fmt.Errorf("write CSV: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close CSV file: %w", err)
	}

	return nil
}

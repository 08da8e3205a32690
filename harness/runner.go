package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/orus-lang/loopbench/variant"
)

// TraceEnvVar enables typed-fallback tracing in the interpreter. The
// orchestrator sets it only for the telemetry run.
const TraceEnvVar = "ORUS_TRACE_TYPED_FALLBACKS"

// Phase names where in a variant's collection lifecycle the runner is.
// Failures are reported against the phase they occurred in.
type Phase int

const (
	PhaseCollecting Phase = iota
	PhaseTelemetryRun
	PhaseAggregated
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "collecting"
	case PhaseTelemetryRun:
		return "telemetry run"
	case PhaseAggregated:
		return "aggregated"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExecResult is the captured outcome of one interpreter invocation.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ExecFunc invokes the benchmark binary on the given source with env merged
// onto the ambient environment, blocking until it exits. A non-zero exit is
// reported through ExecResult, not the error; the error is reserved for
// failures to launch at all.
type ExecFunc func(
	ctx context.Context, binary, source string, env map[string]string,
) (ExecResult, error)

// Runner orchestrates the benchmark runs for one harness invocation.
// Execution is strictly sequential: each run blocks to completion before
// the next starts, so timing samples are never contaminated by a sibling
// process.
type Runner struct {
	Binary      string
	BenchSource string
	Logger      *slog.Logger

	execute ExecFunc
}

// NewRunner creates a Runner that invokes binary on benchSource via os/exec.
func NewRunner(binary, benchSource string, logger *slog.Logger) *Runner {
	return &Runner{
		Binary:      binary,
		BenchSource: benchSource,
		Logger:      logger,
		execute:     executeCommand,
	}
}

// NewRunnerWithExec creates a Runner with a custom invocation function.
func NewRunnerWithExec(
	binary, benchSource string, logger *slog.Logger, execute ExecFunc,
) *Runner {
	return &Runner{
		Binary:      binary,
		BenchSource: benchSource,
		Logger:      logger,
		execute:     execute,
	}
}

// CollectStats runs the variant `repetitions` times plus one telemetry run
// and aggregates the pooled samples into VariantStats. Any non-zero exit,
// parse failure, or run-to-run inconsistency aborts the variant; nothing is
// retried.
func (r *Runner) CollectStats(
	ctx context.Context, v variant.Variant, repetitions int,
) (*VariantStats, error) {
	if repetitions < 1 {
		return nil, fmt.Errorf("repetitions must be positive, got %d", repetitions)
	}

	logger := r.Logger.With(slog.String("variant", v.Name))

	stats, err := r.collect(ctx, logger, v, repetitions)
	if err != nil {
		logger.Error("variant failed",
			slog.String("state", PhaseFailed.String()),
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	return stats, nil
}

func (r *Runner) collect(
	ctx context.Context,
	logger *slog.Logger,
	v variant.Variant,
	repetitions int,
) (*VariantStats, error) {
	var (
		samples    []float64
		trials     = reference{field: "trial count"}
		iterations = reference{field: "iteration count"}
		checksum   = reference{field: "checksum"}
	)

	for run := 1; run <= repetitions; run++ {
		logger.Debug("starting run",
			slog.Int("run", run),
			slog.Int("total", repetitions),
		)

		res, err := r.run(ctx, v, PhaseCollecting, nil)
		if err != nil {
			return nil, err
		}

		parsed, err := ParseStdout(res.Stdout)
		if err != nil {
			return nil, fmt.Errorf(
				"parse stdout of run %d for variant %q: %w", run, v.Name, err,
			)
		}

		samples = append(samples, parsed.Samples...)

		if err := observeScalars(parsed, &trials, &iterations, &checksum); err != nil {
			return nil, fmt.Errorf("run %d of variant %q: %w", run, v.Name, err)
		}
	}

	// When the timing runs never report trials, the pooled sample count
	// determines the per-run trial count. Derived before the telemetry run
	// so a telemetry-run trial count that disagrees with it is rejected
	// like any other inconsistency.
	if trials.value == nil {
		derived := int64(len(samples) / repetitions)
		trials.value = &derived
	}

	// One extra run with tracing enabled. Its timing samples are discarded
	// (tracing perturbs the measurement) but its scalars must still agree
	// with the reference values established above.
	logger.Debug("starting telemetry run")

	extraEnv := map[string]string{TraceEnvVar: "1"}

	res, err := r.run(ctx, v, PhaseTelemetryRun, extraEnv)
	if err != nil {
		return nil, err
	}

	traceParsed, err := ParseStdout(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf(
			"parse telemetry run stdout for variant %q: %w", v.Name, err,
		)
	}

	if err := observeScalars(traceParsed, &trials, &iterations, &checksum); err != nil {
		return nil, fmt.Errorf("telemetry run of variant %q: %w", v.Name, err)
	}

	telemetry, err := ParseTelemetry(res.Stderr)
	if err != nil {
		return nil, fmt.Errorf(
			"extract telemetry for variant %q: %w", v.Name, err,
		)
	}

	// Aggregate. Iterations and checksum are optional per run but required
	// per variant: without them throughput and determinism mean nothing.
	if iterations.value == nil {
		return nil, fmt.Errorf(
			"variant %q never reported an iteration count; is the benchmark source instrumented?",
			v.Name,
		)
	}

	if checksum.value == nil {
		return nil, fmt.Errorf(
			"variant %q never reported a checksum; is the benchmark source instrumented?",
			v.Name,
		)
	}

	stats := &VariantStats{
		Variant:            v,
		AverageSeconds:     mean(samples),
		StdevSeconds:       stdev(samples),
		IterationsPerTrial: *iterations.value,
		TrialsPerRun:       *trials.value,
		SampleCount:        len(samples),
		Checksum:           *checksum.value,
		Telemetry:          telemetry,
	}

	logger.Info("variant aggregated",
		slog.String("state", PhaseAggregated.String()),
		slog.Int("samples", stats.SampleCount),
		slog.Float64("avg_seconds", stats.AverageSeconds),
		slog.Int64("checksum", stats.Checksum),
	)

	return stats, nil
}

// run performs one invocation with the variant's env overlay plus extraEnv
// and rejects non-zero exits.
func (r *Runner) run(
	ctx context.Context,
	v variant.Variant,
	phase Phase,
	extraEnv map[string]string,
) (ExecResult, error) {
	env := make(map[string]string, len(v.Env)+len(extraEnv))
	for k, val := range v.Env {
		env[k] = val
	}
	for k, val := range extraEnv {
		env[k] = val
	}

	res, err := r.execute(ctx, r.Binary, r.BenchSource, env)
	if err != nil {
		return ExecResult{}, fmt.Errorf(
			"invoke %s for variant %q: %w", r.Binary, v.Name, err,
		)
	}

	if res.ExitCode != 0 {
		return ExecResult{}, &ExecError{
			Variant:  v.Name,
			Phase:    phase,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}

	return res, nil
}

// reference tracks the first observed value of a per-run scalar and rejects
// later disagreement. Nil observations are tolerated; the aggregation step
// decides whether total absence is fatal.
type reference struct {
	field string
	value *int64
}

// observeScalars validates one run's scalars against the references
// established by earlier runs of the same variant.
func observeScalars(parsed RunResult, trials, iterations, checksum *reference) error {
	if err := trials.observe(parsed.Trials); err != nil {
		return err
	}

	if err := iterations.observe(parsed.Iterations); err != nil {
		return err
	}

	return checksum.observe(parsed.Checksum)
}

func (ref *reference) observe(v *int64) error {
	if v == nil {
		return nil
	}

	if ref.value == nil {
		val := *v
		ref.value = &val

		return nil
	}

	if *ref.value != *v {
		return &ConsistencyError{Field: ref.field, Want: *ref.value, Got: *v}
	}

	return nil
}

// VerifyComparable checks that all variants measured the same logical
// workload: every checksum and iteration count must equal the first
// variant's. Called after all variants have been collected.
func VerifyComparable(stats []VariantStats) error {
	if len(stats) < 2 {
		return nil
	}

	first := stats[0]

	for _, s := range stats[1:] {
		if s.Checksum != first.Checksum {
			return &ConsistencyError{
				Field:    "checksum",
				Want:     first.Checksum,
				Got:      s.Checksum,
				WantFrom: first.Variant.Name,
				GotFrom:  s.Variant.Name,
			}
		}

		if s.IterationsPerTrial != first.IterationsPerTrial {
			return &ConsistencyError{
				Field:    "iteration count",
				Want:     first.IterationsPerTrial,
				Got:      s.IterationsPerTrial,
				WantFrom: first.Variant.Name,
				GotFrom:  s.Variant.Name,
			}
		}
	}

	return nil
}

// executeCommand is the production ExecFunc: it launches the binary with
// the benchmark source as its sole argument and the overlay merged onto the
// inherited environment, blocking until exit.
func executeCommand(
	ctx context.Context, binary, source string, env map[string]string,
) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, binary, source)

	if len(env) > 0 {
		merged := os.Environ()
		for k, v := range env {
			merged = append(merged, k+"="+v)
		}

		cmd.Env = merged
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return ExecResult{}, err
		}
	}

	return ExecResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

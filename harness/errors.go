package harness

import "fmt"

// ExecError reports a benchmark invocation that exited non-zero. The
// captured output is kept so the failure can be diagnosed without rerunning.
type ExecError struct {
	Variant  string
	Phase    Phase
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf(
		"benchmark run failed for variant %q during %s (exit code %d)\nstdout:\n%s\nstderr:\n%s",
		e.Variant, e.Phase, e.ExitCode, e.Stdout, e.Stderr,
	)
}

// ParseError reports output that is missing a required element: elapsed
// samples in stdout or the telemetry trace in stderr.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

// ConsistencyError reports a trials, iterations, or checksum value that
// diverged between runs or variants of what should be the same workload.
type ConsistencyError struct {
	Field string
	Want  int64
	Got   int64
	// Want/Got context: variant names for cross-variant checks, empty for
	// run-to-run checks within one variant.
	WantFrom string
	GotFrom  string
}

func (e *ConsistencyError) Error() string {
	if e.WantFrom != "" || e.GotFrom != "" {
		return fmt.Sprintf(
			"%s mismatch across variants: %s reported %d, %s reported %d",
			e.Field, e.WantFrom, e.Want, e.GotFrom, e.Got,
		)
	}

	return fmt.Sprintf(
		"inconsistent %s detected: expected %d, got %d",
		e.Field, e.Want, e.Got,
	)
}

package harness

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveBinary returns the interpreter binary to benchmark. An explicit
// path always wins; otherwise the release build in the repo root is
// preferred over the debug build. The returned path may not exist yet;
// EnsurePrerequisites checks that separately so the error message can tell
// the user to build first.
func ResolveBinary(repoRoot, explicit string) string {
	if explicit != "" {
		return explicit
	}

	release := filepath.Join(repoRoot, "orus")
	if _, err := os.Stat(release); err == nil {
		return release
	}

	debug := filepath.Join(repoRoot, "orus_debug")
	if _, err := os.Stat(debug); err == nil {
		return debug
	}

	return release
}

// EnsurePrerequisites verifies the interpreter binary and the benchmark
// source exist before any run is attempted.
func EnsurePrerequisites(binary, benchSource string) error {
	if _, err := os.Stat(binary); err != nil {
		return fmt.Errorf(
			"interpreter binary not found at %s; build it first (e.g. `make release`)",
			binary,
		)
	}

	if _, err := os.Stat(benchSource); err != nil {
		return fmt.Errorf("benchmark source not found at %s", benchSource)
	}

	return nil
}

package harness

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseStdout extracts a RunResult from one invocation's standard output.
// The output is a line-oriented tagged grammar: `elapsed: <float>` appends
// one sample and may repeat, `trials:`, `iterations:`, and `checksum:` carry
// a single integer each (last occurrence wins; run-to-run equality is the
// orchestrator's concern). Lines matching no tag are ignored, so the
// benchmark program is free to print explanatory text.
func ParseStdout(stdout string) (RunResult, error) {
	var result RunResult

	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if v, ok := matchFloatTag(line, "elapsed:"); ok {
			result.Samples = append(result.Samples, v)
			continue
		}
		if v, ok := matchIntTag(line, "trials:", false); ok {
			result.Trials = &v
			continue
		}
		if v, ok := matchIntTag(line, "iterations:", false); ok {
			result.Iterations = &v
			continue
		}
		if v, ok := matchIntTag(line, "checksum:", true); ok {
			result.Checksum = &v
		}
	}

	if err := scanner.Err(); err != nil {
		return RunResult{}, fmt.Errorf("scan benchmark output: %w", err)
	}

	if len(result.Samples) == 0 {
		return RunResult{}, &ParseError{
			Reason: "benchmark output did not contain any elapsed samples",
		}
	}

	return result, nil
}

// matchFloatTag recognizes `<tag> <non-negative decimal>`. Anything else
// after the tag makes the line fall through as ignorable text; in
// particular NaN, Inf, hex floats, and exponents — all of which
// strconv.ParseFloat would happily accept — must never become samples.
func matchFloatTag(line, tag string) (float64, bool) {
	rest, ok := strings.CutPrefix(line, tag)
	if !ok {
		return 0, false
	}

	s := strings.TrimSpace(rest)
	if !isPlainDecimal(s) {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// isPlainDecimal reports whether s is digits with at most one interior
// dot, i.e. the only elapsed form the benchmark program emits.
func isPlainDecimal(s string) bool {
	if s == "" {
		return false
	}

	seenDot := false

	for i, r := range s {
		if r == '.' {
			if seenDot || i == 0 || i == len(s)-1 {
				return false
			}

			seenDot = true

			continue
		}

		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func matchIntTag(line, tag string, allowNegative bool) (int64, bool) {
	rest, ok := strings.CutPrefix(line, tag)
	if !ok {
		return 0, false
	}

	v, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil || (!allowNegative && v < 0) {
		return 0, false
	}

	return v, true
}

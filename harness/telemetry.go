package harness

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TraceMarker prefixes the diagnostic line the interpreter emits on stderr
// when typed-fallback tracing is enabled.
const TraceMarker = "[loop-trace]"

// legacyTracePattern matches the older trace format, which packed the four
// counters into one comma-separated blob instead of space-delimited
// key=value tokens.
var legacyTracePattern = regexp.MustCompile(
	`typed_hit=(?P<hit>\d+).*?typed_miss=(?P<miss>\d+)` +
		`.*?inc_overflow_bailouts=(?P<overflow>\d+)` +
		`.*?inc_type_instability=(?P<instability>\d+)`,
)

// ParseTelemetry extracts the loop telemetry counters from a telemetry
// run's standard error. Only the first line beginning with TraceMarker is
// considered; the tokens after the marker are parsed as key=value integer
// pairs, skipping any that do not parse. When none parse, the legacy trace
// format is tried on the same line before giving up.
func ParseTelemetry(stderr string) (map[string]int64, error) {
	scanner := bufio.NewScanner(strings.NewReader(stderr))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		rest, ok := strings.CutPrefix(line, TraceMarker)
		if !ok {
			continue
		}

		counters := parseCounterTokens(rest)
		if len(counters) == 0 {
			counters = parseLegacyTrace(rest)
		}

		if len(counters) == 0 {
			return nil, &ParseError{
				Reason: "telemetry trace line contained no counters",
			}
		}

		return counters, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan stderr output: %w", err)
	}

	return nil, &ParseError{
		Reason: "loop telemetry trace not found in stderr output",
	}
}

func parseCounterTokens(s string) map[string]int64 {
	counters := make(map[string]int64)

	for _, token := range strings.Fields(s) {
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			continue
		}

		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			continue
		}

		counters[key] = n
	}

	return counters
}

func parseLegacyTrace(s string) map[string]int64 {
	match := legacyTracePattern.FindStringSubmatch(s)
	if match == nil {
		return nil
	}

	counters := make(map[string]int64, 4)

	for group, counter := range map[string]string{
		"hit":         "typed_hit",
		"miss":        "typed_miss",
		"overflow":    "inc_overflow_bailouts",
		"instability": "inc_type_instability",
	} {
		n, err := strconv.ParseInt(
			match[legacyTracePattern.SubexpIndex(group)], 10, 64,
		)
		if err != nil {
			return nil
		}

		counters[counter] = n
	}

	return counters
}

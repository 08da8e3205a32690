package harness

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestParseTelemetry(t *testing.T) {
	input := "[loop-trace] typed_hit=10 typed_miss=2 inc_overflow_bailouts=0\n"

	counters, err := ParseTelemetry(input)
	if err != nil {
		t.Fatalf("ParseTelemetry failed: %v", err)
	}

	want := map[string]int64{
		"typed_hit":             10,
		"typed_miss":            2,
		"inc_overflow_bailouts": 0,
	}

	if len(counters) != len(want) {
		t.Fatalf("counters = %v, want %v", counters, want)
	}

	for k, v := range want {
		if counters[k] != v {
			t.Errorf("%s = %d, want %d", k, counters[k], v)
		}
	}
}

func TestParseTelemetrySkipsMalformedTokens(t *testing.T) {
	input := "[loop-trace] typed_hit=5 bogus typed_miss=abc =3 extra_counter=7\n"

	counters, err := ParseTelemetry(input)
	if err != nil {
		t.Fatalf("ParseTelemetry failed: %v", err)
	}

	if counters["typed_hit"] != 5 {
		t.Errorf("typed_hit = %d, want 5", counters["typed_hit"])
	}
	if counters["extra_counter"] != 7 {
		t.Errorf("extra_counter = %d, want 7", counters["extra_counter"])
	}
	if _, ok := counters["typed_miss"]; ok {
		t.Error("malformed typed_miss token should be skipped")
	}
	if len(counters) != 2 {
		t.Errorf("counters = %v, want exactly 2 entries", counters)
	}
}

func TestParseTelemetryUsesFirstMarkedLine(t *testing.T) {
	input := "noise before\n" +
		"[loop-trace] typed_hit=1\n" +
		"[loop-trace] typed_hit=99\n"

	counters, err := ParseTelemetry(input)
	if err != nil {
		t.Fatalf("ParseTelemetry failed: %v", err)
	}

	if counters["typed_hit"] != 1 {
		t.Errorf("typed_hit = %d, want 1 (first marked line)", counters["typed_hit"])
	}
}

func TestParseTelemetryLegacyFormat(t *testing.T) {
	input := "[loop-trace] typed_hit=10,typed_miss=2,inc_overflow_bailouts=0,inc_type_instability=1\n"

	counters, err := ParseTelemetry(input)
	if err != nil {
		t.Fatalf("ParseTelemetry failed: %v", err)
	}

	want := map[string]int64{
		"typed_hit":             10,
		"typed_miss":            2,
		"inc_overflow_bailouts": 0,
		"inc_type_instability":  1,
	}

	for k, v := range want {
		if counters[k] != v {
			t.Errorf("%s = %d, want %d", k, counters[k], v)
		}
	}
}

func TestParseTelemetryNotFound(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty stderr", ""},
		{"no marker", "some interpreter warning\nanother line\n"},
		{"marker mid-line", "prefix [loop-trace] typed_hit=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTelemetry(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestParseTelemetryOversizedLine(t *testing.T) {
	input := strings.Repeat("x", bufio.MaxScanTokenSize+1) + "\n" +
		"[loop-trace] typed_hit=1\n"

	_, err := ParseTelemetry(input)
	if err == nil {
		t.Fatal("expected error when a line exceeds the scanner limit")
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		t.Errorf("scan failure must not read as a missing trace: %v", err)
	}
}

func TestParseTelemetryEmptyTrace(t *testing.T) {
	_, err := ParseTelemetry("[loop-trace] nothing=here,either\n")
	if err == nil {
		t.Fatal("expected error for trace line with no counters")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %T: %v", err, err)
	}
}

package variant

import (
	"strings"
	"testing"
)

func TestBuiltinSuitesValid(t *testing.T) {
	suites := BuiltinSuites()
	if len(suites) == 0 {
		t.Fatal("no builtin suites")
	}

	for name, s := range suites {
		if err := s.Validate(); err != nil {
			t.Errorf("suite %q invalid: %v", name, err)
		}
		if s.Name != name {
			t.Errorf("suite keyed %q has name %q", name, s.Name)
		}
	}
}

func TestBuiltinPhase2(t *testing.T) {
	s, ok := BuiltinSuites()["2"]
	if !ok {
		t.Fatal("phase 2 suite missing")
	}

	if s.Baseline != "typed-fastpath" {
		t.Errorf("baseline = %q, want typed-fastpath", s.Baseline)
	}
	if len(s.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(s.Variants))
	}
	if s.Variants[0].Name != "typed-fastpath" {
		t.Errorf("first variant = %q, want typed-fastpath", s.Variants[0].Name)
	}

	kill := s.Variants[1]
	if kill.Env["ORUS_DISABLE_INC_TYPED_FASTPATH"] != "1" {
		t.Errorf("kill-switch env = %v", kill.Env)
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	s := Suite{
		Name: "dup",
		Variants: []Variant{
			{Name: "a"},
			{Name: "a"},
		},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for duplicate variant names")
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	if err := (Suite{Name: "empty"}).Validate(); err == nil {
		t.Error("expected error for suite with no variants")
	}
}

func TestLoadSuites(t *testing.T) {
	input := `
suites:
  - name: experimental
    baseline: fast
    variants:
      - name: fast
        description: fast path on
        env: {}
      - name: slow
        description: fast path off
        env:
          ORUS_DISABLE_INC_TYPED_FASTPATH: "1"
`

	suites, err := LoadSuites(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadSuites failed: %v", err)
	}

	s, ok := suites["experimental"]
	if !ok {
		t.Fatal("experimental suite missing")
	}

	if s.Baseline != "fast" {
		t.Errorf("baseline = %q, want fast", s.Baseline)
	}
	if len(s.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(s.Variants))
	}
	if got := s.Variants[1].Env["ORUS_DISABLE_INC_TYPED_FASTPATH"]; got != "1" {
		t.Errorf("slow env = %q, want 1", got)
	}
}

func TestLoadSuitesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not yaml", "{{{"},
		{"no suites", "suites: []"},
		{"unnamed variant", `
suites:
  - name: bad
    variants:
      - description: nameless
`},
		{"duplicate suite", `
suites:
  - name: twice
    variants:
      - name: a
  - name: twice
    variants:
      - name: a
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSuites(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

package variant

// BuiltinSuites returns the suites shipped with the harness, keyed by phase
// name. Phase 2 compares the typed increment fast path against its boxed
// fallback, toggled through the interpreter's kill switch.
func BuiltinSuites() map[string]Suite {
	return map[string]Suite{
		"2": {
			Name:     "2",
			Baseline: "typed-fastpath",
			Variants: []Variant{
				{
					Name:        "typed-fastpath",
					Description: "Typed increment fast path enabled",
					Env:         map[string]string{},
				},
				{
					Name:        "kill-switch",
					Description: "Fast path disabled via ORUS_DISABLE_INC_TYPED_FASTPATH",
					Env: map[string]string{
						"ORUS_DISABLE_INC_TYPED_FASTPATH": "1",
					},
				},
			},
		},
	}
}

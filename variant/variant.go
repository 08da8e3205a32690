// Package variant describes benchmark configurations. A Variant is one way
// of running the benchmarked interpreter, differing from the others only by
// the environment overlay it applies. Variants are grouped into Suites,
// constructed once and never mutated.
package variant

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Variant is a single benchmark configuration descriptor.
type Variant struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Env         map[string]string `yaml:"env"`
}

// Suite is a named, ordered set of variants benchmarked together. Baseline
// names the variant other variants are compared against; when empty, or when
// no variant carries that name, the first variant is the baseline.
type Suite struct {
	Name     string    `yaml:"name"`
	Baseline string    `yaml:"baseline"`
	Variants []Variant `yaml:"variants"`
}

// Validate checks that the suite is runnable: at least one variant, and
// variant names unique within the suite.
func (s Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite has no name")
	}

	if len(s.Variants) == 0 {
		return fmt.Errorf("suite %q has no variants", s.Name)
	}

	seen := make(map[string]bool, len(s.Variants))

	for _, v := range s.Variants {
		if v.Name == "" {
			return fmt.Errorf("suite %q contains an unnamed variant", s.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf(
				"suite %q contains duplicate variant %q", s.Name, v.Name,
			)
		}

		seen[v.Name] = true
	}

	return nil
}

// suiteFile is the on-disk schema for user-provided suite files.
type suiteFile struct {
	Suites []Suite `yaml:"suites"`
}

// LoadSuites reads suite definitions from a YAML document, keyed by suite
// name. Every loaded suite is validated.
func LoadSuites(r io.Reader) (map[string]Suite, error) {
	var file suiteFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode suite file: %w", err)
	}

	if len(file.Suites) == 0 {
		return nil, fmt.Errorf("suite file defines no suites")
	}

	suites := make(map[string]Suite, len(file.Suites))

	for _, s := range file.Suites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, ok := suites[s.Name]; ok {
			return nil, fmt.Errorf("duplicate suite %q", s.Name)
		}

		suites[s.Name] = s
	}

	return suites, nil
}

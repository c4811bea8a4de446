// YAML run configuration loader with CUE schema validation.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fleetbringup/internal/check"
	"fleetbringup/internal/hardware"
)

// ErrConfig marks a malformed or unrecognized run configuration. Fatal to
// the affected server's run; never recorded as a test result.
var ErrConfig = errors.New("invalid run configuration")

// TestSpec selects a test module by name and carries its declared
// parameters. Module-specific parameters appear inline next to "name" in
// the YAML, so decoding pulls them apart here.
type TestSpec struct {
	Name   string
	Params map[string]any
}

// UnmarshalYAML decodes `{name: ..., <param>: ...}` into name plus params.
func (t *TestSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	name, ok := raw["name"].(string)
	if !ok || name == "" {
		return fmt.Errorf("%w: each test must have a name", ErrConfig)
	}
	delete(raw, "name")
	t.Name = name
	t.Params = raw
	return nil
}

// MarshalYAML restores the inline form.
func (t TestSpec) MarshalYAML() (any, error) {
	out := make(map[string]any, len(t.Params)+1)
	for k, v := range t.Params {
		out[k] = v
	}
	out["name"] = t.Name
	return out, nil
}

// TestPlan is an ordered sequence of test specs. Immutable once loaded.
type TestPlan struct {
	Name  string     `yaml:"name"`
	Tests []TestSpec `yaml:"tests"`
}

// InjectionDirective configures one failure injection applied to a
// subsystem simulator before any test module runs.
type InjectionDirective struct {
	Subsystem   string             `yaml:"subsystem"`
	FailureType string             `yaml:"failure_type"`
	Severity    float64            `yaml:"severity"`
	Seed        int64              `yaml:"seed"`
	Params      map[string]float64 `yaml:"params,omitempty"`
}

// Spec converts the directive into a hardware failure spec.
func (d InjectionDirective) Spec() hardware.FailureSpec {
	return hardware.FailureSpec{
		Type:     hardware.FailureType(d.FailureType),
		Severity: d.Severity,
		Seed:     d.Seed,
		Params:   d.Params,
	}
}

// RunConfig is the root configuration for a validation run.
type RunConfig struct {
	TestPlan         TestPlan             `yaml:"test_plan"`
	FailureInjection []InjectionDirective `yaml:"failure_injection,omitempty"`
	Concurrency      int                  `yaml:"concurrency,omitempty"`
}

// Load reads a YAML run configuration, validates it against the CUE schema
// when cueSchemaPath is non-empty, and validates every test spec against
// the registered test modules.
func Load(configPath, cueSchemaPath string) (*RunConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := Validate(&cfg, check.Default()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks plan structure, test parameters, and injection directives.
func Validate(cfg *RunConfig, registry *check.Registry) error {
	if cfg.TestPlan.Name == "" {
		return fmt.Errorf("%w: test_plan must have a name", ErrConfig)
	}
	if len(cfg.TestPlan.Tests) == 0 {
		return fmt.Errorf("%w: test_plan must contain a tests list", ErrConfig)
	}
	for _, spec := range cfg.TestPlan.Tests {
		if _, _, err := registry.Resolve(spec.Name, spec.Params); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	for _, d := range cfg.FailureInjection {
		if d.Subsystem == "" || d.FailureType == "" {
			return fmt.Errorf("%w: failure_injection entries need subsystem and failure_type", ErrConfig)
		}
		known := false
		for _, s := range hardware.Subsystems {
			if string(s) == d.Subsystem {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: unknown subsystem %q in failure_injection", ErrConfig, d.Subsystem)
		}
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be >= 0", ErrConfig)
	}
	return nil
}

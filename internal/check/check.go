// Test modules: pure evaluators mapping telemetry histories plus declared
// parameters to verdicts. Modules never mutate simulator state; the runner
// collects samples and hands them over.
package check

import (
	"errors"
	"fmt"
	"sort"

	"fleetbringup/internal/hardware"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

// ErrBadParams marks a malformed or unrecognized test parameter set.
// Fatal to the single-server run; surfaced at config load time.
var ErrBadParams = errors.New("bad test parameters")

// ParamKind is the expected type of a declared parameter.
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamBool
)

// ParamSpec declares one parameter a module accepts.
type ParamSpec struct {
	Name    string
	Kind    ParamKind
	Default any
}

// Params holds the validated parameter values for one test spec execution.
type Params map[string]any

// Float returns a numeric parameter. Validation guarantees presence and type.
func (p Params) Float(name string) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Int returns a numeric parameter truncated to int.
func (p Params) Int(name string) int { return int(p.Float(name)) }

// Bool returns a boolean parameter.
func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

// Check is one test module. Samples reports how many telemetry samples the
// runner must collect for the given parameters; Injection optionally names a
// failure the module asks to have applied to its own simulator before
// sampling (driven by declared injection flags).
type Check interface {
	Name() string
	Subsystem() hardware.Subsystem
	Params() []ParamSpec
	Samples(p Params) int
	Injection(p Params) (hardware.FailureSpec, bool)
	Evaluate(history []telemetry.Sample, p Params) report.TestResult
}

// Registry maps test names to modules.
type Registry struct {
	checks map[string]Check
}

// NewRegistry returns a registry holding the given checks.
func NewRegistry(checks ...Check) *Registry {
	r := &Registry{checks: make(map[string]Check, len(checks))}
	for _, c := range checks {
		r.checks[c.Name()] = c
	}
	return r
}

// Default returns a registry with all built-in test modules.
func Default() *Registry {
	return NewRegistry(
		CPUStress{},
		MemoryIntegrity{},
		NetworkConnectivity{},
		ThermalPowerSanity{},
	)
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (Check, bool) {
	c, ok := r.checks[name]
	return c, ok
}

// Names lists registered test names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.checks))
	for n := range r.checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve validates raw parameters against the named module's declared
// specs and returns the effective Params with defaults applied.
func (r *Registry) Resolve(name string, raw map[string]any) (Check, Params, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown test %q", ErrBadParams, name)
	}
	specs := c.Params()
	byName := make(map[string]ParamSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	p := make(Params, len(specs))
	for key, val := range raw {
		spec, ok := byName[key]
		if !ok {
			return nil, nil, fmt.Errorf("%w: test %q does not accept parameter %q", ErrBadParams, name, key)
		}
		coerced, err := coerce(spec, val)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: test %q parameter %q: %v", ErrBadParams, name, key, err)
		}
		p[key] = coerced
	}
	for _, s := range specs {
		if _, ok := p[s.Name]; !ok {
			p[s.Name] = s.Default
		}
	}
	return c, p, nil
}

func coerce(spec ParamSpec, val any) (any, error) {
	switch spec.Kind {
	case ParamNumber:
		switch v := val.(type) {
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		}
		return nil, fmt.Errorf("expected number, got %T", val)
	case ParamBool:
		if v, ok := val.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("expected bool, got %T", val)
	}
	return nil, fmt.Errorf("unknown parameter kind")
}

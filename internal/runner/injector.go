package runner

import (
	"fmt"

	"fleetbringup/internal/config"
	"fleetbringup/internal/hardware"
)

// Injector applies configured failure directives to simulators before the
// orchestrator steps through any test spec. Given the same directive set
// and seeds, every run produces identical telemetry sequences.
type Injector struct {
	directives []config.InjectionDirective
}

// NewInjector creates an injection controller for one run's directives.
func NewInjector(directives []config.InjectionDirective) *Injector {
	return &Injector{directives: directives}
}

// Apply injects every directive into its target simulator. A directive
// naming an unsupported failure type surfaces ErrInvalidFailureMode,
// fatal to this server's run only.
func (in *Injector) Apply(components map[hardware.Subsystem]hardware.Component) error {
	for _, d := range in.directives {
		comp, ok := components[hardware.Subsystem(d.Subsystem)]
		if !ok {
			return fmt.Errorf("%w: no simulator for subsystem %q", config.ErrConfig, d.Subsystem)
		}
		if err := comp.InjectFailure(d.Spec()); err != nil {
			return err
		}
	}
	return nil
}

// DirectiveFor returns the run-scoped failure spec targeting the given
// subsystem, if one was configured.
func (in *Injector) DirectiveFor(kind hardware.Subsystem) (hardware.FailureSpec, bool) {
	for _, d := range in.directives {
		if hardware.Subsystem(d.Subsystem) == kind {
			return d.Spec(), true
		}
	}
	return hardware.FailureSpec{}, false
}

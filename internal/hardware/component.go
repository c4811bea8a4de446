// Hardware component contract and the simulated implementations used for
// bring-up validation. A real BMC/Redfish adapter satisfying Component is
// substitutable for any simulator without changes to the runner.
package hardware

import (
	"errors"
	"fmt"
	"time"

	"fleetbringup/internal/telemetry"
)

// Subsystem identifies one validated hardware domain.
type Subsystem string

const (
	SubsystemCPU     Subsystem = "cpu"
	SubsystemMemory  Subsystem = "memory"
	SubsystemNetwork Subsystem = "network"
	SubsystemThermal Subsystem = "thermal"
)

// Subsystems lists all known subsystems in a stable order.
var Subsystems = []Subsystem{SubsystemCPU, SubsystemMemory, SubsystemNetwork, SubsystemThermal}

// FailureType names a controlled failure mode.
type FailureType string

const (
	FailureThermalThrottle  FailureType = "THERMAL_THROTTLE"
	FailureLowUtilization   FailureType = "LOW_UTILIZATION"
	FailureECCError         FailureType = "ECC_ERROR"
	FailureECCUncorrectable FailureType = "ECC_UNCORRECTABLE"
	FailurePacketLoss       FailureType = "PACKET_LOSS"
	FailureLinkDown         FailureType = "LINK_DOWN"
	FailureOverheat         FailureType = "OVERHEAT"
	FailurePowerSpike       FailureType = "POWER_SPIKE"
	FailureFanFailure       FailureType = "FAN_FAILURE"
)

// FailureSpec describes an injected failure mode. Severity scales the drift
// or error rate; Seed feeds any randomness the mode needs; Params carry
// mode-specific overrides (loss rates, temperatures, slots).
type FailureSpec struct {
	Type     FailureType
	Severity float64
	Seed     int64
	Params   map[string]float64
}

func (f FailureSpec) param(name string, fallback float64) float64 {
	if v, ok := f.Params[name]; ok {
		return v
	}
	return fallback
}

// equal reports whether two specs describe the identical failure state.
// Injection is idempotent for equal specs.
func (f FailureSpec) equal(other FailureSpec) bool {
	if f.Type != other.Type || f.Severity != other.Severity || f.Seed != other.Seed {
		return false
	}
	if len(f.Params) != len(other.Params) {
		return false
	}
	for k, v := range f.Params {
		if ov, ok := other.Params[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ErrInvalidFailureMode marks injection of a failure type the target
// subsystem does not support. Fatal to the affected server's run only.
var ErrInvalidFailureMode = errors.New("invalid failure mode")

func unsupportedFailure(kind Subsystem, ft FailureType) error {
	return fmt.Errorf("%w: subsystem %s does not support %s", ErrInvalidFailureMode, kind, ft)
}

// Component is the capability contract every subsystem simulator implements.
//
// Status returns current readings and advances the internal tick counter
// used to derive time-varying drift; it performs no I/O and never blocks.
// InjectFailure transitions the component into a degraded mode; injecting a
// different type replaces the prior failure rather than stacking.
// Reset returns the component to its nominal baseline and is idempotent.
type Component interface {
	Kind() Subsystem
	Status() telemetry.Sample
	InjectFailure(spec FailureSpec) error
	Reset()
}

// New constructs a fresh simulator for the given subsystem. Each instance is
// owned by exactly one (server, subsystem) execution context and must never
// be shared across servers or concurrent runs.
func New(kind Subsystem, serverID string, seed int64) (Component, error) {
	switch kind {
	case SubsystemCPU:
		return NewCPUSimulator(serverID, seed), nil
	case SubsystemMemory:
		return NewMemorySimulator(serverID, seed), nil
	case SubsystemNetwork:
		return NewNICSimulator(serverID, seed), nil
	case SubsystemThermal:
		return NewThermalPowerSimulator(serverID, seed), nil
	}
	return nil, fmt.Errorf("unknown subsystem %q", kind)
}

// sampleEpoch anchors sample timestamps. One tick is one simulated second;
// wall clock never enters telemetry, so a fixed seed yields bit-identical
// sample sequences regardless of when the simulator was constructed.
var sampleEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// simulatorState is the failure/tick bookkeeping shared by all simulators.
type simulatorState struct {
	serverID string
	noise    *telemetry.Noise
	tick     int
	failure  *FailureSpec
	injected int // tick at which the current failure was injected
}

func newSimulatorState(serverID string, seed int64) simulatorState {
	return simulatorState{
		serverID: serverID,
		noise:    telemetry.NewNoise(seed),
	}
}

// inject records the failure spec; identical re-injection is a no-op so
// redundant calls cause no drift restart.
func (s *simulatorState) inject(spec FailureSpec) {
	if s.failure != nil && s.failure.equal(spec) {
		return
	}
	cp := spec
	s.failure = &cp
	s.injected = s.tick
}

func (s *simulatorState) reset() {
	s.failure = nil
	s.injected = 0
}

// step advances simulated time by one tick and returns the number of ticks
// elapsed since the current failure was injected (0 when nominal).
func (s *simulatorState) step() int {
	s.tick++
	if s.failure == nil {
		return 0
	}
	return s.tick - s.injected
}

func (s *simulatorState) sample(kind Subsystem, metrics map[string]float64) telemetry.Sample {
	return telemetry.Sample{
		ServerID:  s.serverID,
		Subsystem: string(kind),
		Tick:      s.tick,
		Metrics:   metrics,
		Timestamp: sampleEpoch.Add(time.Duration(s.tick) * time.Second),
	}
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

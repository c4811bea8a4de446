package hardware

import "fleetbringup/internal/telemetry"

const (
	memDIMMSlots      = 12
	memDIMMCapacityGB = 32
	memNominalTempC   = 55.0
	memTempNoiseC     = 1.0
)

// MemorySimulator models DIMM telemetry and ECC error accumulation.
type MemorySimulator struct {
	simulatorState

	correctable   float64
	uncorrectable float64
	slot          int // DIMM slot attributed with injected errors
}

// NewMemorySimulator returns a memory simulator seeded for reproducible telemetry.
func NewMemorySimulator(serverID string, seed int64) *MemorySimulator {
	return &MemorySimulator{simulatorState: newSimulatorState(serverID, seed)}
}

func (m *MemorySimulator) Kind() Subsystem { return SubsystemMemory }

// Status reports ECC counters and DIMM temperature for one tick. While an
// ECC_ERROR failure is active the correctable counter increments per sample
// at a rate scaling with severity.
func (m *MemorySimulator) Status() telemetry.Sample {
	m.step()

	if m.failure != nil {
		switch m.failure.Type {
		case FailureECCError:
			rate := m.failure.Severity
			if rate < 1 {
				rate = 1
			}
			m.correctable += rate
		case FailureECCUncorrectable:
			m.uncorrectable = 1
		}
	}

	return m.sample(SubsystemMemory, map[string]float64{
		telemetry.MetricECCCorrectable:   m.correctable,
		telemetry.MetricECCUncorrectable: m.uncorrectable,
		telemetry.MetricECCSlot:          float64(m.slot),
		telemetry.MetricDIMMTempC:        memNominalTempC + m.noise.Jitter(memTempNoiseC),
		telemetry.MetricMemCapacityGB:    memDIMMSlots * memDIMMCapacityGB,
	})
}

// InjectFailure supports ECC_ERROR and ECC_UNCORRECTABLE. The affected DIMM
// slot comes from the "slot" param, or is derived from the injection seed.
func (m *MemorySimulator) InjectFailure(spec FailureSpec) error {
	switch spec.Type {
	case FailureECCError, FailureECCUncorrectable:
		if m.failure != nil && m.failure.equal(spec) {
			return nil
		}
		m.inject(spec)
		m.correctable = 0
		m.uncorrectable = 0
		if s, ok := spec.Params["slot"]; ok {
			m.slot = int(s) % memDIMMSlots
		} else {
			seed := spec.Seed
			if seed < 0 {
				seed = -seed
			}
			m.slot = int(seed % memDIMMSlots)
		}
		return nil
	}
	return unsupportedFailure(SubsystemMemory, spec.Type)
}

// Reset clears error counters and any injected failure.
func (m *MemorySimulator) Reset() {
	m.reset()
	m.correctable = 0
	m.uncorrectable = 0
	m.slot = 0
}

package check

import (
	"fmt"

	"fleetbringup/internal/hardware"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

// MemoryIntegrity runs independent sample rounds; any round reporting a
// nonzero ECC correctable-error count fails the test with DIMM attribution.
type MemoryIntegrity struct{}

func (MemoryIntegrity) Name() string                  { return "memory_integrity" }
func (MemoryIntegrity) Subsystem() hardware.Subsystem { return hardware.SubsystemMemory }

func (MemoryIntegrity) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "passes", Kind: ParamNumber, Default: float64(3)},
		{Name: "inject_ecc_error", Kind: ParamBool, Default: false},
		{Name: "ecc_error_slot", Kind: ParamNumber, Default: float64(3)},
	}
}

func (MemoryIntegrity) Samples(p Params) int {
	n := p.Int("passes")
	if n < 1 {
		n = 1
	}
	return n
}

func (MemoryIntegrity) Injection(p Params) (hardware.FailureSpec, bool) {
	if p.Bool("inject_ecc_error") {
		return hardware.FailureSpec{
			Type:     hardware.FailureECCError,
			Severity: 1,
			Params:   map[string]float64{"slot": p.Float("ecc_error_slot")},
		}, true
	}
	return hardware.FailureSpec{}, false
}

func (m MemoryIntegrity) Evaluate(history []telemetry.Sample, p Params) report.TestResult {
	result := report.TestResult{
		Name:        m.Name(),
		DurationSec: float64(len(history)),
	}

	for _, s := range history {
		slot := int(s.Metric(telemetry.MetricECCSlot))
		if s.Metric(telemetry.MetricECCUncorrectable) > 0 {
			result.Status = report.StatusFail
			result.Subsystem = string(hardware.SubsystemMemory)
			result.FailureReason = fmt.Sprintf("ECC UNCORRECTABLE error on DIMM slot %d", slot)
			return result
		}
		if s.Metric(telemetry.MetricECCCorrectable) > 0 {
			result.Status = report.StatusFail
			result.Subsystem = string(hardware.SubsystemMemory)
			result.FailureReason = fmt.Sprintf("ECC correctable error detected on DIMM slot %d", slot)
			return result
		}
	}

	result.Status = report.StatusPass
	return result
}

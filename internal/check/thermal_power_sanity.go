package check

import (
	"fmt"

	"fleetbringup/internal/hardware"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

// ThermalPowerSanity validates that thermal zone temperatures stay under
// their maxima across the sample window, and optionally that power draw
// stays inside an expected idle band.
type ThermalPowerSanity struct{}

func (ThermalPowerSanity) Name() string                  { return "thermal_power_sanity" }
func (ThermalPowerSanity) Subsystem() hardware.Subsystem { return hardware.SubsystemThermal }

func (ThermalPowerSanity) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "max_cpu_temp_c", Kind: ParamNumber, Default: float64(85)},
		{Name: "max_dimm_temp_c", Kind: ParamNumber, Default: float64(75)},
		{Name: "expected_idle_power_w", Kind: ParamNumber, Default: float64(350)},
		{Name: "power_tolerance", Kind: ParamNumber, Default: 0.3},
		{Name: "samples", Kind: ParamNumber, Default: float64(5)},
		{Name: "inject_cpu_overheat", Kind: ParamBool, Default: false},
		{Name: "overheat_severity", Kind: ParamNumber, Default: float64(2)},
		{Name: "inject_power_spike", Kind: ParamBool, Default: false},
	}
}

func (ThermalPowerSanity) Samples(p Params) int {
	n := p.Int("samples")
	if n < 1 {
		n = 1
	}
	return n
}

func (ThermalPowerSanity) Injection(p Params) (hardware.FailureSpec, bool) {
	if p.Bool("inject_cpu_overheat") {
		return hardware.FailureSpec{
			Type:     hardware.FailureOverheat,
			Severity: p.Float("overheat_severity"),
		}, true
	}
	if p.Bool("inject_power_spike") {
		return hardware.FailureSpec{Type: hardware.FailurePowerSpike}, true
	}
	return hardware.FailureSpec{}, false
}

func (t ThermalPowerSanity) Evaluate(history []telemetry.Sample, p Params) report.TestResult {
	maxCPU := p.Float("max_cpu_temp_c")
	maxDIMM := p.Float("max_dimm_temp_c")
	idleW := p.Float("expected_idle_power_w")
	tolerance := p.Float("power_tolerance")
	result := report.TestResult{
		Name:        t.Name(),
		DurationSec: float64(len(history)),
	}

	for _, s := range history {
		if temp := s.Metric(telemetry.MetricThermalCPUTempC); temp > maxCPU {
			result.Status = report.StatusFail
			result.Subsystem = string(hardware.SubsystemThermal)
			result.FailureReason = fmt.Sprintf("CPU temperature out of range: %.1f°C > %.1f°C", temp, maxCPU)
			return result
		}
		if temp := s.Metric(telemetry.MetricThermalDIMMTempC); temp > maxDIMM {
			result.Status = report.StatusFail
			result.Subsystem = string(hardware.SubsystemThermal)
			result.FailureReason = fmt.Sprintf("DIMM temperature out of range: %.1f°C > %.1f°C", temp, maxDIMM)
			return result
		}
		power := s.Metric(telemetry.MetricPowerDrawW)
		if power < idleW*(1-tolerance) || power > idleW*(1+tolerance) {
			result.Status = report.StatusFail
			result.Subsystem = string(hardware.SubsystemThermal)
			result.FailureReason = fmt.Sprintf("Power draw anomaly: %.1fW outside %.0f%% of %.1fW", power, tolerance*100, idleW)
			return result
		}
	}

	result.Status = report.StatusPass
	return result
}

package check

import (
	"fmt"

	"fleetbringup/internal/hardware"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

// stressUtilizationBar is the utilization a sample must sustain (without
// throttling) to count as stress-compliant.
const stressUtilizationBar = 0.90

// CPUStress validates stress capability over a simulated duration: the
// fraction of compliant samples must reach failure_threshold to PASS.
type CPUStress struct{}

func (CPUStress) Name() string                  { return "cpu_stress" }
func (CPUStress) Subsystem() hardware.Subsystem { return hardware.SubsystemCPU }

func (CPUStress) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "duration_sec", Kind: ParamNumber, Default: float64(60)},
		{Name: "failure_threshold", Kind: ParamNumber, Default: 0.90},
		{Name: "inject_thermal_throttle", Kind: ParamBool, Default: false},
	}
}

func (CPUStress) Samples(p Params) int {
	n := p.Int("duration_sec")
	if n < 1 {
		n = 1
	}
	return n
}

func (CPUStress) Injection(p Params) (hardware.FailureSpec, bool) {
	if p.Bool("inject_thermal_throttle") {
		return hardware.FailureSpec{Type: hardware.FailureThermalThrottle, Severity: 1}, true
	}
	return hardware.FailureSpec{}, false
}

func (c CPUStress) Evaluate(history []telemetry.Sample, p Params) report.TestResult {
	threshold := p.Float("failure_threshold")
	result := report.TestResult{
		Name:        c.Name(),
		DurationSec: float64(len(history)),
	}

	compliant := 0
	throttled := 0
	for _, s := range history {
		if s.Metric(telemetry.MetricCPUThrottled) != 0 {
			throttled++
			continue
		}
		if s.Metric(telemetry.MetricCPUUtilization) >= stressUtilizationBar {
			compliant++
		}
	}
	fraction := float64(compliant) / float64(len(history))

	if throttled > 0 {
		result.Status = report.StatusFail
		result.Subsystem = string(hardware.SubsystemCPU)
		result.FailureReason = fmt.Sprintf("CPU thermal throttle detected in %d of %d samples", throttled, len(history))
		return result
	}
	if fraction < threshold {
		result.Status = report.StatusFail
		result.Subsystem = string(hardware.SubsystemCPU)
		result.FailureReason = fmt.Sprintf("CPU stress compliance %.3f below threshold %.3f", fraction, threshold)
		return result
	}

	result.Status = report.StatusPass
	return result
}

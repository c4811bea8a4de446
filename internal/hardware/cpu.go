package hardware

import "fleetbringup/internal/telemetry"

// Nominal CPU baselines. The simulated part runs a stress workload, so
// utilization sits near the top of its range.
const (
	cpuBaseFreqGHz    = 2.3
	cpuMaxFreqGHz     = 3.4
	cpuNominalTempC   = 55.0
	cpuTempNoiseC     = 2.0
	cpuStressUtilLow  = 0.93
	cpuStressUtilHigh = 0.99
	cpuThrottleTempC  = 95.0
	cpuMaxTempC       = 105.0
)

// CPUSimulator models a CPU under a synthetic stress workload.
type CPUSimulator struct {
	simulatorState
}

// NewCPUSimulator returns a CPU simulator seeded for reproducible telemetry.
func NewCPUSimulator(serverID string, seed int64) *CPUSimulator {
	return &CPUSimulator{simulatorState: newSimulatorState(serverID, seed)}
}

func (c *CPUSimulator) Kind() Subsystem { return SubsystemCPU }

// Status reports utilization, frequency, and temperature for one tick.
func (c *CPUSimulator) Status() telemetry.Sample {
	elapsed := c.step()

	util := c.noise.Between(cpuStressUtilLow, cpuStressUtilHigh)
	freq := cpuMaxFreqGHz
	temp := cpuNominalTempC + c.noise.Jitter(cpuTempNoiseC)
	throttled := false

	if c.failure != nil {
		switch c.failure.Type {
		case FailureThermalThrottle:
			throttled = true
			freq = cpuBaseFreqGHz * 0.6
			target := c.failure.param("temp_c", cpuThrottleTempC)
			temp = capAt(target+c.failure.Severity*float64(elapsed), cpuMaxTempC)
			util = c.noise.Between(0.40, 0.60)
		case FailureLowUtilization:
			util = c.failure.param("utilization", 0.30) + c.noise.Jitter(0.02)
			freq = cpuBaseFreqGHz
		}
	}

	return c.sample(SubsystemCPU, map[string]float64{
		telemetry.MetricCPUUtilization: clamp01(util),
		telemetry.MetricCPUFreqGHz:     freq,
		telemetry.MetricCPUTempC:       temp,
		telemetry.MetricCPUThrottled:   boolMetric(throttled),
	})
}

// InjectFailure supports THERMAL_THROTTLE and LOW_UTILIZATION.
func (c *CPUSimulator) InjectFailure(spec FailureSpec) error {
	switch spec.Type {
	case FailureThermalThrottle, FailureLowUtilization:
		c.inject(spec)
		return nil
	}
	return unsupportedFailure(SubsystemCPU, spec.Type)
}

// Reset clears any injected failure and returns to the nominal baseline.
func (c *CPUSimulator) Reset() { c.reset() }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

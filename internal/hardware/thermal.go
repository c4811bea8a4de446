package hardware

import "fleetbringup/internal/telemetry"

// Nominal thermal/power baselines. CPU temperature is documented nominal in
// the 40-65°C band; values outside it indicate drift or injected failure.
const (
	thermalCPUTempC     = 50.0
	thermalDIMMTempC    = 55.0
	thermalInletTempC   = 25.0
	thermalExhaustTempC = 35.0
	thermalTempNoiseC   = 1.0
	thermalPowerDrawW   = 350.0
	thermalPowerNoiseW  = 10.0
	thermalFanRPM       = 5000.0
	thermalMaxTempC     = 110.0
	powerSpikeDefaultW  = 900.0
	fanFailDriftCPerSec = 1.0
)

// ThermalPowerSimulator models thermal zones, power draw, and fan state.
type ThermalPowerSimulator struct {
	simulatorState
}

// NewThermalPowerSimulator returns a thermal/power simulator seeded for
// reproducible telemetry.
func NewThermalPowerSimulator(serverID string, seed int64) *ThermalPowerSimulator {
	return &ThermalPowerSimulator{simulatorState: newSimulatorState(serverID, seed)}
}

func (t *ThermalPowerSimulator) Kind() Subsystem { return SubsystemThermal }

// Status reports thermal zone temperatures, power draw, and fan speed for
// one tick. OVERHEAT drifts temperatures upward by severity °C per elapsed
// tick, capped; FAN_FAILURE stops the fan and drifts temperatures slowly.
func (t *ThermalPowerSimulator) Status() telemetry.Sample {
	elapsed := t.step()

	cpuTemp := thermalCPUTempC + t.noise.Jitter(thermalTempNoiseC)
	dimmTemp := thermalDIMMTempC + t.noise.Jitter(thermalTempNoiseC)
	power := thermalPowerDrawW + t.noise.Jitter(thermalPowerNoiseW)
	fan := thermalFanRPM

	if t.failure != nil {
		switch t.failure.Type {
		case FailureOverheat:
			drift := t.failure.Severity * float64(elapsed)
			cpuTemp = capAt(cpuTemp+drift, thermalMaxTempC)
			dimmTemp = capAt(dimmTemp+drift, thermalMaxTempC)
		case FailurePowerSpike:
			power = t.failure.param("power_w", powerSpikeDefaultW) + t.noise.Jitter(thermalPowerNoiseW)
		case FailureFanFailure:
			fan = 0
			drift := fanFailDriftCPerSec * float64(elapsed)
			cpuTemp = capAt(cpuTemp+drift, thermalMaxTempC)
			dimmTemp = capAt(dimmTemp+drift, thermalMaxTempC)
		}
	}

	return t.sample(SubsystemThermal, map[string]float64{
		telemetry.MetricThermalCPUTempC:  cpuTemp,
		telemetry.MetricThermalDIMMTempC: dimmTemp,
		telemetry.MetricInletTempC:       thermalInletTempC,
		telemetry.MetricExhaustTempC:     thermalExhaustTempC,
		telemetry.MetricPowerDrawW:       power,
		telemetry.MetricFanRPM:           fan,
	})
}

// InjectFailure supports OVERHEAT, POWER_SPIKE, and FAN_FAILURE.
func (t *ThermalPowerSimulator) InjectFailure(spec FailureSpec) error {
	switch spec.Type {
	case FailureOverheat, FailurePowerSpike, FailureFanFailure:
		t.inject(spec)
		return nil
	}
	return unsupportedFailure(SubsystemThermal, spec.Type)
}

// Reset clears any injected failure and restores nominal baselines.
func (t *ThermalPowerSimulator) Reset() { t.reset() }

// Telemetry sample types shared by simulators, checks, and reports.
package telemetry

import "time"

// Sample is one point-in-time set of readings from a hardware component.
// Tick counts simulated elapsed seconds since the component was constructed;
// histories are append-only and ordered by Tick.
type Sample struct {
	ServerID  string             `json:"server_id"`
	Subsystem string             `json:"subsystem"`
	Tick      int                `json:"tick"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp time.Time          `json:"ts"`
}

// Metric returns the named metric value, or 0 if the sample does not carry it.
func (s Sample) Metric(name string) float64 {
	return s.Metrics[name]
}

// Has reports whether the sample carries the named metric.
func (s Sample) Has(name string) bool {
	_, ok := s.Metrics[name]
	return ok
}

// Metric names emitted by the CPU simulator.
const (
	MetricCPUUtilization = "utilization"
	MetricCPUFreqGHz     = "frequency_ghz"
	MetricCPUTempC       = "temperature_c"
	MetricCPUThrottled   = "throttled" // 0 or 1
)

// Metric names emitted by the memory simulator.
const (
	MetricECCCorrectable   = "ecc_correctable_total"
	MetricECCUncorrectable = "ecc_uncorrectable_total"
	MetricECCSlot          = "ecc_slot" // DIMM slot carrying injected errors
	MetricDIMMTempC        = "dimm_temp_c"
	MetricMemCapacityGB    = "capacity_gb"
)

// Metric names emitted by the NIC simulator.
const (
	MetricBandwidthGbps = "bandwidth_gbps"
	MetricPacketLoss    = "packet_loss_rate"
	MetricLinkUp        = "link_up" // 0 or 1
	MetricLinkSpeedGbps = "link_speed_gbps"
)

// Metric names emitted by the thermal/power simulator.
const (
	MetricThermalCPUTempC  = "cpu_temp_c"
	MetricThermalDIMMTempC = "thermal_dimm_temp_c"
	MetricInletTempC       = "inlet_temp_c"
	MetricExhaustTempC     = "exhaust_temp_c"
	MetricPowerDrawW       = "power_draw_w"
	MetricFanRPM           = "fan_rpm"
)

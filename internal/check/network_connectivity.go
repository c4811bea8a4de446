package check

import (
	"fmt"

	"fleetbringup/internal/hardware"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

// warnBandFraction defines the WARN zone: bandwidth below target but within
// 5% of it, with packet loss inside the threshold. This is the only module
// with a WARN zone.
const warnBandFraction = 0.95

// NetworkConnectivity validates link state, achieved bandwidth against a
// target, and packet loss against a threshold.
type NetworkConnectivity struct{}

func (NetworkConnectivity) Name() string                  { return "network_connectivity" }
func (NetworkConnectivity) Subsystem() hardware.Subsystem { return hardware.SubsystemNetwork }

func (NetworkConnectivity) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "target_bandwidth_gbps", Kind: ParamNumber, Default: float64(10)},
		{Name: "packet_loss_threshold", Kind: ParamNumber, Default: 0.01},
		{Name: "test_duration_sec", Kind: ParamNumber, Default: float64(10)},
		{Name: "inject_packet_loss", Kind: ParamBool, Default: false},
		{Name: "packet_loss_rate", Kind: ParamNumber, Default: 0.05},
		{Name: "inject_link_down", Kind: ParamBool, Default: false},
	}
}

func (NetworkConnectivity) Samples(p Params) int {
	n := p.Int("test_duration_sec")
	if n < 1 {
		n = 1
	}
	return n
}

func (NetworkConnectivity) Injection(p Params) (hardware.FailureSpec, bool) {
	if p.Bool("inject_link_down") {
		return hardware.FailureSpec{Type: hardware.FailureLinkDown}, true
	}
	if p.Bool("inject_packet_loss") {
		return hardware.FailureSpec{
			Type:   hardware.FailurePacketLoss,
			Params: map[string]float64{"loss_rate": p.Float("packet_loss_rate")},
		}, true
	}
	return hardware.FailureSpec{}, false
}

func (n NetworkConnectivity) Evaluate(history []telemetry.Sample, p Params) report.TestResult {
	target := p.Float("target_bandwidth_gbps")
	lossThreshold := p.Float("packet_loss_threshold")
	result := report.TestResult{
		Name:        n.Name(),
		DurationSec: float64(len(history)),
	}

	// Worst observations across the window drive the verdict.
	bandwidth := history[0].Metric(telemetry.MetricBandwidthGbps)
	loss := history[0].Metric(telemetry.MetricPacketLoss)
	linkUp := true
	for _, s := range history {
		if s.Metric(telemetry.MetricLinkUp) == 0 {
			linkUp = false
		}
		if b := s.Metric(telemetry.MetricBandwidthGbps); b < bandwidth {
			bandwidth = b
		}
		if l := s.Metric(telemetry.MetricPacketLoss); l > loss {
			loss = l
		}
	}

	if !linkUp {
		result.Status = report.StatusFail
		result.Subsystem = string(hardware.SubsystemNetwork)
		result.FailureReason = "Link down"
		return result
	}
	if loss > lossThreshold {
		result.Status = report.StatusFail
		result.Subsystem = string(hardware.SubsystemNetwork)
		result.FailureReason = fmt.Sprintf("Excessive packet loss: %.2f%% above threshold %.2f%%", loss*100, lossThreshold*100)
		return result
	}
	if bandwidth < target*warnBandFraction {
		result.Status = report.StatusFail
		result.Subsystem = string(hardware.SubsystemNetwork)
		result.FailureReason = fmt.Sprintf("Bandwidth below target: %.2f Gbps < %.2f Gbps", bandwidth, target*warnBandFraction)
		return result
	}
	if bandwidth < target {
		result.Status = report.StatusWarn
		result.Subsystem = string(hardware.SubsystemNetwork)
		result.FailureReason = fmt.Sprintf("Bandwidth marginal: %.2f Gbps within 5%% of target %.2f Gbps", bandwidth, target)
		return result
	}

	result.Status = report.StatusPass
	return result
}

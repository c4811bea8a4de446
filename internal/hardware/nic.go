package hardware

import "fleetbringup/internal/telemetry"

const (
	nicLinkSpeedGbps   = 25.0
	nicNominalEffLow   = 0.97 // nominal bandwidth as fraction of link speed
	nicNominalEffHigh  = 1.00
	nicNominalLossMax  = 0.0005
	nicDegradedLossDef = 0.05
)

// NICSimulator models link state, bandwidth, and packet loss.
type NICSimulator struct {
	simulatorState
}

// NewNICSimulator returns a NIC simulator seeded for reproducible telemetry.
func NewNICSimulator(serverID string, seed int64) *NICSimulator {
	return &NICSimulator{simulatorState: newSimulatorState(serverID, seed)}
}

func (n *NICSimulator) Kind() Subsystem { return SubsystemNetwork }

// Status reports link state, achieved bandwidth, and packet loss for one tick.
// PACKET_LOSS elevates loss to a fixed degraded value; LINK_DOWN zeroes the link.
func (n *NICSimulator) Status() telemetry.Sample {
	n.step()

	linkUp := true
	bandwidth := nicLinkSpeedGbps * n.noise.Between(nicNominalEffLow, nicNominalEffHigh)
	loss := n.noise.Between(0, nicNominalLossMax)

	if n.failure != nil {
		switch n.failure.Type {
		case FailurePacketLoss:
			loss = n.failure.param("loss_rate", nicDegradedLossDef)
			bandwidth = n.failure.param("bandwidth_gbps", nicLinkSpeedGbps*(1-loss))
		case FailureLinkDown:
			linkUp = false
			bandwidth = 0
			loss = 1
		}
	}

	return n.sample(SubsystemNetwork, map[string]float64{
		telemetry.MetricLinkUp:        boolMetric(linkUp),
		telemetry.MetricBandwidthGbps: bandwidth,
		telemetry.MetricPacketLoss:    loss,
		telemetry.MetricLinkSpeedGbps: nicLinkSpeedGbps,
	})
}

// InjectFailure supports PACKET_LOSS and LINK_DOWN.
func (n *NICSimulator) InjectFailure(spec FailureSpec) error {
	switch spec.Type {
	case FailurePacketLoss, FailureLinkDown:
		n.inject(spec)
		return nil
	}
	return unsupportedFailure(SubsystemNetwork, spec.Type)
}

// Reset clears any injected failure and restores the nominal link.
func (n *NICSimulator) Reset() { n.reset() }

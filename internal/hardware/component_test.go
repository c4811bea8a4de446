package hardware

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"fleetbringup/internal/telemetry"
)

func TestNewKnownSubsystems(t *testing.T) {
	for _, kind := range Subsystems {
		c, err := New(kind, "svr-1", 1)
		if err != nil {
			t.Fatalf("New(%s) returned error: %v", kind, err)
		}
		if c.Kind() != kind {
			t.Errorf("Kind()=%s, want %s", c.Kind(), kind)
		}
	}
	if _, err := New("gpu", "svr-1", 1); err == nil {
		t.Errorf("expected error for unknown subsystem")
	}
}

func TestStatusAdvancesTick(t *testing.T) {
	c := NewCPUSimulator("svr-1", 7)
	first := c.Status()
	second := c.Status()
	if first.Tick != 1 || second.Tick != 2 {
		t.Errorf("expected ticks 1,2 got %d,%d", first.Tick, second.Tick)
	}
	if first.ServerID != "svr-1" || first.Subsystem != string(SubsystemCPU) {
		t.Errorf("unexpected sample identity: %+v", first)
	}
}

func TestSeededTelemetryDeterminism(t *testing.T) {
	for _, kind := range Subsystems {
		a, _ := New(kind, "svr-1", 42)
		// Construction time must not leak into samples.
		time.Sleep(2 * time.Millisecond)
		b, _ := New(kind, "svr-1", 42)
		for i := 0; i < 50; i++ {
			sa := a.Status()
			sb := b.Status()
			if !reflect.DeepEqual(sa, sb) {
				t.Fatalf("%s: samples diverged at tick %d:\n  %+v\n  %+v", kind, sa.Tick, sa, sb)
			}
		}
	}
}

func TestSampleTimestampIsSimulatedTime(t *testing.T) {
	c := NewCPUSimulator("svr-1", 7)
	first := c.Status()
	second := c.Status()
	if got := second.Timestamp.Sub(first.Timestamp); got != time.Second {
		t.Errorf("expected one simulated second between ticks, got %v", got)
	}
	if first.Timestamp.Before(sampleEpoch) {
		t.Errorf("timestamp precedes epoch: %v", first.Timestamp)
	}
}

func TestInjectUnsupportedFailureMode(t *testing.T) {
	cases := []struct {
		c  Component
		ft FailureType
	}{
		{NewCPUSimulator("s", 1), FailureECCError},
		{NewMemorySimulator("s", 1), FailureOverheat},
		{NewNICSimulator("s", 1), FailureThermalThrottle},
		{NewThermalPowerSimulator("s", 1), FailurePacketLoss},
	}
	for _, tc := range cases {
		err := tc.c.InjectFailure(FailureSpec{Type: tc.ft})
		if !errors.Is(err, ErrInvalidFailureMode) {
			t.Errorf("%s.InjectFailure(%s): want ErrInvalidFailureMode, got %v",
				tc.c.Kind(), tc.ft, err)
		}
	}
}

func TestInjectLastWriteWins(t *testing.T) {
	n := NewNICSimulator("svr-1", 3)
	if err := n.InjectFailure(FailureSpec{Type: FailurePacketLoss, Params: map[string]float64{"loss_rate": 0.08}}); err != nil {
		t.Fatal(err)
	}
	if err := n.InjectFailure(FailureSpec{Type: FailureLinkDown}); err != nil {
		t.Fatal(err)
	}
	s := n.Status()
	if s.Metric(telemetry.MetricLinkUp) != 0 {
		t.Errorf("expected link down after replacement, got link_up=%f", s.Metric(telemetry.MetricLinkUp))
	}
}

func TestInjectIdempotent(t *testing.T) {
	spec := FailureSpec{Type: FailureOverheat, Severity: 2, Seed: 42}
	tp := NewThermalPowerSimulator("svr-1", 42)
	if err := tp.InjectFailure(spec); err != nil {
		t.Fatal(err)
	}
	tp.Status()
	tp.Status()
	// Re-injecting the identical spec must not restart the drift.
	if err := tp.InjectFailure(spec); err != nil {
		t.Fatal(err)
	}
	s := tp.Status()
	// Three ticks elapsed since injection: drift is severity*3 around baseline.
	temp := s.Metric(telemetry.MetricThermalCPUTempC)
	if temp < thermalCPUTempC+2*3-thermalTempNoiseC {
		t.Errorf("drift restarted by redundant injection: cpu_temp=%f", temp)
	}
}

func TestOverheatDriftMonotonicAndCapped(t *testing.T) {
	tp := NewThermalPowerSimulator("svr-1", 1)
	if err := tp.InjectFailure(FailureSpec{Type: FailureOverheat, Severity: 5}); err != nil {
		t.Fatal(err)
	}
	prev := -1.0
	var last float64
	for i := 0; i < 40; i++ {
		s := tp.Status()
		last = s.Metric(telemetry.MetricThermalCPUTempC)
		// Severity dominates noise, so the series climbs until the cap.
		if last < prev-2*thermalTempNoiseC {
			t.Fatalf("temperature fell during overheat: %f after %f", last, prev)
		}
		if last > thermalMaxTempC {
			t.Fatalf("temperature exceeded cap: %f", last)
		}
		prev = last
	}
	if last != thermalMaxTempC {
		t.Errorf("expected capped temperature %f, got %f", thermalMaxTempC, last)
	}
}

func TestResetRestoresNominal(t *testing.T) {
	tp := NewThermalPowerSimulator("svr-9", 42)
	if err := tp.InjectFailure(FailureSpec{Type: FailureOverheat, Severity: 2, Seed: 42}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		tp.Status()
	}
	tp.Reset()
	for i := 0; i < 20; i++ {
		s := tp.Status()
		temp := s.Metric(telemetry.MetricThermalCPUTempC)
		if temp < thermalCPUTempC-thermalTempNoiseC || temp > thermalCPUTempC+thermalTempNoiseC {
			t.Errorf("post-reset cpu_temp outside nominal band: %f", temp)
		}
	}
	// Reset is idempotent.
	tp.Reset()
	tp.Reset()
	s := tp.Status()
	if s.Metric(telemetry.MetricFanRPM) != thermalFanRPM {
		t.Errorf("unexpected fan speed after repeated reset: %f", s.Metric(telemetry.MetricFanRPM))
	}
}

func TestMemoryECCAccumulation(t *testing.T) {
	m := NewMemorySimulator("svr-1", 5)
	if err := m.InjectFailure(FailureSpec{Type: FailureECCError, Severity: 3, Seed: 40}); err != nil {
		t.Fatal(err)
	}
	var prev float64
	for i := 1; i <= 5; i++ {
		s := m.Status()
		total := s.Metric(telemetry.MetricECCCorrectable)
		if total != prev+3 {
			t.Fatalf("expected counter to grow by severity per sample, got %f after %f", total, prev)
		}
		if slot := s.Metric(telemetry.MetricECCSlot); slot != 4 { // 40 % 12
			t.Errorf("expected slot 4 from seed, got %f", slot)
		}
		prev = total
	}
	m.Reset()
	if s := m.Status(); s.Metric(telemetry.MetricECCCorrectable) != 0 {
		t.Errorf("correctable counter survived reset")
	}
}

func TestNICPacketLossDegradedValue(t *testing.T) {
	n := NewNICSimulator("svr-1", 9)
	if err := n.InjectFailure(FailureSpec{Type: FailurePacketLoss, Params: map[string]float64{
		"loss_rate":      0.02,
		"bandwidth_gbps": 9.5,
	}}); err != nil {
		t.Fatal(err)
	}
	s := n.Status()
	if s.Metric(telemetry.MetricPacketLoss) != 0.02 {
		t.Errorf("expected fixed degraded loss 0.02, got %f", s.Metric(telemetry.MetricPacketLoss))
	}
	if s.Metric(telemetry.MetricBandwidthGbps) != 9.5 {
		t.Errorf("expected forced bandwidth 9.5, got %f", s.Metric(telemetry.MetricBandwidthGbps))
	}
}

func TestCPUThrottleTelemetry(t *testing.T) {
	c := NewCPUSimulator("svr-1", 2)
	if err := c.InjectFailure(FailureSpec{Type: FailureThermalThrottle, Severity: 1}); err != nil {
		t.Fatal(err)
	}
	s := c.Status()
	if s.Metric(telemetry.MetricCPUThrottled) != 1 {
		t.Errorf("expected throttled flag set")
	}
	if s.Metric(telemetry.MetricCPUTempC) < cpuThrottleTempC {
		t.Errorf("expected throttle temperature >= %f, got %f", cpuThrottleTempC, s.Metric(telemetry.MetricCPUTempC))
	}
	if s.Metric(telemetry.MetricCPUFreqGHz) >= cpuBaseFreqGHz {
		t.Errorf("expected reduced frequency, got %f", s.Metric(telemetry.MetricCPUFreqGHz))
	}
}

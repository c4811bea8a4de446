package check

import (
	"errors"
	"strings"
	"testing"

	"fleetbringup/internal/hardware"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

func resolve(t *testing.T, name string, raw map[string]any) (Check, Params) {
	t.Helper()
	c, p, err := Default().Resolve(name, raw)
	if err != nil {
		t.Fatalf("Resolve(%s): %v", name, err)
	}
	return c, p
}

func cpuSamples(n int, compliant func(i int) bool) []telemetry.Sample {
	samples := make([]telemetry.Sample, n)
	for i := range samples {
		util := 0.96
		if !compliant(i) {
			util = 0.50
		}
		samples[i] = telemetry.Sample{Tick: i + 1, Metrics: map[string]float64{
			telemetry.MetricCPUUtilization: util,
			telemetry.MetricCPUThrottled:   0,
		}}
	}
	return samples
}

func TestResolveDefaultsAndErrors(t *testing.T) {
	_, p := resolve(t, "cpu_stress", map[string]any{"duration_sec": 30})
	if p.Int("duration_sec") != 30 {
		t.Errorf("explicit param lost: %v", p["duration_sec"])
	}
	if p.Float("failure_threshold") != 0.90 {
		t.Errorf("default not applied: %v", p["failure_threshold"])
	}

	if _, _, err := Default().Resolve("disk_io", nil); !errors.Is(err, ErrBadParams) {
		t.Errorf("unknown test: want ErrBadParams, got %v", err)
	}
	if _, _, err := Default().Resolve("cpu_stress", map[string]any{"bogus": 1}); !errors.Is(err, ErrBadParams) {
		t.Errorf("unknown parameter: want ErrBadParams, got %v", err)
	}
	if _, _, err := Default().Resolve("cpu_stress", map[string]any{"duration_sec": "long"}); !errors.Is(err, ErrBadParams) {
		t.Errorf("wrong type: want ErrBadParams, got %v", err)
	}
	if _, _, err := Default().Resolve("memory_integrity", map[string]any{"inject_ecc_error": 1}); !errors.Is(err, ErrBadParams) {
		t.Errorf("bool parameter with number: want ErrBadParams, got %v", err)
	}
}

func TestRegistryNames(t *testing.T) {
	want := []string{"cpu_stress", "memory_integrity", "network_connectivity", "thermal_power_sanity"}
	got := Default().Names()
	if len(got) != len(want) {
		t.Fatalf("Names()=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d]=%s, want %s", i, got[i], want[i])
		}
	}
}

func TestCPUStressPassAtThreshold(t *testing.T) {
	c, p := resolve(t, "cpu_stress", map[string]any{"duration_sec": 100, "failure_threshold": 0.95})
	// 96 of 100 samples compliant.
	history := cpuSamples(100, func(i int) bool { return i >= 4 })
	r := c.Evaluate(history, p)
	if r.Status != report.StatusPass {
		t.Errorf("expected PASS at 96%% compliance, got %s (%s)", r.Status, r.FailureReason)
	}
	if r.DurationSec != 100 {
		t.Errorf("duration should be simulated seconds: %f", r.DurationSec)
	}
}

func TestCPUStressFailBelowThreshold(t *testing.T) {
	c, p := resolve(t, "cpu_stress", map[string]any{"duration_sec": 100, "failure_threshold": 0.95})
	history := cpuSamples(100, func(i int) bool { return i >= 10 })
	r := c.Evaluate(history, p)
	if r.Status != report.StatusFail {
		t.Fatalf("expected FAIL at 90%% compliance, got %s", r.Status)
	}
	if !strings.Contains(r.FailureReason, "0.900") {
		t.Errorf("reason should cite the failing fraction: %q", r.FailureReason)
	}
	if r.Subsystem != "cpu" {
		t.Errorf("subsystem tag = %q, want cpu", r.Subsystem)
	}
}

func TestCPUStressThrottleFails(t *testing.T) {
	c, p := resolve(t, "cpu_stress", nil)
	history := cpuSamples(10, func(i int) bool { return true })
	history[3].Metrics[telemetry.MetricCPUThrottled] = 1
	r := c.Evaluate(history, p)
	if r.Status != report.StatusFail || !strings.Contains(r.FailureReason, "throttle") {
		t.Errorf("expected throttle FAIL, got %s (%s)", r.Status, r.FailureReason)
	}
}

func TestMemoryIntegrityECCFailure(t *testing.T) {
	c, p := resolve(t, "memory_integrity", map[string]any{"passes": 3, "inject_ecc_error": true})

	spec, ok := c.Injection(p)
	if !ok || spec.Type != hardware.FailureECCError {
		t.Fatalf("expected ECC_ERROR self-injection, got %+v ok=%v", spec, ok)
	}

	sim := hardware.NewMemorySimulator("svr-1", 1)
	if err := sim.InjectFailure(spec); err != nil {
		t.Fatal(err)
	}
	var history []telemetry.Sample
	for i := 0; i < c.Samples(p); i++ {
		history = append(history, sim.Status())
	}

	r := c.Evaluate(history, p)
	if r.Status != report.StatusFail {
		t.Fatalf("expected FAIL, got %s", r.Status)
	}
	if !strings.Contains(r.FailureReason, "ECC correctable error detected on DIMM slot 3") {
		t.Errorf("unexpected reason: %q", r.FailureReason)
	}
	if r.Subsystem != "memory" {
		t.Errorf("subsystem tag = %q, want memory", r.Subsystem)
	}
}

func TestMemoryIntegrityPassClean(t *testing.T) {
	c, p := resolve(t, "memory_integrity", map[string]any{"passes": 3})
	sim := hardware.NewMemorySimulator("svr-1", 1)
	var history []telemetry.Sample
	for i := 0; i < c.Samples(p); i++ {
		history = append(history, sim.Status())
	}
	if r := c.Evaluate(history, p); r.Status != report.StatusPass {
		t.Errorf("expected PASS on clean memory, got %s (%s)", r.Status, r.FailureReason)
	}
}

func netSample(bandwidth, loss float64, linkUp bool) telemetry.Sample {
	up := 0.0
	if linkUp {
		up = 1
	}
	return telemetry.Sample{Metrics: map[string]float64{
		telemetry.MetricBandwidthGbps: bandwidth,
		telemetry.MetricPacketLoss:    loss,
		telemetry.MetricLinkUp:        up,
	}}
}

func TestNetworkConnectivityVerdicts(t *testing.T) {
	cases := []struct {
		name       string
		bandwidth  float64
		loss       float64
		linkUp     bool
		want       report.Status
		reasonPart string
	}{
		{"nominal", 10.2, 0.001, true, report.StatusPass, ""},
		{"loss exceeded", 9.5, 0.02, true, report.StatusFail, "packet loss"},
		{"bandwidth low", 9.0, 0.001, true, report.StatusFail, "Bandwidth below target"},
		{"warn band", 9.6, 0.001, true, report.StatusWarn, "marginal"},
		{"link down", 0, 1, false, report.StatusFail, "Link down"},
	}
	for _, tc := range cases {
		c, p := resolve(t, "network_connectivity", map[string]any{
			"target_bandwidth_gbps": 10,
			"packet_loss_threshold": 0.01,
			"test_duration_sec":     3,
		})
		history := []telemetry.Sample{
			netSample(tc.bandwidth, tc.loss, tc.linkUp),
			netSample(tc.bandwidth, tc.loss, tc.linkUp),
			netSample(tc.bandwidth, tc.loss, tc.linkUp),
		}
		r := c.Evaluate(history, p)
		if r.Status != tc.want {
			t.Errorf("%s: status=%s, want %s (%s)", tc.name, r.Status, tc.want, r.FailureReason)
			continue
		}
		if tc.reasonPart != "" && !strings.Contains(strings.ToLower(r.FailureReason), strings.ToLower(tc.reasonPart)) {
			t.Errorf("%s: reason %q missing %q", tc.name, r.FailureReason, tc.reasonPart)
		}
	}
}

func thermalSample(cpuTemp, dimmTemp, power float64) telemetry.Sample {
	return telemetry.Sample{Metrics: map[string]float64{
		telemetry.MetricThermalCPUTempC:  cpuTemp,
		telemetry.MetricThermalDIMMTempC: dimmTemp,
		telemetry.MetricPowerDrawW:       power,
	}}
}

func TestThermalPowerSanityVerdicts(t *testing.T) {
	c, p := resolve(t, "thermal_power_sanity", map[string]any{
		"max_cpu_temp_c":  85,
		"max_dimm_temp_c": 75,
	})

	ok := []telemetry.Sample{thermalSample(50, 55, 350), thermalSample(51, 54, 360)}
	if r := c.Evaluate(ok, p); r.Status != report.StatusPass {
		t.Errorf("expected PASS, got %s (%s)", r.Status, r.FailureReason)
	}

	hotCPU := []telemetry.Sample{thermalSample(50, 55, 350), thermalSample(92, 55, 350)}
	r := c.Evaluate(hotCPU, p)
	if r.Status != report.StatusFail || !strings.Contains(r.FailureReason, "CPU temperature") {
		t.Errorf("expected CPU temp FAIL, got %s (%s)", r.Status, r.FailureReason)
	}

	hotDIMM := []telemetry.Sample{thermalSample(50, 82, 350)}
	r = c.Evaluate(hotDIMM, p)
	if r.Status != report.StatusFail || !strings.Contains(r.FailureReason, "DIMM temperature") {
		t.Errorf("expected DIMM temp FAIL, got %s (%s)", r.Status, r.FailureReason)
	}

	spike := []telemetry.Sample{thermalSample(50, 55, 900)}
	r = c.Evaluate(spike, p)
	if r.Status != report.StatusFail || !strings.Contains(r.FailureReason, "Power draw") {
		t.Errorf("expected power FAIL, got %s (%s)", r.Status, r.FailureReason)
	}
}

func TestInjectionFlags(t *testing.T) {
	c, p := resolve(t, "network_connectivity", map[string]any{"inject_packet_loss": true, "packet_loss_rate": 0.03})
	spec, ok := c.Injection(p)
	if !ok || spec.Type != hardware.FailurePacketLoss || spec.Params["loss_rate"] != 0.03 {
		t.Errorf("unexpected injection: %+v ok=%v", spec, ok)
	}

	c, p = resolve(t, "cpu_stress", nil)
	if _, ok := c.Injection(p); ok {
		t.Errorf("no injection expected without flags")
	}
}

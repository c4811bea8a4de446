// Validation report and fleet snapshot schema. These structs are the stable
// in-memory contract consumed by report writers and the admin endpoints.
package report

import "time"

// Status is a test verdict.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// TestResult is the outcome of one test spec execution. Immutable once
// produced; DurationSec is simulated elapsed seconds, never wall clock.
type TestResult struct {
	Name          string  `json:"name"`
	Status        Status  `json:"status"`
	DurationSec   float64 `json:"duration_sec"`
	FailureReason string  `json:"failure_reason,omitempty"`
	Subsystem     string  `json:"subsystem,omitempty"`
}

// FailureSummary is the triage hint attached to a non-PASS report.
type FailureSummary struct {
	Subsystem string `json:"subsystem"`
	RootCause string `json:"root_cause"`
	Action    string `json:"action"`
}

// ValidationReport is the result of one server's validation run. Assembled
// once by the orchestrator and never mutated afterwards.
type ValidationReport struct {
	RunID          string          `json:"run_id"`
	ServerID       string          `json:"server_id"`
	Timestamp      time.Time       `json:"timestamp"`
	TestPlan       string          `json:"test_plan"`
	OverallStatus  Status          `json:"overall_status"`
	Tests          []TestResult    `json:"tests"`
	FailureSummary *FailureSummary `json:"failure_summary,omitempty"`
	// Error carries a run-level failure (config or injection error) for
	// degraded reports produced in fleet mode.
	Error string `json:"error,omitempty"`
}

// Offender is one entry of the fleet top-offenders ranking.
type Offender struct {
	ServerID    string `json:"server_id"`
	HealthScore int    `json:"health_score"`
}

// FleetSnapshot aggregates completed per-server reports. Derived, read-only.
type FleetSnapshot struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	TestPlan     string             `json:"test_plan"`
	Reports      []ValidationReport `json:"reports"`
	TopOffenders []Offender         `json:"top_offenders"`
}

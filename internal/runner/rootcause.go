package runner

import (
	"regexp"
	"strings"

	"fleetbringup/internal/report"
)

// triageEntry maps a (subsystem, reason-substring) pair to a fixed
// root-cause/action hint. First match wins, so order specific patterns
// before general ones.
type triageEntry struct {
	subsystem string
	pattern   string
	rootCause string
	action    string
}

var triageTable = []triageEntry{
	{"memory", "ECC UNCORRECTABLE", "ECC uncorrectable error", "CRITICAL: Replace DIMM slot N immediately"},
	{"memory", "ECC", "ECC correctable error", "Replace DIMM slot N, rerun validation"},
	{"cpu", "thermal throttle", "CPU thermal throttling", "Check thermal paste, verify fan operation"},
	{"cpu", "stress compliance", "CPU stress capability below threshold", "Check workload scheduler, verify CPU not in power-save mode"},
	{"network", "Link down", "Network link down", "Check cable, verify switch port configuration"},
	{"network", "packet loss", "Excessive packet loss", "Check cable integrity, inspect switch port"},
	{"network", "Bandwidth", "Bandwidth below target", "Check NIC firmware, verify switch configuration, inspect cable"},
	{"thermal", "CPU temperature", "CPU overtemperature", "Check CPU heatsink, verify fan operation, inspect thermal paste"},
	{"thermal", "DIMM temperature", "DIMM overtemperature", "Check airflow, verify fan operation"},
	{"thermal", "Power draw", "Power draw anomaly", "Check PSU health, inspect power cabling"},
}

var dimmSlotRe = regexp.MustCompile(`DIMM slot (\d+)`)

// classify maps a failing test result to its triage hint. Unmapped
// combinations get a generic root cause rather than an error.
func classify(r report.TestResult) report.FailureSummary {
	for _, e := range triageTable {
		if e.subsystem != r.Subsystem {
			continue
		}
		if !strings.Contains(r.FailureReason, e.pattern) {
			continue
		}
		action := e.action
		if m := dimmSlotRe.FindStringSubmatch(r.FailureReason); m != nil {
			action = strings.ReplaceAll(action, "slot N", "slot "+m[1])
		}
		return report.FailureSummary{
			Subsystem: r.Subsystem,
			RootCause: e.rootCause,
			Action:    action,
		}
	}
	subsystem := r.Subsystem
	if subsystem == "" {
		subsystem = "unknown"
	}
	return report.FailureSummary{
		Subsystem: subsystem,
		RootCause: "Unclassified failure",
		Action:    "Manual investigation required",
	}
}

package report

import "sort"

// OverallStatus derives the report status from its test results.
// Precedence is absolute: FAIL beats WARN beats PASS.
func OverallStatus(results []TestResult) Status {
	status := StatusPass
	for _, r := range results {
		switch r.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			status = StatusWarn
		}
	}
	return status
}

// MostSevere returns the test result driving a non-PASS verdict: FAIL
// preferred over WARN, first occurrence in declaration order breaking ties.
// ok is false when every result passed.
func MostSevere(results []TestResult) (TestResult, bool) {
	for _, r := range results {
		if r.Status == StatusFail {
			return r, true
		}
	}
	for _, r := range results {
		if r.Status == StatusWarn {
			return r, true
		}
	}
	return TestResult{}, false
}

// HealthScore maps an overall status to the fleet ranking score.
// Lower scores rank as worse offenders.
func HealthScore(s Status) int {
	switch s {
	case StatusPass:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// RankOffenders orders servers ascending by health score, breaking ties by
// ascending lexical server id for determinism.
func RankOffenders(reports []ValidationReport) []Offender {
	offenders := make([]Offender, 0, len(reports))
	for _, r := range reports {
		offenders = append(offenders, Offender{
			ServerID:    r.ServerID,
			HealthScore: HealthScore(r.OverallStatus),
		})
	}
	sort.Slice(offenders, func(i, j int) bool {
		if offenders[i].HealthScore != offenders[j].HealthScore {
			return offenders[i].HealthScore < offenders[j].HealthScore
		}
		return offenders[i].ServerID < offenders[j].ServerID
	})
	return offenders
}

package report

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"
)

// ReadReports decodes a JSONL stream of validation reports, as produced by
// FileWriter or StdoutWriter.
func ReadReports(r io.Reader) ([]ValidationReport, error) {
	dec := json.NewDecoder(r)
	var reports []ValidationReport
	for {
		var rep ValidationReport
		if err := dec.Decode(&rep); err != nil {
			if errors.Is(err, io.EOF) {
				return reports, nil
			}
			return nil, err
		}
		reports = append(reports, rep)
	}
}

// ReadReportsFile opens a JSONL report file and decodes its reports.
func ReadReportsFile(path string) ([]ValidationReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReports(f)
}

// Summarize rebuilds a fleet snapshot from previously written reports.
func Summarize(reports []ValidationReport, now time.Time) FleetSnapshot {
	plan := ""
	if len(reports) > 0 {
		plan = reports[0].TestPlan
	}
	return FleetSnapshot{
		GeneratedAt:  now.UTC(),
		TestPlan:     plan,
		Reports:      reports,
		TopOffenders: RankOffenders(reports),
	}
}

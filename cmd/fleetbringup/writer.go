package main

import (
	"os"

	"fleetbringup/internal/report"
)

// newWriters assembles the report sink from flags and env vars. GreptimeDB
// is used when GREPTIMEDB_ENDPOINT is set and --print-only is off; file and
// CSV sinks stack on top via a multi-writer. The cleanup function flushes
// and closes any file-backed sinks.
func newWriters(printOnly bool, reportFile, csvFile string) (report.Writer, func(), error) {
	cleanup := func() {}

	base, err := baseWriter(printOnly)
	if err != nil {
		return nil, nil, err
	}
	if reportFile == "" && csvFile == "" {
		return base, cleanup, nil
	}

	writers := []report.Writer{base}
	closers := []func(){}
	if reportFile != "" {
		fw, err := report.NewFileWriter(reportFile, reportFile+".snapshot")
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		closers = append(closers, func() { fw.Close() })
	}
	if csvFile != "" {
		cw, err := report.NewCSVWriter(csvFile)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, cw)
		closers = append(closers, func() { cw.Close() })
	}
	cleanup = func() {
		for _, c := range closers {
			c()
		}
	}
	return report.NewMultiWriter(writers...), cleanup, nil
}

// baseWriter chooses the primary sink from printOnly and env vars.
func baseWriter(printOnly bool) (report.Writer, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return report.NewStdoutWriter(), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	table := os.Getenv("GREPTIMEDB_TABLE")
	if table == "" {
		table = "validation_results"
	}
	return report.NewGreptimeDBWriter(endpoint, "public", table)
}

// Writer implementation printing reports to STDOUT
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// StdoutWriter prints validation reports as JSON lines.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout}
}

// Write outputs a single validation report.
func (w *StdoutWriter) Write(r ValidationReport) error {
	data, _ := json.Marshal(r)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple validation reports.
func (w *StdoutWriter) WriteBatch(reports []ValidationReport) error {
	for _, r := range reports {
		_ = w.Write(r)
	}
	return nil
}

// WriteSnapshot outputs the fleet snapshot as a single JSON document.
func (w *StdoutWriter) WriteSnapshot(s FleetSnapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w.out, string(data))
	return nil
}

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"
)

// CSVWriter writes one row per test result, with server context, for
// spreadsheet triage. The header is written on creation. Safe for
// concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

var csvHeader = []string{
	"server_id", "timestamp", "test_plan", "overall_status",
	"test_name", "status", "duration_sec", "subsystem", "failure_reason",
}

// NewCSVWriter creates a CSVWriter at path.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVWriter{file: f, w: w}, nil
}

// Write appends one row per test result of the report.
func (c *CSVWriter) Write(r ValidationReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := r.Timestamp.UTC().Format(time.RFC3339)
	for _, t := range r.Tests {
		row := []string{
			r.ServerID, ts, r.TestPlan, string(r.OverallStatus),
			t.Name, string(t.Status), fmt.Sprintf("%g", t.DurationSec),
			t.Subsystem, t.FailureReason,
		}
		if err := c.w.Write(row); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

// WriteBatch appends rows for multiple reports.
func (c *CSVWriter) WriteBatch(reports []ValidationReport) error {
	for _, r := range reports {
		if err := c.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

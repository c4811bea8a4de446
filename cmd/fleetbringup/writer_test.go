package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fleetbringup/internal/report"
)

func TestNewWritersPrintOnly(t *testing.T) {
	w, cleanup, err := newWriters(true, "", "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*report.StdoutWriter); !ok {
		t.Fatalf("expected *report.StdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newWriters(false, "", "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*report.StdoutWriter); !ok {
		t.Fatalf("expected *report.StdoutWriter, got %T", w)
	}
}

func TestNewWritersReportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports.jsonl")
	w, cleanup, err := newWriters(true, path, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*report.MultiWriter); !ok {
		t.Fatalf("expected *report.MultiWriter, got %T", w)
	}

	rep := report.ValidationReport{
		RunID:         "run-1",
		ServerID:      "svr-001",
		Timestamp:     time.Now().UTC(),
		TestPlan:      "basic_validation",
		OverallStatus: report.StatusPass,
	}
	if err := w.Write(rep); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected report file to be non-empty")
	}
}

func TestNewWritersCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	w, cleanup, err := newWriters(true, "", path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	rep := report.ValidationReport{
		RunID:         "run-1",
		ServerID:      "svr-001",
		Timestamp:     time.Now().UTC(),
		TestPlan:      "basic_validation",
		OverallStatus: report.StatusPass,
		Tests:         []report.TestResult{{Name: "cpu_stress", Status: report.StatusPass, DurationSec: 30}},
	}
	if err := w.Write(rep); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cleanup()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected CSV file to be non-empty")
	}
}

func TestReadServers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.txt")
	content := "# rack 12\nsvr-001\n\nsvr-002\n  svr-003  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	servers, err := readServers(path)
	if err != nil {
		t.Fatalf("readServers: %v", err)
	}
	want := []string{"svr-001", "svr-002", "svr-003"}
	if len(servers) != len(want) {
		t.Fatalf("got %d servers, want %d", len(servers), len(want))
	}
	for i := range want {
		if servers[i] != want[i] {
			t.Errorf("server %d = %q, want %q", i, servers[i], want[i])
		}
	}
}

func TestReadServersEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.txt")
	if err := os.WriteFile(path, []byte("# nothing here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readServers(path); err == nil {
		t.Errorf("expected error for empty server list")
	}
}

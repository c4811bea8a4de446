package report

import (
	"encoding/json"
	"os"
	"sync"
)

// FileWriter writes validation reports to a JSONL file and, optionally, the
// fleet snapshot to a companion file. Safe for concurrent use.
type FileWriter struct {
	mu           sync.Mutex
	reportFile   *os.File
	snapshotFile *os.File
	reportEnc    *json.Encoder
	snapshotEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. snapshotPath may be empty to skip
// snapshot output.
func NewFileWriter(reportPath, snapshotPath string) (*FileWriter, error) {
	rf, err := os.Create(reportPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{reportFile: rf, reportEnc: json.NewEncoder(rf)}
	if snapshotPath != "" {
		sf, err := os.Create(snapshotPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.snapshotFile = sf
		fw.snapshotEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single validation report.
func (f *FileWriter) Write(r ValidationReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reportEnc.Encode(r)
}

// WriteBatch logs multiple validation reports.
func (f *FileWriter) WriteBatch(reports []ValidationReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range reports {
		if err := f.reportEnc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSnapshot logs the fleet snapshot, if enabled.
func (f *FileWriter) WriteSnapshot(s FleetSnapshot) error {
	if f.snapshotEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotEnc.Encode(s)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.reportFile != nil {
		if e := f.reportFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.snapshotFile != nil {
		if e := f.snapshotFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

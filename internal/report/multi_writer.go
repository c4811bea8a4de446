package report

// MultiWriter fans validation reports out to multiple writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a report to all writers.
func (mw *MultiWriter) Write(r ValidationReport) error {
	for _, w := range mw.writers {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple reports to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(reports []ValidationReport) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(reports); err != nil {
				return err
			}
			continue
		}
		for _, r := range reports {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSnapshot sends the snapshot to every writer that supports it.
func (mw *MultiWriter) WriteSnapshot(s FleetSnapshot) error {
	for _, w := range mw.writers {
		if sw, ok := w.(SnapshotWriter); ok {
			if err := sw.WriteSnapshot(s); err != nil {
				return err
			}
		}
	}
	return nil
}

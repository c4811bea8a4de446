package report

// Writer is an interface to support different report sinks.
type Writer interface {
	Write(ValidationReport) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]ValidationReport) error
}

// SnapshotWriter persists a completed fleet snapshot.
type SnapshotWriter interface {
	WriteSnapshot(FleetSnapshot) error
}

// WriteAll delivers reports to w, using batch mode when supported.
func WriteAll(w Writer, reports []ValidationReport) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(reports)
	}
	for _, r := range reports {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

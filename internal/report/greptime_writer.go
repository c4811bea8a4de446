package report

import (
	"context"
	"log"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter streams validation results to GreptimeDB so lab
// dashboards can query fleet history.
type GreptimeDBWriter struct {
	client *greptime.Client
	table  string
}

// NewGreptimeDBWriter creates a GreptimeDB writer. An empty tableName
// selects "fleet_validation".
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	if tableName == "" {
		tableName = "fleet_validation"
	}
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{client: client, table: tableName}, nil
}

// Write inserts a single validation report.
func (w *GreptimeDBWriter) Write(r ValidationReport) error {
	return w.WriteBatch([]ValidationReport{r})
}

// WriteBatch inserts multiple validation reports, one row per test result.
func (w *GreptimeDBWriter) WriteBatch(reports []ValidationReport) error {
	if len(reports) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("server_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("test_plan", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("test_name", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("run_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("overall_status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("duration_sec", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("subsystem", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("failure_reason", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("health_score", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	rows := 0
	for _, r := range reports {
		for _, t := range r.Tests {
			err := tbl.AddRow(
				r.ServerID, r.TestPlan, t.Name,
				r.RunID, string(t.Status), string(r.OverallStatus),
				t.DurationSec, t.Subsystem, t.FailureReason,
				int64(HealthScore(r.OverallStatus)), r.Timestamp,
			)
			if err != nil {
				return err
			}
			rows++
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}

	log.Printf("[GreptimeDBWriter] wrote %d rows", rows)
	return nil
}

package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fleetbringup/internal/check"
	"fleetbringup/internal/config"
	"fleetbringup/internal/hardware"
	"fleetbringup/internal/logging"
	"fleetbringup/internal/report"
)

// DefaultConcurrency bounds the fleet worker pool when the run config does
// not set one.
const DefaultConcurrency = 32

// Fleet runs the per-server orchestrator across many servers under a
// bounded worker pool. Each server's run is fully isolated; the only shared
// state is the mutex-guarded report collection.
type Fleet struct {
	cfg         *config.RunConfig
	concurrency int
	writer      report.Writer
	seed        int64
	now         func() time.Time
}

// FleetOption configures a Fleet.
type FleetOption func(*Fleet)

// WithConcurrency overrides the worker pool size.
func WithConcurrency(n int) FleetOption {
	return func(f *Fleet) { f.concurrency = n }
}

// WithWriter attaches a sink receiving each report as its server completes.
func WithWriter(w report.Writer) FleetOption {
	return func(f *Fleet) { f.writer = w }
}

// WithFleetSeed fixes the base seed shared by all server runs.
func WithFleetSeed(seed int64) FleetOption {
	return func(f *Fleet) { f.seed = seed }
}

// WithFleetClock overrides the wall clock.
func WithFleetClock(now func() time.Time) FleetOption {
	return func(f *Fleet) { f.now = now }
}

// NewFleet creates a fleet runner for the given run configuration.
func NewFleet(cfg *config.RunConfig, opts ...FleetOption) *Fleet {
	f := &Fleet{
		cfg:         cfg,
		concurrency: cfg.Concurrency,
		now:         time.Now,
	}
	if f.concurrency <= 0 {
		f.concurrency = DefaultConcurrency
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run validates every server and aggregates the completed reports into a
// fleet snapshot ranked by health score. Run-level errors on one server
// degrade only that server's report; a canceled context stops scheduling
// further servers and returns the snapshot of those already completed.
func (f *Fleet) Run(ctx context.Context, servers []string) (report.FleetSnapshot, error) {
	log := logging.FromContext(ctx)
	log.Info("starting fleet validation", "servers", len(servers), "concurrency", f.concurrency)

	// Reports keep input order; slots for canceled servers stay empty.
	slots := make([]*report.ValidationReport, len(servers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, serverID := range servers {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Cancellation happens between per-server units; a started
			// server always runs to completion.
			if err := gctx.Err(); err != nil {
				return err
			}
			rep := f.runServer(gctx, serverID)
			mu.Lock()
			slots[i] = &rep
			mu.Unlock()
			// Writers synchronize themselves; sink I/O must not serialize
			// the worker pool.
			if f.writer != nil {
				if err := f.writer.Write(rep); err != nil {
					log.Error("report write failed", "server_id", serverID, "err", err)
				}
			}
			return nil
		})
	}
	waitErr := g.Wait()

	reports := make([]report.ValidationReport, 0, len(servers))
	for _, r := range slots {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	snapshot := report.FleetSnapshot{
		GeneratedAt:  f.now().UTC(),
		TestPlan:     f.cfg.TestPlan.Name,
		Reports:      reports,
		TopOffenders: report.RankOffenders(reports),
	}

	log.Info("fleet validation complete", "completed", len(reports), "total", len(servers))
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return snapshot, waitErr
	}
	return snapshot, ctx.Err()
}

// runServer executes one isolated server run, converting run-level errors
// into a degraded report so other servers proceed unaffected.
func (f *Fleet) runServer(ctx context.Context, serverID string) report.ValidationReport {
	log := logging.FromContext(ctx)
	orch := NewOrchestrator(serverID, f.cfg, WithSeed(f.seed), WithClock(f.now))
	rep, err := orch.Run(ctx)
	if err != nil {
		log.Error("server run failed", "server_id", serverID, "err", err)
		return f.degradedReport(serverID, err)
	}
	return rep
}

func (f *Fleet) degradedReport(serverID string, err error) report.ValidationReport {
	rootCause := "Unclassified failure"
	switch {
	case errors.Is(err, hardware.ErrInvalidFailureMode):
		rootCause = "Invalid failure injection directive"
	case errors.Is(err, config.ErrConfig), errors.Is(err, check.ErrBadParams):
		rootCause = "Invalid test configuration"
	}
	return report.ValidationReport{
		RunID:         uuid.NewString(),
		ServerID:      serverID,
		Timestamp:     f.now().UTC(),
		TestPlan:      f.cfg.TestPlan.Name,
		OverallStatus: report.StatusFail,
		Error:         err.Error(),
		FailureSummary: &report.FailureSummary{
			Subsystem: "run",
			RootCause: rootCause,
			Action:    "Fix run configuration and rerun validation",
		},
	}
}

// Runner drives validation plans against simulated hardware: a per-server
// orchestrator, the failure injection controller, and the fleet pool.
package runner

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetbringup/internal/check"
	"fleetbringup/internal/config"
	"fleetbringup/internal/hardware"
	"fleetbringup/internal/logging"
	"fleetbringup/internal/report"
	"fleetbringup/internal/telemetry"
)

// Orchestrator executes one server's test plan. Simulators are constructed
// fresh per run and owned exclusively by this instance; nothing is shared
// across servers or reruns.
type Orchestrator struct {
	serverID string
	cfg      *config.RunConfig
	registry *check.Registry
	seed     int64
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSeed fixes the base seed deriving per-simulator noise sources.
func WithSeed(seed int64) Option {
	return func(o *Orchestrator) { o.seed = seed }
}

// WithClock overrides the wall clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithRegistry overrides the test module registry.
func WithRegistry(r *check.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// NewOrchestrator creates an orchestrator for one server run.
func NewOrchestrator(serverID string, cfg *config.RunConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		serverID: serverID,
		cfg:      cfg,
		registry: check.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// planItem is one resolved test spec, pinned to its declaration index.
type planItem struct {
	index  int
	check  check.Check
	params check.Params
}

// Run executes the plan and assembles the validation report. The returned
// error is run-level (config or injection); domain FAIL/WARN verdicts are
// carried inside the report.
func (o *Orchestrator) Run(ctx context.Context) (report.ValidationReport, error) {
	log := logging.FromContext(ctx).With("server_id", o.serverID)
	log.Info("starting validation run", "test_plan", o.cfg.TestPlan.Name)

	items, err := o.resolvePlan()
	if err != nil {
		return report.ValidationReport{}, err
	}

	components, err := o.buildComponents(items)
	if err != nil {
		return report.ValidationReport{}, err
	}

	injector := NewInjector(o.cfg.FailureInjection)
	if err := injector.Apply(components); err != nil {
		return report.ValidationReport{}, err
	}

	// Group items by subsystem: groups run concurrently, while items inside
	// a group execute serially against their shared simulator. Single-writer
	// discipline holds by construction, no runtime arbitration needed.
	groups := make(map[hardware.Subsystem][]planItem)
	for _, item := range items {
		kind := item.check.Subsystem()
		groups[kind] = append(groups[kind], item)
	}

	results := make([]report.TestResult, len(items))
	var wg sync.WaitGroup
	for kind, group := range groups {
		wg.Add(1)
		go func(kind hardware.Subsystem, group []planItem) {
			defer wg.Done()
			comp := components[kind]
			for _, item := range group {
				results[item.index] = o.runItem(comp, injector, item)
			}
		}(kind, group)
	}
	wg.Wait()

	rep := report.ValidationReport{
		RunID:         uuid.NewString(),
		ServerID:      o.serverID,
		Timestamp:     o.now().UTC(),
		TestPlan:      o.cfg.TestPlan.Name,
		OverallStatus: report.OverallStatus(results),
		Tests:         results,
	}
	if severe, ok := report.MostSevere(results); ok {
		summary := classify(severe)
		rep.FailureSummary = &summary
	}

	log.Info("validation run complete", "overall_status", rep.OverallStatus)
	return rep, nil
}

// resolvePlan validates every spec against the registry. A bad spec is
// fatal to the whole server run, reported distinct from any test result.
func (o *Orchestrator) resolvePlan() ([]planItem, error) {
	items := make([]planItem, 0, len(o.cfg.TestPlan.Tests))
	for i, spec := range o.cfg.TestPlan.Tests {
		c, params, err := o.registry.Resolve(spec.Name, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
		}
		items = append(items, planItem{index: i, check: c, params: params})
	}
	return items, nil
}

// buildComponents constructs one simulator per subsystem referenced by the
// plan or targeted by an injection directive.
func (o *Orchestrator) buildComponents(items []planItem) (map[hardware.Subsystem]hardware.Component, error) {
	needed := make(map[hardware.Subsystem]bool)
	for _, item := range items {
		needed[item.check.Subsystem()] = true
	}
	for _, d := range o.cfg.FailureInjection {
		needed[hardware.Subsystem(d.Subsystem)] = true
	}

	components := make(map[hardware.Subsystem]hardware.Component, len(needed))
	for kind := range needed {
		comp, err := hardware.New(kind, o.serverID, componentSeed(o.seed, o.serverID, kind))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
		}
		components[kind] = comp
	}
	return components, nil
}

// runItem executes one test spec against its simulator: apply any
// self-injection the module asks for, collect the sample history, evaluate.
// Spec-scoped injections are rolled back afterwards, restoring whatever
// run-scoped directive targeted the same simulator.
func (o *Orchestrator) runItem(comp hardware.Component, injector *Injector, item planItem) report.TestResult {
	selfInjected := false
	if spec, ok := item.check.Injection(item.params); ok {
		if err := comp.InjectFailure(spec); err != nil {
			return internalError(item.check, 0, err)
		}
		selfInjected = true
	}

	n := item.check.Samples(item.params)
	history := make([]telemetry.Sample, 0, n)
	for i := 0; i < n; i++ {
		history = append(history, comp.Status())
	}

	result := evaluate(item.check, history, item.params)

	if selfInjected {
		comp.Reset()
		if spec, ok := injector.DirectiveFor(comp.Kind()); ok {
			// Directive types were validated during Apply.
			_ = comp.InjectFailure(spec)
		}
	}
	return result
}

// evaluate runs a test module, converting an unexpected panic into a FAIL
// result so remaining specs still execute.
func evaluate(c check.Check, history []telemetry.Sample, params check.Params) (result report.TestResult) {
	defer func() {
		if r := recover(); r != nil {
			result = internalError(c, float64(len(history)), fmt.Errorf("%v", r))
		}
	}()
	return c.Evaluate(history, params)
}

func internalError(c check.Check, duration float64, err error) report.TestResult {
	return report.TestResult{
		Name:          c.Name(),
		Status:        report.StatusFail,
		DurationSec:   duration,
		FailureReason: fmt.Sprintf("internal error evaluating test: %v", err),
		Subsystem:     string(c.Subsystem()),
	}
}

// componentSeed derives a deterministic per-(server, subsystem) seed so a
// fixed base seed reproduces identical telemetry across runs.
func componentSeed(base int64, serverID string, kind hardware.Subsystem) int64 {
	h := fnv.New64a()
	h.Write([]byte(serverID))
	h.Write([]byte{'/'})
	h.Write([]byte(kind))
	return base ^ int64(h.Sum64())
}

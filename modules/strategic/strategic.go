// Package strategic implements the strategic agent (C8): a single-threaded
// actor that repeatedly re-runs the placement algorithm over a backlog of
// maintenance work orders, subject to per-resource capacity, and answers
// inbound mutation/read requests between iterations. Structurally grounded
// on the teacher's modules/backendscheduler.BackendScheduler: a
// dskit/services.Service with a starting/running/stopping lifecycle and a
// ticker-driven loop.
package strategic

import (
	"context"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/grafana/dskit/services"

	"github.com/mintmaint/strategic-scheduler/modules/strategic/capacity"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/plan"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/queue"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
	utillog "github.com/mintmaint/strategic-scheduler/pkg/util/log"
)

// Agent is the strategic agent loop (C8). It owns C3 (capacity), C4
// (queues), C5 (optimized-plan table) exclusively, and holds a handle to
// the shared SchedulingEnvironment (C1, C2), read only at construction
// (§5). There is no reload request: a running agent does not see a later
// SchedulingEnvironment.Reload.
type Agent struct {
	services.Service

	cfg Config
	env *SchedulingEnvironment

	engine *engine

	mailbox chan Request
	// snapshots is a buffered, best-effort outbound channel: a send that
	// would block drops the stale snapshot in favor of the new one, so a
	// slow or absent subscriber never stalls the agent loop.
	snapshots chan AgentStatusResponse

	iteration uint64
	objective float64
}

// New constructs the agent from a snapshot of the scheduling environment,
// deriving the initial priority queues (§4.4) and optimized-plan table
// (§4.5).
func New(cfg Config, env *SchedulingEnvironment) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, backlog := env.Snapshot()
	book := capacity.NewBook()
	queues := queue.NewQueues()
	finishPeriods := resolveFinishPeriods(catalog, backlog)
	optimized := plan.New(backlog.All(), catalog, finishPeriods)

	populateQueues(queues, backlog)

	a := &Agent{
		cfg:       cfg,
		env:       env,
		engine:    newEngine(catalog, backlog, book, queues, optimized),
		mailbox:   make(chan Request, cfg.MailboxBuffer),
		snapshots: make(chan AgentStatusResponse, 1),
	}
	a.Service = services.NewBasicService(a.starting, a.running, a.stopping)
	return a, nil
}

// populateQueues implements §4.4's initial-population rule.
func populateQueues(queues *queue.Queues, backlog *workorder.Store) {
	for _, wo := range backlog.All() {
		switch {
		case wo.UnloadingPoint.Present:
			queues.Unloading.Push(wo.Number, wo.OrderWeight)
		case wo.Revision.Shutdown || wo.Revision.Vendor:
			queues.ShutdownVendor.Push(wo.Number, wo.OrderWeight)
		default:
			queues.Normal.Push(wo.Number, wo.OrderWeight)
		}
	}
}

// resolveFinishPeriods maps each non-unloading-point order's
// latest_allowed_finish_date to the catalog period containing it, per
// §4.5. Orders whose date falls outside every period (or is zero) are left
// unmapped; their latest_allowed_finish_period stays nil and they simply
// never contribute a deviation penalty in the objective.
func resolveFinishPeriods(catalog *period.Catalog, backlog *workorder.Store) map[uint32]period.Period {
	out := make(map[uint32]period.Period, backlog.Len())
	for _, wo := range backlog.All() {
		if wo.UnloadingPoint.Present {
			continue
		}
		date := wo.OrderDates.LatestAllowedFinishDate
		if date.IsZero() {
			continue
		}
		for _, p := range catalog.Periods() {
			if !date.Before(p.StartDate) && date.Before(p.EndDate) {
				out[wo.Number] = p
				break
			}
		}
	}
	return out
}

// Mailbox returns the channel callers send Request values on.
func (a *Agent) Mailbox() chan<- Request {
	return a.mailbox
}

// Snapshots returns the outbound channel of per-iteration status
// snapshots.
func (a *Agent) Snapshots() <-chan AgentStatusResponse {
	return a.snapshots
}

func (a *Agent) starting(_ context.Context) error {
	level.Info(utillog.Logger).Log("msg", "strategic agent starting", "orders", a.engine.backlog.Len(), "periods", a.engine.catalog.Len())
	return nil
}

func (a *Agent) running(ctx context.Context) error {
	level.Info(utillog.Logger).Log("msg", "strategic agent running", "tick_interval", a.cfg.TickInterval)

	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := a.runIteration(); err != nil {
				return err
			}
			return nil
		case req := <-a.mailbox:
			if err := a.handleRequest(req); err != nil {
				return err
			}
		case <-ticker.C:
			if err := a.drainMailbox(); err != nil {
				return err
			}
			if err := a.runIteration(); err != nil {
				return err
			}
		}
	}
}

func (a *Agent) stopping(_ error) error {
	level.Info(utillog.Logger).Log("msg", "strategic agent stopped", "iterations", a.iteration)
	return nil
}

// drainMailbox handles every currently buffered request without blocking,
// so a tick-triggered iteration starts from fully up-to-date state (§4.8
// step 1).
func (a *Agent) drainMailbox() error {
	for {
		select {
		case req := <-a.mailbox:
			if err := a.handleRequest(req); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// runIteration runs one Normal+Unloading/Manual sweep, computes the
// objective, and emits a snapshot if configured to (§4.8 steps 2-3). A
// fatal invariant violation is logged and returned, which running()
// propagates as the service's failure cause, terminating the loop;
// partial mutations within the failing place_one are never applied, since
// placeOne returns its fatal errors before it changes any state.
func (a *Agent) runIteration() error {
	if err := a.engine.scheduleByType(queue.Normal); err != nil {
		return a.fatal(err)
	}
	if err := a.engine.scheduleByType(queue.Unloading); err != nil {
		return a.fatal(err)
	}

	a.objective = a.engine.objective()
	a.iteration++
	metricObjective.Set(a.objective)
	metricIterations.Inc()
	metricQueueDepth.WithLabelValues(queue.Normal.String()).Set(float64(a.engine.queues.Normal.Len()))
	metricQueueDepth.WithLabelValues(queue.Unloading.String()).Set(float64(a.engine.queues.Unloading.Len()))
	metricQueueDepth.WithLabelValues(queue.ShutdownVendor.String()).Set(float64(a.engine.queues.ShutdownVendor.Len()))

	if !a.cfg.EmitSnapshots {
		return nil
	}
	a.publishSnapshot()
	return nil
}

func (a *Agent) publishSnapshot() {
	resp := a.status()
	select {
	case a.snapshots <- resp:
	default:
		select {
		case <-a.snapshots:
		default:
		}
		a.snapshots <- resp
	}
}

func (a *Agent) status() AgentStatusResponse {
	return AgentStatusResponse{
		IterationID:     uuid.NewString(),
		Rows:            BuildOverview(a.engine.backlog, a.engine.optimized),
		NormalQueued:    a.engine.queues.Normal.Len(),
		UnloadingQueued: a.engine.queues.Unloading.Len(),
		ReservedQueued:  a.engine.queues.ShutdownVendor.Len(),
		Objective:       a.objective,
		Iteration:       a.iteration,
	}
}

// fatal records the invariant violation and returns it for running() to
// propagate (§5 Failure Isolation). The engine never applies a partial
// mutation before returning such an error, so the Capacity Book invariant
// holds at this point without an explicit rollback step.
func (a *Agent) fatal(err error) error {
	metricInvariantViolations.Inc()
	level.Error(utillog.Logger).Log("msg", "fatal invariant violation, terminating", "err", err)
	return err
}

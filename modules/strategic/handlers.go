package strategic

import "github.com/mintmaint/strategic-scheduler/modules/strategic/agenterr"

// handleRequest dispatches one inbound mailbox message and applies its
// effect immediately — the agent is single-threaded, so a request handled
// here can never race a placement sweep (§5). Only a fatal
// InvariantViolation is returned; every user-facing failure is delivered
// on the request's own Reply channel instead (§7).
func (a *Agent) handleRequest(req Request) error {
	switch r := req.(type) {
	case SetCapacityRequest:
		r.Reply <- a.handleSetCapacity(r)
	case SetManualPlacementRequest:
		r.Reply <- a.handleSetManualPlacement(r)
	case AddExcludedPeriodRequest:
		r.Reply <- a.handleAddExcludedPeriod(r)
	case RemoveExcludedPeriodRequest:
		r.Reply <- a.handleRemoveExcludedPeriod(r)
	case GetPeriodsRequest:
		r.Reply <- a.handleGetPeriods()
	case GetAgentStatusRequest:
		r.Reply <- a.status()
	case GetWorkOrderStatusRequest:
		r.Reply <- a.handleGetWorkOrderStatus(r)
	case GetWorkOrdersStateRequest:
		r.Reply <- a.handleGetWorkOrdersState()
	case ExportRequest:
		r.Reply <- a.handleExport()
	case ExecuteIterationRequest:
		err := a.runIteration()
		close(r.Reply)
		return err
	default:
		return agenterr.Invariant("unrecognized request type %T", req)
	}
	return nil
}

func (a *Agent) handleSetCapacity(r SetCapacityRequest) error {
	if r.Hours < 0 {
		return agenterr.Invalid("capacity hours must be non-negative, got %v", r.Hours)
	}
	if _, ok := a.engine.catalog.ByID(r.PeriodID); !ok {
		return agenterr.Invalid("unknown period %q", r.PeriodID)
	}

	a.engine.capacity.SetCapacity(r.Resource, r.PeriodID, r.Hours)

	unscheduled, err := a.engine.enforceCapacityDecrease(r.Resource, r.PeriodID)
	if err != nil {
		return err
	}
	for _, order := range unscheduled {
		opt, ok := a.engine.optimized.Get(order)
		if !ok {
			return agenterr.Invariant("order %d unscheduled but missing from optimized-plan table", order)
		}
		a.engine.queues.Normal.Push(order, opt.Weight)
		metricUnschedules.WithLabelValues("capacity_decrease").Inc()
	}
	return nil
}

// handleSetManualPlacement locks order to periodID. Manual status is
// tracked purely by opt.LockedPeriod being non-nil: the backlog's
// unloading_point.present flag belongs to the ingest path and is never
// mutated in place here (Store is read-only from the algorithm's side,
// per its doc comment).
func (a *Agent) handleSetManualPlacement(r SetManualPlacementRequest) error {
	if _, ok := a.engine.backlog.Get(r.Order); !ok {
		return agenterr.Invalid("unknown order %d", r.Order)
	}
	lp, ok := a.engine.catalog.ByID(r.PeriodID)
	if !ok {
		return agenterr.Invalid("unknown period %q", r.PeriodID)
	}
	opt, ok := a.engine.optimized.Get(r.Order)
	if !ok {
		return agenterr.Invariant("order %d missing from optimized-plan table", r.Order)
	}

	wasCommitted := opt.Committed
	if err := a.engine.Unschedule(r.Order); err != nil {
		return err
	}
	if wasCommitted {
		metricUnschedules.WithLabelValues("manual_placement").Inc()
	}

	opt.SetLocked(&lp)

	if !a.engine.queues.Unloading.Contains(r.Order) {
		a.engine.queues.Normal.Remove(r.Order)
		a.engine.queues.ShutdownVendor.Remove(r.Order)
		a.engine.queues.Unloading.Push(r.Order, opt.Weight)
	}

	return nil
}

func (a *Agent) handleAddExcludedPeriod(r AddExcludedPeriodRequest) error {
	p, ok := a.engine.catalog.ByID(r.PeriodID)
	if !ok {
		return agenterr.Invalid("unknown period %q", r.PeriodID)
	}
	opt, ok := a.engine.optimized.Get(r.Order)
	if !ok {
		return agenterr.Invalid("unknown order %d", r.Order)
	}

	wasScheduledHere := opt.IsScheduled() && opt.ScheduledPeriod.ID == p.ID
	wasCommitted := opt.Committed
	opt.AddExcluded(p)

	if wasScheduledHere {
		if err := a.engine.Unschedule(r.Order); err != nil {
			return err
		}
		if wasCommitted {
			metricUnschedules.WithLabelValues("excluded_period").Inc()
			a.requeue(r.Order)
		}
	}
	return nil
}

func (a *Agent) handleRemoveExcludedPeriod(r RemoveExcludedPeriodRequest) error {
	p, ok := a.engine.catalog.ByID(r.PeriodID)
	if !ok {
		return agenterr.Invalid("unknown period %q", r.PeriodID)
	}
	opt, ok := a.engine.optimized.Get(r.Order)
	if !ok {
		return agenterr.Invalid("unknown order %d", r.Order)
	}
	opt.RemoveExcluded(p)
	return nil
}

// requeue pushes order back onto the queue matching its current lock
// state: Unloading/Manual if locked, Normal otherwise.
func (a *Agent) requeue(order uint32) {
	opt, ok := a.engine.optimized.Get(order)
	if !ok {
		return
	}
	if opt.LockedPeriod != nil {
		a.engine.queues.Unloading.Push(order, opt.Weight)
		return
	}
	a.engine.queues.Normal.Push(order, opt.Weight)
}

func (a *Agent) handleGetPeriods() GetPeriodsResponse {
	periods := a.engine.catalog.Periods()
	ids := make([]string, 0, len(periods))
	for _, p := range periods {
		ids = append(ids, p.ID)
	}
	return GetPeriodsResponse{PeriodIDs: ids}
}

func (a *Agent) handleGetWorkOrderStatus(r GetWorkOrderStatusRequest) WorkOrderStatusResponse {
	wo, ok := a.engine.backlog.Get(r.Order)
	if !ok {
		return WorkOrderStatusResponse{Found: false}
	}
	all := BuildOverview(a.engine.backlog, a.engine.optimized)
	rows := make([]OverviewRow, 0)
	for _, row := range all {
		if row.WorkOrderNumber == wo.Number {
			rows = append(rows, row)
		}
	}
	return WorkOrderStatusResponse{Rows: rows, Found: true}
}

func (a *Agent) handleGetWorkOrdersState() WorkOrdersStateResponse {
	states := make([]OrderState, 0, a.engine.backlog.Len())
	for _, k := range a.engine.backlog.Numbers() {
		opt, ok := a.engine.optimized.Get(k)
		if !ok {
			continue
		}
		state := OrderState{Order: k}
		if opt.IsScheduled() {
			state.ScheduledPeriod = opt.ScheduledPeriod.ID
		}
		if opt.LockedPeriod != nil {
			state.LockedPeriod = opt.LockedPeriod.ID
		}
		states = append(states, state)
	}
	return WorkOrdersStateResponse{States: states}
}

func (a *Agent) handleExport() ExportResponse {
	rows := BuildOverview(a.engine.backlog, a.engine.optimized)
	data, err := ExportJSON(rows)
	if err != nil {
		return ExportResponse{Err: err}
	}
	return ExportResponse{JSON: data}
}

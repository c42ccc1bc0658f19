package strategic

import (
	"github.com/mintmaint/strategic-scheduler/modules/strategic/agenterr"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/capacity"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/plan"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/queue"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
	"github.com/mintmaint/strategic-scheduler/pkg/util"
)

// placementKey identifies a (resource, period) capacity cell for the
// placement-order bookkeeping below.
type placementKey struct {
	resource workorder.Resource
	periodID string
}

// engine is the placement algorithm (C6) and objective (C7), operating on
// the capacity book, priority queues, optimized-plan table, catalog, and
// backlog it's handed. Beyond those references its only state is the
// placementOrder bookkeeping below, so it can be exercised directly by
// tests without a running agent loop.
type engine struct {
	catalog   *period.Catalog
	backlog   *workorder.Store
	capacity  *capacity.Book
	queues    *queue.Queues
	optimized *plan.Table

	// placementOrder records, per (resource, period), the LIFO order in
	// which Normal placements added load there. SetCapacity uses it to
	// unschedule the most-recently-placed offenders first when a capacity
	// decrease pushes loading above the new capacity (§6). Manual/locked
	// placements are never pushed here: a capacity decrease doesn't touch
	// them.
	placementOrder map[placementKey]*util.Stack[uint32]
}

// newEngine wires the five components together and seeds the capacity
// book from every order already locked to a period at construction
// (unloading_point.present orders, per §4.5), so the capacity invariant
// (loading = Σ work_load over orders whose scheduled_period = p) holds
// immediately rather than only after the first sweep. Orders with no
// unloading point start at the tentative catalog.last() fallback, which is
// deliberately left uncommitted: it carries no loading until a real sweep
// places the order somewhere.
func newEngine(catalog *period.Catalog, backlog *workorder.Store, book *capacity.Book, queues *queue.Queues, optimized *plan.Table) *engine {
	e := &engine{
		catalog:        catalog,
		backlog:        backlog,
		capacity:       book,
		queues:         queues,
		optimized:      optimized,
		placementOrder: make(map[placementKey]*util.Stack[uint32]),
	}
	for _, wo := range backlog.All() {
		if !wo.UnloadingPoint.Present {
			continue
		}
		opt, ok := optimized.Get(wo.Number)
		if !ok {
			continue
		}
		for r, hrs := range wo.WorkLoad {
			book.AddLoad(r, wo.UnloadingPoint.Period.ID, hrs)
		}
		opt.Committed = true
	}
	return e
}

func (e *engine) pushPlacement(r workorder.Resource, periodID string, order uint32) {
	key := placementKey{r, periodID}
	s, ok := e.placementOrder[key]
	if !ok {
		s = &util.Stack[uint32]{}
		e.placementOrder[key] = s
	}
	s.Push(order)
}

// enforceCapacityDecrease unschedules Normal orders loaded on (r, periodID),
// most-recently-placed first, until loading no longer exceeds capacity (or
// there are no more Normal placements to undo — a locked/manual order can
// still leave the cell over capacity, which is legal). Returns the order
// numbers unscheduled, for the caller to re-queue to Normal.
func (e *engine) enforceCapacityDecrease(r workorder.Resource, periodID string) ([]uint32, error) {
	var unscheduled []uint32
	key := placementKey{r, periodID}

	for e.capacity.Available(r, periodID) < 0 {
		stack, ok := e.placementOrder[key]
		if !ok || stack.IsEmpty() {
			break
		}
		order, ok := stack.Pop()
		if !ok {
			break
		}

		opt, found := e.optimized.Get(order)
		if !found || !opt.IsScheduled() || opt.ScheduledPeriod.ID != periodID {
			// Stale entry: already unscheduled by a prior pop on another
			// resource this same order was loaded against.
			continue
		}
		if err := e.Unschedule(order); err != nil {
			return unscheduled, err
		}
		unscheduled = append(unscheduled, order)
	}
	return unscheduled, nil
}

// scheduleByType drains name's queue across every period in catalog order,
// in the fixed Normal-then-Unloading/Manual sequence the agent loop calls
// this in (§4.6). ShutdownVendor is reserved: scheduleByType returns at
// once for it, leaving that queue untouched.
func (e *engine) scheduleByType(name queue.Name) error {
	if name == queue.ShutdownVendor {
		return nil
	}
	q := e.queues.Of(name)

	for _, p := range e.catalog.Periods() {
		working := drainQueue(q)

		for _, cand := range working {
			rejected, err := e.placeOne(cand.order, p, name)
			if err != nil {
				return err
			}
			if rejected {
				metricPlacementsRejected.WithLabelValues(name.String()).Inc()
				q.Push(cand.order, cand.weight)
			} else {
				metricPlacementsAccepted.WithLabelValues(name.String()).Inc()
			}
		}
	}
	return nil
}

type candidate struct {
	order  uint32
	weight uint32
}

// drainQueue pops every currently queued entry, preserving pop order
// (highest weight first, ties by insertion order).
func drainQueue(q *queue.Queue) []candidate {
	var out []candidate
	for {
		order, weight, ok := q.Pop()
		if !ok {
			break
		}
		out = append(out, candidate{order: order, weight: weight})
	}
	return out
}

// placeOne attempts to place order k at period p under the rules for the
// given queue type. It returns rejected=true if k should be requeued to
// try again at a later period. On the Normal path no mutation to the
// capacity book or optimized-plan table occurs on a rejection: constraints
// are evaluated in full before any state is touched (§9 design note). The
// Unloading/Manual path first unschedules the order's committed placement,
// if any, and then rejects every period other than its locked one.
func (e *engine) placeOne(k uint32, p period.Period, qt queue.Name) (rejected bool, err error) {
	wo, ok := e.backlog.Get(k)
	if !ok {
		return false, agenterr.Invariant("order %d present in queue but missing from backlog", k)
	}
	opt, ok := e.optimized.Get(k)
	if !ok {
		return false, agenterr.Invariant("order %d present in queue but missing from optimized-plan table", k)
	}

	switch qt {
	case queue.Normal:
		return e.placeNormal(wo, opt, p)
	case queue.Unloading:
		return e.placeManual(wo, opt, p)
	default:
		return false, nil
	}
}

func (e *engine) placeNormal(wo workorder.WorkOrder, opt *plan.OptimizedWorkOrder, p period.Period) (rejected bool, err error) {
	if opt.IsExcluded(p) {
		return true, nil
	}
	if p.EndDate.Before(wo.OrderDates.EarliestAllowedStartDate) {
		return true, nil
	}
	for r, need := range wo.WorkLoad {
		if need > e.capacity.Available(r, p.ID) {
			return true, nil
		}
	}

	placed := p
	opt.UpdateScheduledPeriod(&placed)
	opt.Committed = true
	for r, hrs := range wo.WorkLoad {
		e.capacity.AddLoad(r, p.ID, hrs)
		e.pushPlacement(r, p.ID, wo.Number)
	}
	return false, nil
}

func (e *engine) placeManual(wo workorder.WorkOrder, opt *plan.OptimizedWorkOrder, p period.Period) (rejected bool, err error) {
	if opt.LockedPeriod == nil {
		return false, agenterr.Invariant("order %d on unloading/manual queue has no locked period", wo.Number)
	}

	if opt.Committed {
		if err := e.unscheduleLocked(wo, opt); err != nil {
			return false, err
		}
	}

	if opt.LockedPeriod.ID != p.ID {
		return true, nil
	}

	placed := p
	opt.UpdateScheduledPeriod(&placed)
	opt.Committed = true
	for r, hrs := range wo.WorkLoad {
		e.capacity.AddLoad(r, p.ID, hrs)
	}
	return false, nil
}

// unscheduleLocked clears wo's current placement. If that placement was
// Committed (backed by real loading, as opposed to the tentative
// catalog.last() fallback New assigns an order that has never been
// through a real placement), its load is subtracted first; a subtraction
// that would drive loading negative indicates the capacity-book invariant
// was already broken elsewhere and is fatal. Used internally by the manual
// path and exported as Unschedule for inbound mutations.
func (e *engine) unscheduleLocked(wo workorder.WorkOrder, opt *plan.OptimizedWorkOrder) error {
	if opt.ScheduledPeriod == nil {
		return nil
	}
	p0 := *opt.ScheduledPeriod
	if opt.Committed {
		for r, hrs := range wo.WorkLoad {
			if e.capacity.Loading(r, p0.ID) < hrs {
				return agenterr.Invariant("unschedule: order %d would drive loading negative for resource %s at period %s", wo.Number, r, p0.ID)
			}
		}
		for r, hrs := range wo.WorkLoad {
			e.capacity.SubLoad(r, p0.ID, hrs)
		}
	}
	opt.Committed = false
	opt.UpdateScheduledPeriod(nil)
	return nil
}

// Unschedule removes order k's current placement, if any, restoring
// capacity book loading to its pre-placement value (§4.6). Safe to call on
// an order that is already unplaced.
func (e *engine) Unschedule(k uint32) error {
	wo, ok := e.backlog.Get(k)
	if !ok {
		return agenterr.Invariant("unschedule: order %d missing from backlog", k)
	}
	opt, ok := e.optimized.Get(k)
	if !ok {
		return agenterr.Invariant("unschedule: order %d missing from optimized-plan table", k)
	}
	return e.unscheduleLocked(wo, opt)
}

// objective computes the weighted penalty over deviation from
// latest-allowed bounds (§4.7). Placed orders contribute
// weight·periods_between(scheduled, latest_allowed_finish); unplaced
// orders contribute weight·|catalog| as a conservative penalty.
func (e *engine) objective() float64 {
	var total float64
	horizonLen := float64(e.catalog.Len())

	for _, k := range e.backlog.Numbers() {
		opt, ok := e.optimized.Get(k)
		if !ok {
			continue
		}
		if !opt.IsScheduled() {
			total += float64(opt.Weight) * horizonLen
			continue
		}
		if opt.LatestAllowedFinishPeriod == nil {
			continue
		}
		scheduledIdx, ok := e.catalog.Index(*opt.ScheduledPeriod)
		if !ok {
			continue
		}
		finishIdx, ok := e.catalog.Index(*opt.LatestAllowedFinishPeriod)
		if !ok {
			continue
		}
		delta := scheduledIdx - finishIdx
		if delta < 0 {
			delta = 0
		}
		total += float64(opt.Weight) * float64(delta)
	}
	return total
}

// Package plan implements the optimized-plan table (C5): the mutable
// per-order placement record the placement algorithm reads and updates
// every sweep.
package plan

import (
	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
)

// OptimizedWorkOrder is the mutable placement record for one work order.
type OptimizedWorkOrder struct {
	ScheduledPeriod           *period.Period
	LockedPeriod              *period.Period
	ExcludedPeriods           map[string]period.Period
	LatestAllowedFinishPeriod *period.Period
	Weight                    uint32
	WorkLoad                  map[workorder.Resource]float64

	// Committed distinguishes a scheduled_period that is backed by real
	// loading in the capacity book from the tentative catalog.last()
	// fallback New sets for not-yet-swept orders: the engine sets this true
	// only when it actually adds load for the current scheduled_period, so
	// callers know whether an unschedule has anything real to subtract.
	Committed bool
}

// IsScheduled reports whether the order currently has a placement.
func (o *OptimizedWorkOrder) IsScheduled() bool {
	return o.ScheduledPeriod != nil
}

// IsExcluded reports whether p is forbidden for this order.
func (o *OptimizedWorkOrder) IsExcluded(p period.Period) bool {
	_, ok := o.ExcludedPeriods[p.ID]
	return ok
}

// UpdateScheduledPeriod sets or clears the current placement.
func (o *OptimizedWorkOrder) UpdateScheduledPeriod(p *period.Period) {
	o.ScheduledPeriod = p
}

// SetLocked sets or clears the locked period.
func (o *OptimizedWorkOrder) SetLocked(p *period.Period) {
	o.LockedPeriod = p
}

// AddExcluded forbids p for this order.
func (o *OptimizedWorkOrder) AddExcluded(p period.Period) {
	o.ExcludedPeriods[p.ID] = p
}

// RemoveExcluded lifts a forbidden-period restriction.
func (o *OptimizedWorkOrder) RemoveExcluded(p period.Period) {
	delete(o.ExcludedPeriods, p.ID)
}

// Table is the per-order placement-record store, derived once at
// construction from the work order backlog and catalog (§4.5) and mutated
// thereafter by the placement algorithm and inbound messages.
type Table struct {
	orders map[uint32]*OptimizedWorkOrder
}

// New derives the initial optimized-plan table from the backlog and
// catalog, following §4.5 exactly:
//   - unloading-point orders start locked and scheduled to that period,
//     with no latest-allowed-finish bound;
//   - all other orders start tentatively scheduled to the catalog's last
//     period, unlocked, with their latest-allowed-finish bound resolved to
//     the period containing order_dates.latest_allowed_finish_date (the
//     caller resolves the date to a period and passes it in finishPeriods;
//     the strategic agent does this with resolveFinishPeriods).
func New(orders []workorder.WorkOrder, catalog *period.Catalog, finishPeriods map[uint32]period.Period) *Table {
	t := &Table{orders: make(map[uint32]*OptimizedWorkOrder, len(orders))}
	last, hasLast := catalog.Last()

	for _, wo := range orders {
		opt := &OptimizedWorkOrder{
			ExcludedPeriods: make(map[string]period.Period),
			Weight:          wo.OrderWeight,
			WorkLoad:        copyWorkLoad(wo.WorkLoad),
		}

		if wo.UnloadingPoint.Present {
			p := wo.UnloadingPoint.Period
			opt.ScheduledPeriod = &p
			locked := p
			opt.LockedPeriod = &locked
		} else {
			if hasLast {
				l := last
				opt.ScheduledPeriod = &l
			}
			if fp, ok := finishPeriods[wo.Number]; ok {
				f := fp
				opt.LatestAllowedFinishPeriod = &f
			}
		}

		t.orders[wo.Number] = opt
	}
	return t
}

func copyWorkLoad(src map[workorder.Resource]float64) map[workorder.Resource]float64 {
	out := make(map[workorder.Resource]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Get returns the optimized record for an order number.
func (t *Table) Get(order uint32) (*OptimizedWorkOrder, bool) {
	o, ok := t.orders[order]
	return o, ok
}

// All returns every optimized record, keyed by order number.
func (t *Table) All() map[uint32]*OptimizedWorkOrder {
	return t.orders
}

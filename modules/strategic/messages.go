package strategic

import (
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
)

// Request is the marker interface every inbound mailbox message
// implements. Each concrete request carries its own typed reply channel,
// so a caller gets a type-safe response without a central dispatch table
// keyed on a tag field.
type Request interface {
	isRequest()
}

// SetCapacityRequest updates capacity[resource, period]. If the new
// capacity falls below current loading, the agent unschedules offending
// Normal orders in LIFO-of-placement order until loading fits, then
// re-queues them to Normal (§6).
type SetCapacityRequest struct {
	Resource workorder.Resource
	PeriodID string
	Hours    float64
	Reply    chan error
}

func (SetCapacityRequest) isRequest() {}

// SetManualPlacementRequest locks an order to a period: the order is
// unscheduled from its current placement (if any), removed from Normal or
// ShutdownVendor, and queued on Unloading/Manual unless it is already
// there. Lock state lives entirely on the
// optimized-plan record's locked_period — the backlog itself is read-only
// from the agent's side (§6).
type SetManualPlacementRequest struct {
	Order    uint32
	PeriodID string
	Reply    chan error
}

func (SetManualPlacementRequest) isRequest() {}

// AddExcludedPeriodRequest forbids a period for an order. If the period
// equals the order's current placement, the order is unscheduled and
// re-queued.
type AddExcludedPeriodRequest struct {
	Order    uint32
	PeriodID string
	Reply    chan error
}

func (AddExcludedPeriodRequest) isRequest() {}

// RemoveExcludedPeriodRequest lifts a forbidden-period restriction. This
// never triggers an unschedule.
type RemoveExcludedPeriodRequest struct {
	Order    uint32
	PeriodID string
	Reply    chan error
}

func (RemoveExcludedPeriodRequest) isRequest() {}

// GetPeriodsRequest asks for the planning horizon.
type GetPeriodsRequest struct {
	Reply chan GetPeriodsResponse
}

func (GetPeriodsRequest) isRequest() {}

// GetPeriodsResponse carries the ordered period ID list.
type GetPeriodsResponse struct {
	PeriodIDs []string
}

// GetAgentStatusRequest asks for the full overview snapshot plus queue
// depths, the same shape the StatusHandler table renders.
type GetAgentStatusRequest struct {
	Reply chan AgentStatusResponse
}

func (GetAgentStatusRequest) isRequest() {}

// AgentStatusResponse is the reply to GetAgentStatusRequest.
type AgentStatusResponse struct {
	// IterationID is a fresh random UUID stamped on each status reply or
	// snapshot; it is not recorded in log lines or metrics.
	IterationID     string
	Rows            []OverviewRow
	NormalQueued    int
	UnloadingQueued int
	ReservedQueued  int
	Objective       float64
	Iteration       uint64
}

// GetWorkOrderStatusRequest asks for the overview rows of a single order.
type GetWorkOrderStatusRequest struct {
	Order uint32
	Reply chan WorkOrderStatusResponse
}

func (GetWorkOrderStatusRequest) isRequest() {}

// WorkOrderStatusResponse is the reply to GetWorkOrderStatusRequest. Found
// is false if the order is not in the backlog.
type WorkOrderStatusResponse struct {
	Rows  []OverviewRow
	Found bool
}

// GetWorkOrdersStateRequest asks for every order's current placement state
// (a coarser view than the full overview, without operation rows).
type GetWorkOrdersStateRequest struct {
	Reply chan WorkOrdersStateResponse
}

func (GetWorkOrdersStateRequest) isRequest() {}

// OrderState is one order's placement summary.
type OrderState struct {
	Order           uint32
	ScheduledPeriod string // "" if unplaced
	LockedPeriod    string // "" if unlocked
}

// WorkOrdersStateResponse is the reply to GetWorkOrdersStateRequest.
type WorkOrdersStateResponse struct {
	States []OrderState
}

// ExportRequest asks for a full JSON snapshot of the current overview.
type ExportRequest struct {
	Reply chan ExportResponse
}

func (ExportRequest) isRequest() {}

// ExportResponse carries the JSON-encoded overview, or a non-nil Err if
// encoding failed.
type ExportResponse struct {
	JSON []byte
	Err  error
}

// ExecuteIterationRequest forces one iteration immediately, bypassing the
// tick, for deterministic tests. Reply is closed once the iteration (and
// any snapshot emission) completes.
type ExecuteIterationRequest struct {
	Reply chan struct{}
}

func (ExecuteIterationRequest) isRequest() {}

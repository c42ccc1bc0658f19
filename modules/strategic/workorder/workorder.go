// Package workorder holds the in-memory backlog of maintenance work orders:
// the data model (§3 of the spec) and a read-only store (C2) that the
// placement algorithm and snapshot builder read from. Mutation of the
// backlog itself belongs to the external ingest path; this package only
// exposes lookups.
package workorder

import (
	"strconv"
	"time"

	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
)

// Resource is a work-center tag. The enumeration is closed and known at
// construction time, but the concrete set of resources is a deployment
// concern (spreadsheet headers), not a compile-time one, so it is modeled
// as a string rather than a Go const enum.
type Resource string

// MaterialStatus is the informational material-availability gate carried
// through to snapshots. It never affects placement.
type MaterialStatus int

const (
	MaterialUnknown MaterialStatus = iota
	MaterialSMAT
	MaterialNMAT
	MaterialCMAT
	MaterialWMAT
	MaterialPMAT
)

// String renders the display text used in SchedulingOverviewData's
// material_date field. MaterialUnknown keeps the original prototype's
// placeholder text verbatim.
func (m MaterialStatus) String() string {
	switch m {
	case MaterialSMAT:
		return "SMAT"
	case MaterialNMAT:
		return "NMAT"
	case MaterialCMAT:
		return "CMAT"
	case MaterialWMAT:
		return "WMAT"
	case MaterialPMAT:
		return "PMAT"
	default:
		return "Implement control tower"
	}
}

// OrderType classifies a work order for display purposes.
type OrderType int

const (
	OrderTypeOther OrderType = iota
	OrderTypeWDF
	OrderTypeWGN
	OrderTypeWPM
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeWDF:
		return "WDF"
	case OrderTypeWGN:
		return "WGN"
	case OrderTypeWPM:
		return "WPM"
	default:
		return "Missing Work Order Type"
	}
}

// Priority is either an integer score or a free-text label, mirroring the
// two shapes seen on ingested orders.
type Priority struct {
	IntValue    int
	StringValue string
	IsString    bool
}

func (p Priority) String() string {
	if p.IsString {
		return p.StringValue
	}
	return strconv.Itoa(p.IntValue)
}

// Dates carries the date bounds material to placement and display.
type Dates struct {
	EarliestAllowedStartDate time.Time
	LatestAllowedFinishDate  time.Time
	BasicStartDate           time.Time
}

// UnloadingPoint pins a work order to a specific period when present.
type UnloadingPoint struct {
	Present bool
	Period  period.Period
	IDString string
}

// Revision carries shutdown/vendor routing flags plus a display string.
type Revision struct {
	Shutdown bool
	Vendor   bool
	String   string
}

// StatusCodes carries gating/display flags. MaterialStatus is informational
// at the placement layer.
type StatusCodes struct {
	MaterialStatus MaterialStatus
}

// Text carries the free-text display fields surfaced in snapshots.
type Text struct {
	Notes1             string
	Notes2             string
	OrderDescription   string
	ObjectDescription  string
	OrderUserStatus    string
	OrderSystemStatus  string
}

// Operation is a step inside a work order. Operations are not scheduled at
// the strategic layer; they are surfaced in snapshots only.
type Operation struct {
	Activity                uint32
	Number                  uint32
	Resource                Resource
	PreparationTime         float64
	WorkRemaining           float64
	WorkPerformed           float64
	WorkAdjusted            float64
	OperatingTime           float64
	Duration                uint32
	PossibleStart           time.Time
	TargetFinish            time.Time
	EarliestStartDatetime   time.Time
	EarliestFinishDatetime  time.Time
}

// WorkOrder is a maintenance job: the scheduling unit.
type WorkOrder struct {
	Number             uint32
	OrderWeight        uint32
	WorkLoad           map[Resource]float64
	OrderDates         Dates
	UnloadingPoint     UnloadingPoint
	Revision           Revision
	StatusCodes        StatusCodes
	OrderType          OrderType
	Priority           Priority
	FunctionalLocation string
	Text               Text
	Operations         []OperationEntry
}

// OperationEntry pairs an activity number with its Operation, preserving
// the ordered-list-of-pairs shape of the original backlog.
type OperationEntry struct {
	ActivityNumber uint32
	Operation      Operation
}

// Store is the in-memory, read-only (from the algorithm's point of view)
// mapping from order number to work order. It is populated once by the
// external ingest path and handed to the strategic agent at construction
// (§5).
type Store struct {
	orders map[uint32]WorkOrder
	// order preserves insertion order so iteration (and therefore queue
	// population and snapshot building) is deterministic.
	order []uint32
}

// NewStore builds a Store from an ordered slice of work orders.
func NewStore(orders []WorkOrder) *Store {
	s := &Store{
		orders: make(map[uint32]WorkOrder, len(orders)),
		order:  make([]uint32, 0, len(orders)),
	}
	for _, wo := range orders {
		if _, exists := s.orders[wo.Number]; !exists {
			s.order = append(s.order, wo.Number)
		}
		s.orders[wo.Number] = wo
	}
	return s
}

// Get returns the work order for a given number.
func (s *Store) Get(number uint32) (WorkOrder, bool) {
	wo, ok := s.orders[number]
	return wo, ok
}

// All returns work orders in deterministic (insertion) order.
func (s *Store) All() []WorkOrder {
	out := make([]WorkOrder, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.orders[n])
	}
	return out
}

// Numbers returns the backlog's order numbers in deterministic order.
func (s *Store) Numbers() []uint32 {
	out := make([]uint32, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of work orders in the backlog.
func (s *Store) Len() int {
	return len(s.order)
}

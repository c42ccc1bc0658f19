// Package ingest loads the planning horizon and work-order backlog the
// strategic agent is handed at construction (§6's "external collaborator"
// data-ingest path). The core spec treats the real ingest path — a
// spreadsheet parser — as out of scope; this package is the minimal JSON
// boundary adapter the CLI entrypoint needs to turn a file on disk into a
// period.Catalog and workorder.Store, not a re-implementation of the
// spreadsheet parser itself.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
)

// document is the on-disk shape read by Load: a flat list of periods and a
// flat list of work orders, the smallest representation that exercises
// every field the placement algorithm and snapshot builder read.
type document struct {
	Periods    []periodDoc    `json:"periods"`
	WorkOrders []workOrderDoc `json:"work_orders"`
}

type periodDoc struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type unloadingPointDoc struct {
	Present  bool   `json:"present"`
	PeriodID string `json:"period_id"`
}

type revisionDoc struct {
	Shutdown bool   `json:"shutdown"`
	Vendor   bool   `json:"vendor"`
	String   string `json:"string"`
}

type datesDoc struct {
	EarliestAllowedStartDate time.Time `json:"earliest_allowed_start_date"`
	LatestAllowedFinishDate  time.Time `json:"latest_allowed_finish_date"`
	BasicStartDate           time.Time `json:"basic_start_date"`
}

type statusCodesDoc struct {
	MaterialStatus string `json:"material_status"`
}

type textDoc struct {
	Notes1            string `json:"notes_1"`
	Notes2            string `json:"notes_2"`
	OrderDescription  string `json:"order_description"`
	ObjectDescription string `json:"object_description"`
	OrderUserStatus   string `json:"order_user_status"`
	OrderSystemStatus string `json:"order_system_status"`
}

type priorityDoc struct {
	IntValue    int    `json:"int_value"`
	StringValue string `json:"string_value"`
	IsString    bool   `json:"is_string"`
}

type operationDoc struct {
	ActivityNumber         uint32    `json:"activity_number"`
	Number                 uint32    `json:"number"`
	Resource               string    `json:"resource"`
	PreparationTime        float64   `json:"preparation_time"`
	WorkRemaining          float64   `json:"work_remaining"`
	WorkPerformed          float64   `json:"work_performed"`
	WorkAdjusted           float64   `json:"work_adjusted"`
	OperatingTime          float64   `json:"operating_time"`
	Duration               uint32    `json:"duration"`
	PossibleStart          time.Time `json:"possible_start"`
	TargetFinish           time.Time `json:"target_finish"`
	EarliestStartDatetime  time.Time `json:"earliest_start_datetime"`
	EarliestFinishDatetime time.Time `json:"earliest_finish_datetime"`
}

type workOrderDoc struct {
	Number             uint32             `json:"number"`
	OrderWeight        uint32             `json:"order_weight"`
	WorkLoad           map[string]float64 `json:"work_load"`
	OrderDates         datesDoc           `json:"order_dates"`
	UnloadingPoint     unloadingPointDoc  `json:"unloading_point"`
	Revision           revisionDoc        `json:"revision"`
	StatusCodes        statusCodesDoc     `json:"status_codes"`
	OrderType          string             `json:"order_type"`
	Priority           priorityDoc        `json:"priority"`
	FunctionalLocation string             `json:"functional_location"`
	Text               textDoc            `json:"text"`
	Operations         []operationDoc     `json:"operations"`
}

// Load reads path and returns the catalog and backlog it describes. Every
// work order's period references are validated against the period list
// before any value is handed to the caller: an order referencing an
// unknown period_id is a single validation failure among potentially many,
// collected via multierr so a malformed input file reports everything
// wrong with it in one pass instead of one error at a time (the teacher's
// own provisioner.Validate shape, adapted to the ingest boundary).
func Load(path string) (*period.Catalog, *workorder.Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}

	periods := make([]period.Period, 0, len(doc.Periods))
	for _, p := range doc.Periods {
		periods = append(periods, period.New(p.ID, p.Start, p.End))
	}
	catalog, err := period.NewCatalog(periods)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: %s: %w", path, err)
	}

	var errs error
	orders := make([]workorder.WorkOrder, 0, len(doc.WorkOrders))
	for _, d := range doc.WorkOrders {
		wo, err := toWorkOrder(catalog, d)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		orders = append(orders, wo)
	}
	if errs != nil {
		return nil, nil, fmt.Errorf("ingest: %s: %w", path, errs)
	}

	return catalog, workorder.NewStore(orders), nil
}

func toWorkOrder(catalog *period.Catalog, d workOrderDoc) (workorder.WorkOrder, error) {
	load := make(map[workorder.Resource]float64, len(d.WorkLoad))
	for r, hrs := range d.WorkLoad {
		load[workorder.Resource(r)] = hrs
	}

	wo := workorder.WorkOrder{
		Number:      d.Number,
		OrderWeight: d.OrderWeight,
		WorkLoad:    load,
		OrderDates: workorder.Dates{
			EarliestAllowedStartDate: d.OrderDates.EarliestAllowedStartDate,
			LatestAllowedFinishDate:  d.OrderDates.LatestAllowedFinishDate,
			BasicStartDate:           d.OrderDates.BasicStartDate,
		},
		Revision: workorder.Revision{
			Shutdown: d.Revision.Shutdown,
			Vendor:   d.Revision.Vendor,
			String:   d.Revision.String,
		},
		StatusCodes: workorder.StatusCodes{
			MaterialStatus: parseMaterialStatus(d.StatusCodes.MaterialStatus),
		},
		OrderType: parseOrderType(d.OrderType),
		Priority: workorder.Priority{
			IntValue:    d.Priority.IntValue,
			StringValue: d.Priority.StringValue,
			IsString:    d.Priority.IsString,
		},
		FunctionalLocation: d.FunctionalLocation,
		Text: workorder.Text{
			Notes1:            d.Text.Notes1,
			Notes2:            d.Text.Notes2,
			OrderDescription:  d.Text.OrderDescription,
			ObjectDescription: d.Text.ObjectDescription,
			OrderUserStatus:   d.Text.OrderUserStatus,
			OrderSystemStatus: d.Text.OrderSystemStatus,
		},
		Operations: toOperations(d.Operations),
	}

	if d.UnloadingPoint.Present {
		p, ok := catalog.ByID(d.UnloadingPoint.PeriodID)
		if !ok {
			return workorder.WorkOrder{}, fmt.Errorf("order %d: unloading_point references unknown period %q", d.Number, d.UnloadingPoint.PeriodID)
		}
		wo.UnloadingPoint = workorder.UnloadingPoint{Present: true, Period: p, IDString: d.UnloadingPoint.PeriodID}
	}

	return wo, nil
}

func toOperations(docs []operationDoc) []workorder.OperationEntry {
	if len(docs) == 0 {
		return nil
	}
	out := make([]workorder.OperationEntry, 0, len(docs))
	for _, o := range docs {
		out = append(out, workorder.OperationEntry{
			ActivityNumber: o.ActivityNumber,
			Operation: workorder.Operation{
				Activity:               o.ActivityNumber,
				Number:                 o.Number,
				Resource:               workorder.Resource(o.Resource),
				PreparationTime:        o.PreparationTime,
				WorkRemaining:          o.WorkRemaining,
				WorkPerformed:          o.WorkPerformed,
				WorkAdjusted:           o.WorkAdjusted,
				OperatingTime:          o.OperatingTime,
				Duration:               o.Duration,
				PossibleStart:          o.PossibleStart,
				TargetFinish:           o.TargetFinish,
				EarliestStartDatetime:  o.EarliestStartDatetime,
				EarliestFinishDatetime: o.EarliestFinishDatetime,
			},
		})
	}
	return out
}

func parseMaterialStatus(s string) workorder.MaterialStatus {
	switch s {
	case "SMAT":
		return workorder.MaterialSMAT
	case "NMAT":
		return workorder.MaterialNMAT
	case "CMAT":
		return workorder.MaterialCMAT
	case "WMAT":
		return workorder.MaterialWMAT
	case "PMAT":
		return workorder.MaterialPMAT
	default:
		return workorder.MaterialUnknown
	}
}

func parseOrderType(s string) workorder.OrderType {
	switch s {
	case "WDF":
		return workorder.OrderTypeWDF
	case "WGN":
		return workorder.OrderTypeWGN
	case "WPM":
		return workorder.OrderTypeWPM
	default:
		return workorder.OrderTypeOther
	}
}

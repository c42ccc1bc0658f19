package strategic

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mintmaint/strategic-scheduler/modules/strategic/plan"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// OverviewRow is one flattened (order, operation) row of the outbound
// FrontendOverview snapshot, field-for-field the same as the original
// SchedulingOverviewData.
type OverviewRow struct {
	ScheduledPeriod             string `json:"scheduled_period"`
	ScheduledStart              string `json:"scheduled_start"`
	UnloadingPoint              string `json:"unloading_point"`
	MaterialDate                string `json:"material_date"`
	WorkOrderNumber             uint32 `json:"work_order_number"`
	Activity                    string `json:"activity"`
	WorkCenter                  string `json:"work_center"`
	WorkRemaining               string `json:"work_remaining"`
	Number                      uint32 `json:"number"`
	Notes1                      string `json:"notes_1"`
	Notes2                      string `json:"notes_2"`
	OrderDescription            string `json:"order_description"`
	ObjectDescription           string `json:"object_description"`
	OrderUserStatus             string `json:"order_user_status"`
	OrderSystemStatus           string `json:"order_system_status"`
	FunctionalLocation          string `json:"functional_location"`
	Revision                    string `json:"revision"`
	EarliestStartDatetime       string `json:"earliest_start_datetime"`
	EarliestFinishDatetime      string `json:"earliest_finish_datetime"`
	EarliestAllowedStartingDate string `json:"earliest_allowed_starting_date"`
	LatestAllowedFinishDate     string `json:"latest_allowed_finish_date"`
	OrderType                   string `json:"order_type"`
	Priority                    string `json:"priority"`
}

const notScheduled = "not scheduled"

// BuildOverview flattens the backlog and optimized-plan table into the
// outbound row list, one row per (order, operation), matching the
// original's extract_state_to_scheduler_overview exactly.
func BuildOverview(backlog *workorder.Store, optimized *plan.Table) []OverviewRow {
	var rows []OverviewRow

	for _, wo := range backlog.All() {
		scheduledPeriod := notScheduled
		if opt, ok := optimized.Get(wo.Number); ok && opt.IsScheduled() {
			scheduledPeriod = opt.ScheduledPeriod.ID
		}

		for _, entry := range wo.Operations {
			op := entry.Operation
			rows = append(rows, OverviewRow{
				ScheduledPeriod:             scheduledPeriod,
				ScheduledStart:              formatTime(wo.OrderDates.BasicStartDate),
				UnloadingPoint:              wo.UnloadingPoint.IDString,
				MaterialDate:                wo.StatusCodes.MaterialStatus.String(),
				WorkOrderNumber:             wo.Number,
				Activity:                    fmt.Sprintf("%d", entry.ActivityNumber),
				WorkCenter:                  string(op.Resource),
				WorkRemaining:               fmt.Sprintf("%v", op.WorkRemaining),
				Number:                      op.Number,
				Notes1:                      wo.Text.Notes1,
				Notes2:                      wo.Text.Notes2,
				OrderDescription:            wo.Text.OrderDescription,
				ObjectDescription:           wo.Text.ObjectDescription,
				OrderUserStatus:             wo.Text.OrderUserStatus,
				OrderSystemStatus:           wo.Text.OrderSystemStatus,
				FunctionalLocation:          wo.FunctionalLocation,
				Revision:                    wo.Revision.String,
				EarliestStartDatetime:       formatTime(op.EarliestStartDatetime),
				EarliestFinishDatetime:      formatTime(op.EarliestFinishDatetime),
				EarliestAllowedStartingDate: formatTime(wo.OrderDates.EarliestAllowedStartDate),
				LatestAllowedFinishDate:     formatTime(wo.OrderDates.LatestAllowedFinishDate),
				OrderType:                   wo.OrderType.String(),
				Priority:                    wo.Priority.String(),
			})
		}
	}

	return rows
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// StatusTable renders rows as a plaintext table, the same shape and
// library as the teacher's StatusHandler.
func StatusTable(rows []OverviewRow) string {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"order", "activity", "work_center", "scheduled_period", "material_date", "priority"})
	for _, r := range rows {
		w.AppendRow(table.Row{r.WorkOrderNumber, r.Activity, r.WorkCenter, r.ScheduledPeriod, r.MaterialDate, r.Priority})
	}
	return w.Render()
}

// ExportJSON encodes rows as JSON using json-iterator, the library the
// teacher uses for the work cache's (de)serialization.
func ExportJSON(rows []OverviewRow) ([]byte, error) {
	return jsonAPI.Marshal(rows)
}

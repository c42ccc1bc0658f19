package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesPeriodsAndWorkOrders(t *testing.T) {
	path := writeDoc(t, `{
		"periods": [
			{"id": "P1", "start": "2026-01-01T00:00:00Z", "end": "2026-01-15T00:00:00Z"},
			{"id": "P2", "start": "2026-01-15T00:00:00Z", "end": "2026-01-29T00:00:00Z"}
		],
		"work_orders": [
			{"number": 1000, "order_weight": 10, "work_load": {"MTN-MECH": 30}}
		]
	}`)

	catalog, backlog, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())

	wo, ok := backlog.Get(1000)
	require.True(t, ok)
	require.Equal(t, uint32(10), wo.OrderWeight)
	require.Equal(t, 30.0, wo.WorkLoad["MTN-MECH"])
}

func TestLoadResolvesUnloadingPointPeriod(t *testing.T) {
	path := writeDoc(t, `{
		"periods": [
			{"id": "P1", "start": "2026-01-01T00:00:00Z", "end": "2026-01-15T00:00:00Z"}
		],
		"work_orders": [
			{"number": 2000, "order_weight": 1, "work_load": {"MTN-ELEC": 50},
			 "unloading_point": {"present": true, "period_id": "P1"}}
		]
	}`)

	_, backlog, err := Load(path)
	require.NoError(t, err)

	wo, ok := backlog.Get(2000)
	require.True(t, ok)
	require.True(t, wo.UnloadingPoint.Present)
	require.Equal(t, "P1", wo.UnloadingPoint.Period.ID)
}

func TestLoadRejectsUnknownUnloadingPeriod(t *testing.T) {
	path := writeDoc(t, `{
		"periods": [
			{"id": "P1", "start": "2026-01-01T00:00:00Z", "end": "2026-01-15T00:00:00Z"}
		],
		"work_orders": [
			{"number": 1, "order_weight": 1, "work_load": {},
			 "unloading_point": {"present": true, "period_id": "P9"}}
		]
	}`)

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestLoadCollectsMultipleValidationErrors(t *testing.T) {
	path := writeDoc(t, `{
		"periods": [
			{"id": "P1", "start": "2026-01-01T00:00:00Z", "end": "2026-01-15T00:00:00Z"}
		],
		"work_orders": [
			{"number": 1, "order_weight": 1, "work_load": {}, "unloading_point": {"present": true, "period_id": "P9"}},
			{"number": 2, "order_weight": 1, "work_load": {}, "unloading_point": {"present": true, "period_id": "P8"}}
		]
	}`)

	_, _, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "P9")
	require.Contains(t, err.Error(), "P8")
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadParsesOperationsAndDisplayFields(t *testing.T) {
	path := writeDoc(t, `{
		"periods": [
			{"id": "P1", "start": "2026-01-01T00:00:00Z", "end": "2026-01-15T00:00:00Z"}
		],
		"work_orders": [
			{
				"number": 3000, "order_weight": 5, "work_load": {"MTN-MECH": 10},
				"order_type": "WDF",
				"priority": {"is_string": true, "string_value": "urgent"},
				"status_codes": {"material_status": "SMAT"},
				"text": {"order_description": "replace bearing"},
				"operations": [
					{"activity_number": 10, "number": 1, "resource": "MTN-MECH", "work_remaining": 4.5}
				]
			}
		]
	}`)

	_, backlog, err := Load(path)
	require.NoError(t, err)

	wo, ok := backlog.Get(3000)
	require.True(t, ok)
	require.Equal(t, "WDF", wo.OrderType.String())
	require.Equal(t, "urgent", wo.Priority.String())
	require.Equal(t, "SMAT", wo.StatusCodes.MaterialStatus.String())
	require.Equal(t, "replace bearing", wo.Text.OrderDescription)
	require.Len(t, wo.Operations, 1)
	require.Equal(t, uint32(10), wo.Operations[0].ActivityNumber)
	require.Equal(t, 4.5, wo.Operations[0].Operation.WorkRemaining)
}

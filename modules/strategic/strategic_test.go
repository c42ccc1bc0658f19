package strategic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mintmaint/strategic-scheduler/modules/strategic/agenterr"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
)

func testConfig() Config {
	var cfg Config
	cfg.RegisterFlagsAndApplyDefaults("", nil)
	cfg.TickInterval = time.Hour // never fires on its own during a test
	return cfg
}

func testEnv(t *testing.T, orders []workorder.WorkOrder) *SchedulingEnvironment {
	t.Helper()
	day := 24 * time.Hour
	epoch := time.Unix(0, 0).UTC()
	cat, err := period.NewCatalog([]period.Period{
		period.New("P1", epoch, epoch.Add(14*day)),
		period.New("P2", epoch.Add(14*day), epoch.Add(28*day)),
	})
	require.NoError(t, err)
	return NewSchedulingEnvironment(cat, workorder.NewStore(orders))
}

// startAgent brings an Agent up to Running and registers a cleanup that
// stops it, the same pattern the teacher's own service tests use.
func startAgent(t *testing.T, a *Agent) {
	t.Helper()
	require.NoError(t, a.StartAsync(context.Background()))
	require.NoError(t, a.AwaitRunning(context.Background()))
	t.Cleanup(func() {
		a.StopAsync()
		_ = a.AwaitTerminated(context.Background())
	})
}

func executeIteration(t *testing.T, a *Agent) {
	t.Helper()
	reply := make(chan struct{})
	a.Mailbox() <- ExecuteIterationRequest{Reply: reply}
	<-reply
}

func TestExecuteIterationPlacesAFittingOrder(t *testing.T) {
	wo := workorder.WorkOrder{
		Number:      1,
		OrderWeight: 10,
		WorkLoad:    map[workorder.Resource]float64{"MTN-MECH": 10},
	}
	env := testEnv(t, []workorder.WorkOrder{wo})
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan error, 1)
	a.Mailbox() <- SetCapacityRequest{Resource: "MTN-MECH", PeriodID: "P1", Hours: 40, Reply: reply}
	require.NoError(t, <-reply)

	executeIteration(t, a)

	status := make(chan AgentStatusResponse, 1)
	a.Mailbox() <- GetAgentStatusRequest{Reply: status}
	resp := <-status
	require.Equal(t, uint64(1), resp.Iteration)

	state := make(chan WorkOrdersStateResponse, 1)
	a.Mailbox() <- GetWorkOrdersStateRequest{Reply: state}
	s := <-state
	require.Len(t, s.States, 1)
	require.Equal(t, "P1", s.States[0].ScheduledPeriod)
}

func TestSetCapacityRejectsUnknownPeriod(t *testing.T) {
	env := testEnv(t, nil)
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan error, 1)
	a.Mailbox() <- SetCapacityRequest{Resource: "MTN-MECH", PeriodID: "P9", Hours: 10, Reply: reply}
	err = <-reply
	require.Error(t, err)
	require.True(t, agenterr.Is(err, agenterr.KindInvalidMessage))
}

func TestSetCapacityRejectsNegativeHours(t *testing.T) {
	env := testEnv(t, nil)
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan error, 1)
	a.Mailbox() <- SetCapacityRequest{Resource: "MTN-MECH", PeriodID: "P1", Hours: -1, Reply: reply}
	err = <-reply
	require.Error(t, err)
	require.True(t, agenterr.Is(err, agenterr.KindInvalidMessage))
}

func TestSetCapacityDecreaseUnschedulesAndRequeues(t *testing.T) {
	wo := workorder.WorkOrder{
		Number:      1,
		OrderWeight: 10,
		WorkLoad:    map[workorder.Resource]float64{"MTN-MECH": 30},
	}
	env := testEnv(t, []workorder.WorkOrder{wo})
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	setCap := func(period string, hours float64) error {
		reply := make(chan error, 1)
		a.Mailbox() <- SetCapacityRequest{Resource: "MTN-MECH", PeriodID: period, Hours: hours, Reply: reply}
		return <-reply
	}
	require.NoError(t, setCap("P1", 40))
	require.NoError(t, setCap("P2", 40))
	executeIteration(t, a)

	state := make(chan WorkOrdersStateResponse, 1)
	a.Mailbox() <- GetWorkOrdersStateRequest{Reply: state}
	s := <-state
	require.Len(t, s.States, 1)
	require.Equal(t, "P1", s.States[0].ScheduledPeriod)

	require.NoError(t, setCap("P1", 10))
	require.NoError(t, setCap("P2", 40))

	executeIteration(t, a)

	state = make(chan WorkOrdersStateResponse, 1)
	a.Mailbox() <- GetWorkOrdersStateRequest{Reply: state}
	s = <-state
	require.Equal(t, "P2", s.States[0].ScheduledPeriod)
}

func TestSetManualPlacementLocksOrderAndSurvivesSweep(t *testing.T) {
	wo := workorder.WorkOrder{
		Number:      1,
		OrderWeight: 10,
		WorkLoad:    map[workorder.Resource]float64{"MTN-ELEC": 500},
	}
	env := testEnv(t, []workorder.WorkOrder{wo})
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan error, 1)
	a.Mailbox() <- SetManualPlacementRequest{Order: 1, PeriodID: "P2", Reply: reply}
	require.NoError(t, <-reply)

	executeIteration(t, a)

	state := make(chan WorkOrdersStateResponse, 1)
	a.Mailbox() <- GetWorkOrdersStateRequest{Reply: state}
	s := <-state
	require.Equal(t, "P2", s.States[0].ScheduledPeriod)
	require.Equal(t, "P2", s.States[0].LockedPeriod)
}

func TestSetManualPlacementUnknownOrderIsRejected(t *testing.T) {
	env := testEnv(t, nil)
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan error, 1)
	a.Mailbox() <- SetManualPlacementRequest{Order: 99, PeriodID: "P1", Reply: reply}
	err = <-reply
	require.Error(t, err)
	require.True(t, agenterr.Is(err, agenterr.KindInvalidMessage))
}

func TestAddExcludedPeriodForcesReplacement(t *testing.T) {
	wo := workorder.WorkOrder{
		Number:      1,
		OrderWeight: 10,
		WorkLoad:    map[workorder.Resource]float64{"MTN-MECH": 10},
	}
	env := testEnv(t, []workorder.WorkOrder{wo})
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	setCap := func(period string, hours float64) {
		reply := make(chan error, 1)
		a.Mailbox() <- SetCapacityRequest{Resource: "MTN-MECH", PeriodID: period, Hours: hours, Reply: reply}
		require.NoError(t, <-reply)
	}
	setCap("P1", 40)
	setCap("P2", 40)
	executeIteration(t, a)

	exclReply := make(chan error, 1)
	a.Mailbox() <- AddExcludedPeriodRequest{Order: 1, PeriodID: "P1", Reply: exclReply}
	require.NoError(t, <-exclReply)

	executeIteration(t, a)

	state := make(chan WorkOrdersStateResponse, 1)
	a.Mailbox() <- GetWorkOrdersStateRequest{Reply: state}
	s := <-state
	require.Equal(t, "P2", s.States[0].ScheduledPeriod)
}

func TestGetPeriodsReturnsCatalogOrder(t *testing.T) {
	env := testEnv(t, nil)
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan GetPeriodsResponse, 1)
	a.Mailbox() <- GetPeriodsRequest{Reply: reply}
	resp := <-reply
	require.Equal(t, []string{"P1", "P2"}, resp.PeriodIDs)
}

func TestExportProducesValidJSON(t *testing.T) {
	wo := workorder.WorkOrder{
		Number:      1,
		OrderWeight: 1,
		WorkLoad:    map[workorder.Resource]float64{},
		Operations: []workorder.OperationEntry{
			{ActivityNumber: 1, Operation: workorder.Operation{Resource: "MTN-MECH"}},
		},
	}
	env := testEnv(t, []workorder.WorkOrder{wo})
	a, err := New(testConfig(), env)
	require.NoError(t, err)
	startAgent(t, a)

	reply := make(chan ExportResponse, 1)
	a.Mailbox() <- ExportRequest{Reply: reply}
	resp := <-reply
	require.NoError(t, resp.Err)
	require.Contains(t, string(resp.JSON), "work_order_number")
}

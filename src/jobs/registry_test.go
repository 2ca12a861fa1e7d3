package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, Event) (any, error) { return "ok", nil }

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Job{Name: "a", Trigger: Trigger{Event: "e"}, Run: noop}))

	err := r.Register(Job{Name: "a", Trigger: Trigger{Cron: "* * * * *"}, Run: noop})
	assert.ErrorIs(t, err, ErrDuplicateJob)
	assert.Len(t, r.List(), 1)
}

func TestRegisterValidates(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Job{Trigger: Trigger{Event: "e"}, Run: noop}))
	assert.Error(t, r.Register(Job{Name: "x", Run: noop}))
	assert.Error(t, r.Register(Job{Name: "x", Trigger: Trigger{Event: "e"}}))
}

func TestApplicationJobs(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, Register(r, Deps{}))

	var names []string
	for _, j := range r.List() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{
		CheckBudgetAlerts,
		CleanupOldData,
		GenerateMonthlyReports,
		ProcessRecurringTransaction,
		TriggerRecurringTransactions,
	}, names)

	j, ok := r.Get(ProcessRecurringTransaction)
	require.True(t, ok)
	assert.Equal(t, EventRecurringProcess, j.Trigger.Event)

	assert.ErrorIs(t, Register(r, Deps{}), ErrDuplicateJob, "registering the job set twice")
}

func TestInvokeRetries(t *testing.T) {
	r := NewRegistry()
	r.Backoff = func(int) time.Duration { return 0 }

	calls := 0
	require.NoError(t, r.Register(Job{Name: "flaky", Trigger: Trigger{Event: "e"}, Run: func(context.Context, Event) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return calls, nil
	}}))

	res, err := r.Invoke(context.Background(), "flaky", Event{})
	require.NoError(t, err)
	assert.Equal(t, 2, res)
}

func TestInvokeGivesUp(t *testing.T) {
	r := NewRegistry()
	r.Backoff = func(int) time.Duration { return 0 }

	calls := 0
	require.NoError(t, r.Register(Job{Name: "broken", Trigger: Trigger{Event: "e"}, Run: func(context.Context, Event) (any, error) {
		calls++
		return nil, errors.New("permanent")
	}}))

	_, err := r.Invoke(context.Background(), "broken", Event{})
	assert.ErrorContains(t, err, "permanent")
	assert.Equal(t, 2, calls)

	_, err = r.Invoke(context.Background(), "missing", Event{})
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestDispatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Job{Name: "a", Trigger: Trigger{Event: "ping"}, Run: noop}))
	require.NoError(t, r.Register(Job{Name: "b", Trigger: Trigger{Event: "ping"}, Run: noop}))
	require.NoError(t, r.Register(Job{Name: "c", Trigger: Trigger{Event: "other"}, Run: noop}))

	results, err := r.Dispatch(context.Background(), Event{Name: "ping"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "ok", "b": "ok"}, results)

	_, err = r.Dispatch(context.Background(), Event{Name: "nobody"})
	assert.Error(t, err)
}

func TestSchedule(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, Register(r, Deps{}))

	c := cron.New()
	require.NoError(t, r.Schedule(context.Background(), c))
	assert.Len(t, c.Entries(), 4)
}

func TestScheduleRejectsBadCronExpression(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Job{Name: "bad", Trigger: Trigger{Cron: "every tuesday"}, Run: noop}))
	assert.Error(t, r.Schedule(context.Background(), cron.New()))
}

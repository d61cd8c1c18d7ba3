package practice_test

import (
	"context"
	"testing"
	"time"

	"github.com/practice/backend/internal/application/practice"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *generatorHarness) setTask(t *testing.T, task engagement.Task, status engagement.TaskStatus) *engagement.Task {
	t.Helper()
	got, err := h.status.ChangeTaskStatus(context.Background(), practice.ChangeTaskStatusCommand{
		TenantID: h.TenantID,
		TaskID:   task.ID,
		Status:   status,
		At:       time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return got
}

func TestStatusService_PeriodRollUp(t *testing.T) {
	h := newGeneratorHarness(t, practice.DefaultGeneratorConfig())
	eng := h.Engagement(h.customer, h.service, calendar.GranularityMonthly, testutil.DatePtr(2025, time.February, 1), nil)
	h.Template(h.service, "Reconcile bank", dueDay(10))
	h.Template(h.service, "Payroll", dueDay(25))
	h.generate(t, eng.ID, testutil.Date(2025, time.February, 26))

	tasks := h.tasks(t, eng.ID)
	require.Len(t, tasks, 2)

	h.setTask(t, tasks[0], engagement.TaskStatusInProgress)
	period := h.periods(t, eng.ID)[0]
	assert.Equal(t, engagement.PeriodStatusInProgress, period.Status)
	assert.Zero(t, period.CompletedTasks)

	started := h.setTask(t, tasks[0], engagement.TaskStatusCompleted)
	assert.NotNil(t, started.StartedAt)
	assert.NotNil(t, started.CompletedAt)
	assert.Empty(t, h.events.Handled())

	h.setTask(t, tasks[1], engagement.TaskStatusCompleted)
	period = h.periods(t, eng.ID)[0]
	assert.Equal(t, engagement.PeriodStatusCompleted, period.Status)
	assert.Equal(t, 2, period.CompletedTasks)
	require.Equal(t, []string{engagement.EventTypePeriodCompleted}, h.events.HandledTypes())
	completed := h.events.Handled()[0].(*engagement.PeriodCompletedEvent)
	assert.Equal(t, period.ID, completed.PeriodID)
	assert.Equal(t, "Feb 2025", completed.PeriodName)

	h.events.Reset()
	reopened := h.setTask(t, tasks[1], engagement.TaskStatusPending)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, []string{engagement.EventTypeTaskReopened}, h.events.HandledTypes())
	assert.Equal(t, engagement.PeriodStatusInProgress, h.periods(t, eng.ID)[0].Status)
}

func TestStatusService_OneOffRollUp(t *testing.T) {
	h := newGeneratorHarness(t, practice.DefaultGeneratorConfig())
	eng := h.Engagement(h.customer, h.service, calendar.GranularityNone, testutil.DatePtr(2025, time.March, 1), nil)
	h.Template(h.service, "Prepare return", nil)
	h.generate(t, eng.ID, testutil.Date(2025, time.March, 1))
	engagements := persistence.NewGormEngagementRepository(h.DB)
	ctx := context.Background()

	task := h.tasks(t, eng.ID)[0]
	h.setTask(t, task, engagement.TaskStatusInProgress)
	got, err := engagements.FindByIDForTenant(ctx, h.TenantID, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StatusInProgress, got.Status)

	h.setTask(t, task, engagement.TaskStatusCompleted)
	got, err = engagements.FindByIDForTenant(ctx, h.TenantID, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, []string{engagement.EventTypeEngagementCompleted}, h.events.HandledTypes())

	h.events.Reset()
	h.setTask(t, task, engagement.TaskStatusPending)
	got, err = engagements.FindByIDForTenant(ctx, h.TenantID, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StatusInProgress, got.Status)
	assert.Equal(t, []string{engagement.EventTypeTaskReopened, engagement.EventTypeEngagementReopened}, h.events.HandledTypes())
}

func TestStatusService_CancelledOneOffIsNotRolledUp(t *testing.T) {
	h := newGeneratorHarness(t, practice.DefaultGeneratorConfig())
	eng := h.Engagement(h.customer, h.service, calendar.GranularityNone, testutil.DatePtr(2025, time.March, 1), nil)
	h.Template(h.service, "Prepare return", nil)
	h.generate(t, eng.ID, testutil.Date(2025, time.March, 1))
	ctx := context.Background()

	_, err := h.status.ChangeEngagementStatus(ctx, practice.ChangeEngagementStatusCommand{
		TenantID:     h.TenantID,
		EngagementID: eng.ID,
		Status:       engagement.StatusCancelled,
	})
	require.NoError(t, err)

	h.setTask(t, h.tasks(t, eng.ID)[0], engagement.TaskStatusCompleted)
	got, err := persistence.NewGormEngagementRepository(h.DB).FindByIDForTenant(ctx, h.TenantID, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.StatusCancelled, got.Status)
	assert.Empty(t, h.events.Handled())
}

func TestStatusService_ChangeEngagementStatus(t *testing.T) {
	h := newGeneratorHarness(t, practice.DefaultGeneratorConfig())
	eng := h.Engagement(h.customer, h.service, calendar.GranularityNone, nil, nil)
	ctx := context.Background()
	at := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	got, err := h.status.ChangeEngagementStatus(ctx, practice.ChangeEngagementStatusCommand{
		TenantID:     h.TenantID,
		EngagementID: eng.ID,
		Status:       engagement.StatusCompleted,
		At:           at,
	})
	require.NoError(t, err)
	assert.True(t, got.CompletedAt.Equal(at))
	assert.Equal(t, []string{engagement.EventTypeEngagementCompleted}, h.events.HandledTypes())

	_, err = h.status.ChangeEngagementStatus(ctx, practice.ChangeEngagementStatusCommand{
		TenantID:     h.TenantID,
		EngagementID: eng.ID,
		Status:       engagement.Status("archived"),
	})
	assert.Error(t, err)
}

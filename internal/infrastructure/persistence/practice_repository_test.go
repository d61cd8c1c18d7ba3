package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/duedate"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type practiceFixture struct {
	*testutil.Fixture
	engagement *engagement.Engagement
	template   engagement.TaskTemplate
}

func newPracticeFixture(t *testing.T) practiceFixture {
	t.Helper()
	f := testutil.NewFixture(t)
	svc := f.Service("Bookkeeping", nil)
	cust := f.Customer("Acme", nil)
	eng := f.Engagement(cust.ID, svc.ID, calendar.GranularityMonthly, testutil.DatePtr(2025, time.January, 1), nil)
	tpl := f.Template(svc.ID, "Reconcile bank", func(t *engagement.TaskTemplate) { t.DueDay = 10 })
	return practiceFixture{Fixture: f, engagement: eng, template: tpl}
}

func (f practiceFixture) period(start time.Time) *engagement.Period {
	cal := calendar.Config{Granularity: calendar.GranularityMonthly}
	return engagement.NewPeriod(f.TenantID, f.engagement.ID, cal.PeriodContaining(start))
}

func (f practiceFixture) task(periodID *uuid.UUID, start time.Time) *engagement.Task {
	eff := engagement.Merge(f.template, nil)
	w := calendar.Window{Start: start, End: start.AddDate(0, 1, -1), Name: "window"}
	return engagement.NewTask(f.TenantID, f.engagement.ID, periodID, eff, duedate.Occurrence{Window: w, Due: start.AddDate(0, 0, 9)})
}

func TestGormEngagementRepository(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	repo := persistence.NewGormEngagementRepository(f.DB)

	got, err := repo.FindByIDForTenant(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, calendar.GranularityMonthly, got.Granularity)
	assert.True(t, got.StartDate.Equal(testutil.Date(2025, time.January, 1)))

	amount := decimal.NewFromInt(250)
	got.BillingAmount = &amount
	got.AutoBill = true
	require.NoError(t, repo.Save(ctx, got))

	reloaded, err := repo.FindByIDForTenant(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AutoBill)
	assert.True(t, reloaded.BillingAmount.Equal(amount))

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), f.engagement.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "other tenants must not see the engagement")
}

func TestGormTaskTemplateRepository_FindByServiceOrdersBySortOrder(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	repo := persistence.NewGormTaskTemplateRepository(f.DB)
	require.NoError(t, repo.Create(ctx, engagement.TaskTemplate{
		ID:        uuid.New(),
		TenantID:  f.TenantID,
		ServiceID: f.template.ServiceID,
		Title:     "File return",
		SortOrder: -1,
		IsActive:  true,
	}))

	templates, err := repo.FindByService(ctx, f.TenantID, f.template.ServiceID)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "File return", templates[0].Title)
	assert.Equal(t, "Reconcile bank", templates[1].Title)

	configRepo := persistence.NewGormTaskConfigRepository(f.DB)
	require.NoError(t, configRepo.Create(ctx, engagement.TaskConfig{
		ID:             uuid.New(),
		TenantID:       f.TenantID,
		EngagementID:   f.engagement.ID,
		TaskTemplateID: f.template.ID,
		DueDay:         testutil.Ptr(20),
	}))
	configs, err := configRepo.FindByEngagement(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 20, *configs[0].DueDay)
	assert.Nil(t, configs[0].Title)
}

func TestGormPeriodRepository_CreateIsIdempotentOnStartDate(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	repo := persistence.NewGormPeriodRepository(f.DB)

	jan := f.period(testutil.Date(2025, time.January, 15))
	created, err := repo.Create(ctx, jan)
	require.NoError(t, err)
	assert.True(t, created)

	dup := f.period(testutil.Date(2025, time.January, 20))
	created, err = repo.Create(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created, "a second period with the same start date must be a no-op")

	found, err := repo.FindByStartDate(ctx, f.TenantID, f.engagement.ID, testutil.Date(2025, time.January, 1))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, jan.ID, found.ID)
	assert.Equal(t, "Jan 2025", found.Name)

	missing, err := repo.FindByStartDate(ctx, f.TenantID, f.engagement.ID, testutil.Date(2025, time.February, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.Create(ctx, f.period(testutil.Date(2025, time.February, 3)))
	require.NoError(t, err)
	periods, err := repo.FindByEngagement(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "Jan 2025", periods[0].Name)
	assert.Equal(t, "Feb 2025", periods[1].Name)

	n, err := repo.DeleteByEngagement(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGormPeriodRepository_Save(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	repo := persistence.NewGormPeriodRepository(f.DB)

	p := f.period(testutil.Date(2025, time.March, 1))
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	p.Refresh(engagement.TaskCounts{Total: 2, Completed: 2}, testutil.Date(2025, time.April, 1))
	p.MarkBilled(uuid.New())
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.FindByIDForTenant(ctx, f.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.PeriodStatusCompleted, got.Status)
	assert.Equal(t, 2, got.TotalTasks)
	assert.True(t, got.InvoiceGenerated)
	assert.Equal(t, p.InvoiceID, got.InvoiceID)
	assert.Empty(t, got.GetDomainEvents(), "loaded aggregates carry no pending events")
}

func TestGormTaskRepository_KeyBackstop(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	repo := persistence.NewGormTaskRepository(f.DB)

	p := f.period(testutil.Date(2025, time.January, 1))
	_, err := persistence.NewGormPeriodRepository(f.DB).Create(ctx, p)
	require.NoError(t, err)

	start := testutil.Date(2025, time.January, 1)
	first := f.task(&p.ID, start)
	ok, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := repo.ExistsByKey(ctx, f.TenantID, first.Key())
	require.NoError(t, err)
	assert.True(t, exists)

	ok, err = repo.CreateIfAbsent(ctx, f.task(&p.ID, start))
	require.NoError(t, err)
	assert.False(t, ok, "the composite key must turn a duplicate into a no-op")

	// a different occurrence start inside the same period is a separate task
	ok, err = repo.CreateIfAbsent(ctx, f.task(&p.ID, testutil.Date(2025, time.January, 16)))
	require.NoError(t, err)
	assert.True(t, ok)

	other := first.Key()
	other.PeriodID = nil
	exists, err = repo.ExistsByKey(ctx, f.TenantID, other)
	require.NoError(t, err)
	assert.False(t, exists, "a period-less key must not match a period task")

	tasks, err := repo.FindByEngagement(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestGormTaskRepository_Counts(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	repo := persistence.NewGormTaskRepository(f.DB)

	p := f.period(testutil.Date(2025, time.January, 1))
	_, err := persistence.NewGormPeriodRepository(f.DB).Create(ctx, p)
	require.NoError(t, err)

	at := time.Date(2025, time.January, 12, 9, 0, 0, 0, time.UTC)
	statuses := []engagement.TaskStatus{engagement.TaskStatusCompleted, engagement.TaskStatusInProgress, engagement.TaskStatusPending}
	for i, st := range statuses {
		task := f.task(&p.ID, testutil.Date(2025, time.January, 1+i))
		_, err := repo.CreateIfAbsent(ctx, task)
		require.NoError(t, err)
		require.NoError(t, task.ChangeStatus(st, at))
		require.NoError(t, repo.Save(ctx, task))
	}
	oneOff := f.task(nil, testutil.Date(2025, time.January, 1))
	_, err = repo.CreateIfAbsent(ctx, oneOff)
	require.NoError(t, err)

	counts, err := repo.CountByPeriod(ctx, f.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.TaskCounts{Total: 3, Started: 1, Completed: 1}, counts)

	counts, err = repo.CountOneOff(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.TaskCounts{Total: 1}, counts)

	counts, err = repo.CountByPeriod(ctx, f.TenantID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, engagement.TaskCounts{}, counts)

	loaded, err := repo.FindByIDForTenant(ctx, f.TenantID, oneOff.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.PeriodID)
	assert.True(t, loaded.OccurrenceStart.Equal(testutil.Date(2025, time.January, 1)))

	n, err := repo.DeleteByEngagement(ctx, f.TenantID, f.engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

package engagement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/duedate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCounts_Status(t *testing.T) {
	assert.Equal(t, PeriodStatusPending, TaskCounts{}.Status())
	assert.Equal(t, PeriodStatusPending, TaskCounts{Total: 3}.Status())
	assert.Equal(t, PeriodStatusInProgress, TaskCounts{Total: 3, Started: 1}.Status())
	assert.Equal(t, PeriodStatusInProgress, TaskCounts{Total: 3, Completed: 2}.Status())
	assert.Equal(t, PeriodStatusCompleted, TaskCounts{Total: 3, Completed: 3}.Status())
}

func TestPeriod_Refresh(t *testing.T) {
	w := calendar.Config{Granularity: calendar.GranularityMonthly}.PeriodContaining(calendar.Date(2025, time.January, 15))
	completedAt := time.Date(2025, time.February, 3, 14, 0, 0, 0, time.UTC)

	t.Run("new period from window", func(t *testing.T) {
		p := NewPeriod(uuid.New(), uuid.New(), w)
		assert.Equal(t, "Jan 2025", p.Name)
		assert.Equal(t, w, p.Window())
		assert.Equal(t, PeriodStatusPending, p.Status)
	})

	t.Run("completion raises PeriodCompleted once", func(t *testing.T) {
		p := NewPeriod(uuid.New(), uuid.New(), w)
		assert.True(t, p.Refresh(TaskCounts{Total: 2, Completed: 1}, completedAt))
		assert.Equal(t, PeriodStatusInProgress, p.Status)
		assert.Empty(t, p.GetDomainEvents())

		assert.True(t, p.Refresh(TaskCounts{Total: 2, Completed: 2}, completedAt))
		assert.True(t, p.IsCompleted())
		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*PeriodCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, p.ID, evt.PeriodID)
		assert.Equal(t, p.EngagementID, evt.EngagementID)
		assert.True(t, evt.At.Equal(completedAt))

		assert.False(t, p.Refresh(TaskCounts{Total: 2, Completed: 2}, completedAt))
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("empty period never completes", func(t *testing.T) {
		p := NewPeriod(uuid.New(), uuid.New(), w)
		p.Refresh(TaskCounts{}, completedAt)
		assert.False(t, p.IsCompleted())
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("billing flags", func(t *testing.T) {
		p := NewPeriod(uuid.New(), uuid.New(), w)
		id := uuid.New()
		p.MarkBilled(id)
		assert.True(t, p.IsBilled)
		assert.True(t, p.InvoiceGenerated)
		p.ResetBilling()
		assert.False(t, p.IsBilled)
		assert.False(t, p.InvoiceGenerated)
		assert.Equal(t, id, *p.InvoiceID)
	})
}

func TestTask(t *testing.T) {
	at := time.Date(2025, time.February, 3, 10, 0, 0, 0, time.UTC)
	periodID := uuid.New()
	eff := EffectiveTask{TemplateID: uuid.New(), Title: "Payroll", SortOrder: 4, Priority: PriorityMedium, IsActive: true}

	newTask := func(occ duedate.Occurrence) *Task {
		return NewTask(uuid.New(), uuid.New(), &periodID, eff, occ)
	}

	t.Run("whole period occurrence", func(t *testing.T) {
		w := calendar.Window{Start: calendar.Date(2025, time.January, 1), End: calendar.Date(2025, time.January, 31)}
		task := newTask(duedate.Occurrence{Window: w, Due: calendar.Date(2025, time.January, 10)})
		assert.Equal(t, "Payroll", task.Title)
		assert.Equal(t, 4, task.SortOrder)
		assert.Equal(t, w.Start, task.OccurrenceStart)
		assert.Equal(t, TaskStatusPending, task.Status)

		key := task.Key()
		assert.Equal(t, eff.TemplateID, key.TaskTemplateID)
		assert.Equal(t, &periodID, key.PeriodID)
	})

	t.Run("sub-interval occurrence", func(t *testing.T) {
		w := calendar.Window{Start: calendar.Date(2025, time.February, 1), End: calendar.Date(2025, time.February, 28), Name: "Feb 2025"}
		task := newTask(duedate.Occurrence{Window: w, Due: calendar.Date(2025, time.February, 10), Label: "Feb 2025", Index: 2})
		assert.Equal(t, "Payroll (Feb 2025)", task.Title)
		assert.Equal(t, 402, task.SortOrder)
	})

	t.Run("status timestamps and reopen event", func(t *testing.T) {
		task := newTask(duedate.Occurrence{Due: calendar.Date(2025, time.January, 10)})

		require.NoError(t, task.ChangeStatus(TaskStatusInProgress, at))
		require.NotNil(t, task.StartedAt)
		assert.Nil(t, task.CompletedAt)

		require.NoError(t, task.ChangeStatus(TaskStatusCompleted, at))
		assert.True(t, task.IsCompleted())
		require.NotNil(t, task.CompletedAt)
		assert.Empty(t, task.GetDomainEvents())

		require.NoError(t, task.ChangeStatus(TaskStatusPending, at))
		assert.Nil(t, task.CompletedAt)
		assert.Nil(t, task.StartedAt)
		events := task.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*TaskReopenedEvent)
		require.True(t, ok)
		assert.Equal(t, task.ID, evt.TaskID)
		assert.Equal(t, TaskStatusPending, evt.NewStatus)
	})

	t.Run("invalid status", func(t *testing.T) {
		task := newTask(duedate.Occurrence{})
		assert.Error(t, task.ChangeStatus("blocked", at))
	})
}

package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/duedate"
	"github.com/practice/backend/internal/domain/shared"
)

// TaskStatus represents the status of a checklist task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid checks if the status is a valid TaskStatus
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

// TaskKey identifies a generated task. Generation never creates two tasks with the same key.
type TaskKey struct {
	EngagementID    uuid.UUID
	PeriodID        *uuid.UUID // nil for one-off engagements
	TaskTemplateID  uuid.UUID
	OccurrenceStart time.Time
}

// Task is one checklist instance inside a period, or directly under a one-off engagement
type Task struct {
	shared.TenantAggregateRoot
	EngagementID     uuid.UUID  `json:"engagement_id"`
	PeriodID         *uuid.UUID `json:"period_id,omitempty"`
	TaskTemplateID   uuid.UUID  `json:"task_template_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DueDate          time.Time  `json:"due_date"`
	OccurrenceStart  time.Time  `json:"occurrence_start"`
	SortOrder        int        `json:"sort_order"`
	Priority         Priority   `json:"priority"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Status           TaskStatus `json:"status"`
	AssigneeID       *uuid.UUID `json:"assignee_id,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// NewTask creates a pending task for one resolved occurrence
func NewTask(tenantID, engagementID uuid.UUID, periodID *uuid.UUID, eff EffectiveTask, occ duedate.Occurrence) *Task {
	return &Task{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EngagementID:        engagementID,
		PeriodID:            periodID,
		TaskTemplateID:      eff.TemplateID,
		Title:               occ.Title(eff.Title),
		Description:         eff.Description,
		DueDate:             occ.Due,
		OccurrenceStart:     occ.Window.Start,
		SortOrder:           occ.SortOrder(eff.SortOrder),
		Priority:            eff.Priority,
		EstimatedMinutes:    eff.EstimatedMinutes,
		Status:              TaskStatusPending,
		AssigneeID:          eff.AssigneeID,
	}
}

// Key returns the generation key of the task
func (t *Task) Key() TaskKey {
	return TaskKey{
		EngagementID:    t.EngagementID,
		PeriodID:        t.PeriodID,
		TaskTemplateID:  t.TaskTemplateID,
		OccurrenceStart: t.OccurrenceStart,
	}
}

// IsCompleted returns true if the task is completed
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// ChangeStatus moves the task to another status at the given instant.
// Leaving completed raises TaskReopened.
func (t *Task) ChangeStatus(to TaskStatus, at time.Time) error {
	if !to.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid task status")
	}
	from := t.Status
	if from == to {
		return nil
	}

	t.Status = to
	switch to {
	case TaskStatusPending:
		t.StartedAt = nil
		t.CompletedAt = nil
	case TaskStatusInProgress:
		if t.StartedAt == nil {
			t.StartedAt = &at
		}
		t.CompletedAt = nil
	case TaskStatusCompleted:
		if t.StartedAt == nil {
			t.StartedAt = &at
		}
		t.CompletedAt = &at
	}

	if from == TaskStatusCompleted {
		t.AddDomainEvent(NewTaskReopenedEvent(t, to))
	}
	t.Touch()
	return nil
}

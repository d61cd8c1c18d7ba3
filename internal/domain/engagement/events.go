package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
)

// Event types raised by engagements, periods and tasks
const (
	EventTypePeriodCompleted     = "PeriodCompleted"
	EventTypeTaskReopened        = "TaskReopened"
	EventTypeEngagementCompleted = "EngagementCompleted"
	EventTypeEngagementReopened  = "EngagementReopened"
)

// PeriodCompletedEvent is raised when the last outstanding task of a period is completed
type PeriodCompletedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID `json:"period_id"`
	EngagementID uuid.UUID `json:"engagement_id"`
	PeriodName   string    `json:"period_name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	At           time.Time `json:"at"`
}

// EventType returns the event type name
func (e *PeriodCompletedEvent) EventType() string {
	return EventTypePeriodCompleted
}

// NewPeriodCompletedEvent creates a new PeriodCompletedEvent for a completion at the given instant
func NewPeriodCompletedEvent(p *Period, at time.Time) *PeriodCompletedEvent {
	return &PeriodCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodCompleted, "Period", p.ID, p.TenantID),
		PeriodID:        p.ID,
		EngagementID:    p.EngagementID,
		PeriodName:      p.Name,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		At:              at,
	}
}

// TaskReopenedEvent is raised when a completed task becomes incomplete again
type TaskReopenedEvent struct {
	shared.BaseDomainEvent
	TaskID       uuid.UUID  `json:"task_id"`
	EngagementID uuid.UUID  `json:"engagement_id"`
	PeriodID     *uuid.UUID `json:"period_id,omitempty"`
	NewStatus    TaskStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *TaskReopenedEvent) EventType() string {
	return EventTypeTaskReopened
}

// NewTaskReopenedEvent creates a new TaskReopenedEvent
func NewTaskReopenedEvent(t *Task, to TaskStatus) *TaskReopenedEvent {
	return &TaskReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskReopened, "Task", t.ID, t.TenantID),
		TaskID:          t.ID,
		EngagementID:    t.EngagementID,
		PeriodID:        t.PeriodID,
		NewStatus:       to,
	}
}

// EngagementCompletedEvent is raised when an engagement reaches completed
type EngagementCompletedEvent struct {
	shared.BaseDomainEvent
	EngagementID uuid.UUID `json:"engagement_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Recurring    bool      `json:"recurring"`
	At           time.Time `json:"at"`
}

// EventType returns the event type name
func (e *EngagementCompletedEvent) EventType() string {
	return EventTypeEngagementCompleted
}

// NewEngagementCompletedEvent creates a new EngagementCompletedEvent for a completion at the given instant
func NewEngagementCompletedEvent(e *Engagement, at time.Time) *EngagementCompletedEvent {
	return &EngagementCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEngagementCompleted, "Engagement", e.ID, e.TenantID),
		EngagementID:    e.ID,
		CustomerID:      e.CustomerID,
		Recurring:       e.IsRecurring(),
		At:              at,
	}
}

// EngagementReopenedEvent is raised when a completed engagement leaves completed
type EngagementReopenedEvent struct {
	shared.BaseDomainEvent
	EngagementID uuid.UUID `json:"engagement_id"`
	NewStatus    Status    `json:"new_status"`
}

// EventType returns the event type name
func (e *EngagementReopenedEvent) EventType() string {
	return EventTypeEngagementReopened
}

// NewEngagementReopenedEvent creates a new EngagementReopenedEvent
func NewEngagementReopenedEvent(e *Engagement, to Status) *EngagementReopenedEvent {
	return &EngagementReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEngagementReopened, "Engagement", e.ID, e.TenantID),
		EngagementID:    e.ID,
		NewStatus:       to,
	}
}

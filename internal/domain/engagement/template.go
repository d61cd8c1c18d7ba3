package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/duedate"
)

// Priority of a checklist task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// TaskTemplate is a service-level checklist item definition.
// Templates are maintained outside this service and read-only here.
type TaskTemplate struct {
	ID                uuid.UUID            `json:"id"`
	TenantID          uuid.UUID            `json:"tenant_id"`
	ServiceID         uuid.UUID            `json:"service_id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Granularity       calendar.Granularity `json:"granularity"`
	ExactDate         *time.Time           `json:"exact_date,omitempty"`
	DueMonth          int                  `json:"due_month"`
	DueDay            int                  `json:"due_day"`
	DueWeekday        int                  `json:"due_weekday"`
	OffsetType        duedate.OffsetType   `json:"offset_type"`
	OffsetValue       int                  `json:"offset_value"`
	Priority          Priority             `json:"priority"`
	EstimatedMinutes  int                  `json:"estimated_minutes"`
	DefaultAssigneeID *uuid.UUID           `json:"default_assignee_id,omitempty"`
	SortOrder         int                  `json:"sort_order"`
	IsActive          bool                 `json:"is_active"`
	StartDate         *time.Time           `json:"start_date,omitempty"`
}

// TaskConfig overrides a TaskTemplate for one engagement. Nil fields inherit the template.
type TaskConfig struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	EngagementID   uuid.UUID `json:"engagement_id"`
	TaskTemplateID uuid.UUID `json:"task_template_id"`

	Title            *string               `json:"title,omitempty"`
	Granularity      *calendar.Granularity `json:"granularity,omitempty"`
	ExactDate        *time.Time            `json:"exact_date,omitempty"`
	DueMonth         *int                  `json:"due_month,omitempty"`
	DueDay           *int                  `json:"due_day,omitempty"`
	DueWeekday       *int                  `json:"due_weekday,omitempty"`
	OffsetType       *duedate.OffsetType   `json:"offset_type,omitempty"`
	OffsetValue      *int                  `json:"offset_value,omitempty"`
	Priority         *Priority             `json:"priority,omitempty"`
	EstimatedMinutes *int                  `json:"estimated_minutes,omitempty"`
	AssigneeID       *uuid.UUID            `json:"assignee_id,omitempty"`
	SortOrder        *int                  `json:"sort_order,omitempty"`
	IsActive         *bool                 `json:"is_active,omitempty"`
	StartDate        *time.Time            `json:"start_date,omitempty"`
}

// EffectiveTask is a template with its engagement override applied
type EffectiveTask struct {
	TemplateID       uuid.UUID
	Title            string
	Description      string
	Rule             duedate.Rule
	Priority         Priority
	EstimatedMinutes int
	AssigneeID       *uuid.UUID
	SortOrder        int
	IsActive         bool
	StartDate        *time.Time
}

// AppliesTo reports whether the task can produce occurrences in a window ending on end
func (t EffectiveTask) AppliesTo(end time.Time) bool {
	if !t.IsActive {
		return false
	}
	return t.StartDate == nil || !calendar.Truncate(*t.StartDate).After(end)
}

// Merge layers an optional engagement override over a template. It is resolved once per
// template and the result feeds due-date resolution.
func Merge(tpl TaskTemplate, cfg *TaskConfig) EffectiveTask {
	eff := EffectiveTask{
		TemplateID:  tpl.ID,
		Title:       tpl.Title,
		Description: tpl.Description,
		Rule: duedate.Rule{
			Granularity: tpl.Granularity,
			ExactDate:   tpl.ExactDate,
			DueMonth:    tpl.DueMonth,
			DueDay:      tpl.DueDay,
			DueWeekday:  tpl.DueWeekday,
			OffsetType:  tpl.OffsetType,
			OffsetValue: tpl.OffsetValue,
		},
		Priority:         tpl.Priority,
		EstimatedMinutes: tpl.EstimatedMinutes,
		AssigneeID:       tpl.DefaultAssigneeID,
		SortOrder:        tpl.SortOrder,
		IsActive:         tpl.IsActive,
		StartDate:        tpl.StartDate,
	}
	if cfg == nil {
		return eff
	}

	if cfg.Title != nil && *cfg.Title != "" {
		eff.Title = *cfg.Title
	}
	if cfg.Granularity != nil {
		eff.Rule.Granularity = *cfg.Granularity
	}
	if cfg.ExactDate != nil {
		eff.Rule.ExactDate = cfg.ExactDate
	}
	if cfg.DueMonth != nil {
		eff.Rule.DueMonth = *cfg.DueMonth
	}
	if cfg.DueDay != nil {
		eff.Rule.DueDay = *cfg.DueDay
	}
	if cfg.DueWeekday != nil {
		eff.Rule.DueWeekday = *cfg.DueWeekday
	}
	if cfg.OffsetType != nil {
		eff.Rule.OffsetType = *cfg.OffsetType
	}
	if cfg.OffsetValue != nil {
		eff.Rule.OffsetValue = *cfg.OffsetValue
	}
	if cfg.Priority != nil {
		eff.Priority = *cfg.Priority
	}
	if cfg.EstimatedMinutes != nil {
		eff.EstimatedMinutes = *cfg.EstimatedMinutes
	}
	if cfg.AssigneeID != nil {
		eff.AssigneeID = cfg.AssigneeID
	}
	if cfg.SortOrder != nil {
		eff.SortOrder = *cfg.SortOrder
	}
	if cfg.IsActive != nil {
		eff.IsActive = *cfg.IsActive
	}
	if cfg.StartDate != nil {
		eff.StartDate = cfg.StartDate
	}
	return eff
}

// MergeAll merges every template with the override keyed by its template ID
func MergeAll(templates []TaskTemplate, configs []TaskConfig) []EffectiveTask {
	byTemplate := make(map[uuid.UUID]*TaskConfig, len(configs))
	for i := range configs {
		byTemplate[configs[i].TaskTemplateID] = &configs[i]
	}

	out := make([]EffectiveTask, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, Merge(tpl, byTemplate[tpl.ID]))
	}
	return out
}

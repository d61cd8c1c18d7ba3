package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/duedate"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/shopspring/decimal"
)

// EngagementModel is the persistence model for the Engagement aggregate root.
type EngagementModel struct {
	TenantAggregateModel
	CustomerID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	ServiceID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name                 string               `gorm:"type:varchar(200);not null"`
	Granularity          calendar.Granularity `gorm:"type:varchar(20);not null;default:'none'"`
	StartDate            *time.Time           `gorm:"type:date"`
	EndDate              *time.Time           `gorm:"type:date"`
	MonthStartDay        int                  `gorm:"not null;default:1"`
	WeekStartDay         int                  `gorm:"not null;default:1"`
	FiscalYearStartMonth int                  `gorm:"not null;default:1"`
	AutoBill             bool                 `gorm:"not null;default:false"`
	BillingAmount        *decimal.Decimal     `gorm:"type:decimal(18,2)"`
	OwnerID              *uuid.UUID           `gorm:"type:uuid"`
	Status               engagement.Status    `gorm:"type:varchar(20);not null;default:'pending';index"`
	CompletedAt          *time.Time
	InvoiceGenerated     bool       `gorm:"not null;default:false"`
	IsBilled             bool       `gorm:"not null;default:false"`
	InvoiceID            *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (EngagementModel) TableName() string {
	return "engagements"
}

// ToDomain converts the persistence model to a domain Engagement
func (m *EngagementModel) ToDomain() *engagement.Engagement {
	return &engagement.Engagement{
		TenantAggregateRoot:  m.ToTenantAggregateRoot(),
		CustomerID:           m.CustomerID,
		ServiceID:            m.ServiceID,
		Name:                 m.Name,
		Granularity:          m.Granularity,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		MonthStartDay:        m.MonthStartDay,
		WeekStartDay:         m.WeekStartDay,
		FiscalYearStartMonth: m.FiscalYearStartMonth,
		AutoBill:             m.AutoBill,
		BillingAmount:        m.BillingAmount,
		OwnerID:              m.OwnerID,
		Status:               m.Status,
		CompletedAt:          m.CompletedAt,
		InvoiceGenerated:     m.InvoiceGenerated,
		IsBilled:             m.IsBilled,
		InvoiceID:            m.InvoiceID,
	}
}

// FromDomain populates the persistence model from a domain Engagement
func (m *EngagementModel) FromDomain(e *engagement.Engagement) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.CustomerID = e.CustomerID
	m.ServiceID = e.ServiceID
	m.Name = e.Name
	m.Granularity = e.Granularity
	m.StartDate = e.StartDate
	m.EndDate = e.EndDate
	m.MonthStartDay = e.MonthStartDay
	m.WeekStartDay = e.WeekStartDay
	m.FiscalYearStartMonth = e.FiscalYearStartMonth
	m.AutoBill = e.AutoBill
	m.BillingAmount = e.BillingAmount
	m.OwnerID = e.OwnerID
	m.Status = e.Status
	m.CompletedAt = e.CompletedAt
	m.InvoiceGenerated = e.InvoiceGenerated
	m.IsBilled = e.IsBilled
	m.InvoiceID = e.InvoiceID
}

// EngagementModelFromDomain creates a new persistence model from a domain Engagement
func EngagementModelFromDomain(e *engagement.Engagement) *EngagementModel {
	m := &EngagementModel{}
	m.FromDomain(e)
	return m
}

// TaskTemplateModel is the persistence model for a service's checklist template
type TaskTemplateModel struct {
	ID                uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	ServiceID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	Title             string               `gorm:"type:varchar(200);not null"`
	Description       string               `gorm:"type:text"`
	Granularity       calendar.Granularity `gorm:"type:varchar(20);not null;default:'none'"`
	ExactDate         *time.Time           `gorm:"type:date"`
	DueMonth          int
	DueDay            int
	DueWeekday        int
	OffsetType        duedate.OffsetType  `gorm:"type:varchar(10)"`
	OffsetValue       int
	Priority          engagement.Priority `gorm:"type:varchar(10);not null;default:'medium'"`
	EstimatedMinutes  int
	DefaultAssigneeID *uuid.UUID `gorm:"type:uuid"`
	SortOrder         int        `gorm:"not null;default:0"`
	IsActive          bool       `gorm:"not null;default:true"`
	StartDate         *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (TaskTemplateModel) TableName() string {
	return "task_templates"
}

// ToDomain converts the persistence model to a domain TaskTemplate
func (m *TaskTemplateModel) ToDomain() engagement.TaskTemplate {
	return engagement.TaskTemplate{
		ID:                m.ID,
		TenantID:          m.TenantID,
		ServiceID:         m.ServiceID,
		Title:             m.Title,
		Description:       m.Description,
		Granularity:       m.Granularity,
		ExactDate:         m.ExactDate,
		DueMonth:          m.DueMonth,
		DueDay:            m.DueDay,
		DueWeekday:        m.DueWeekday,
		OffsetType:        m.OffsetType,
		OffsetValue:       m.OffsetValue,
		Priority:          m.Priority,
		EstimatedMinutes:  m.EstimatedMinutes,
		DefaultAssigneeID: m.DefaultAssigneeID,
		SortOrder:         m.SortOrder,
		IsActive:          m.IsActive,
		StartDate:         m.StartDate,
	}
}

// TaskTemplateModelFromDomain creates a new persistence model from a domain TaskTemplate
func TaskTemplateModelFromDomain(t engagement.TaskTemplate) *TaskTemplateModel {
	return &TaskTemplateModel{
		ID:                t.ID,
		TenantID:          t.TenantID,
		ServiceID:         t.ServiceID,
		Title:             t.Title,
		Description:       t.Description,
		Granularity:       t.Granularity,
		ExactDate:         t.ExactDate,
		DueMonth:          t.DueMonth,
		DueDay:            t.DueDay,
		DueWeekday:        t.DueWeekday,
		OffsetType:        t.OffsetType,
		OffsetValue:       t.OffsetValue,
		Priority:          t.Priority,
		EstimatedMinutes:  t.EstimatedMinutes,
		DefaultAssigneeID: t.DefaultAssigneeID,
		SortOrder:         t.SortOrder,
		IsActive:          t.IsActive,
		StartDate:         t.StartDate,
	}
}

// TaskConfigModel is the per-engagement override of a task template. NULL columns
// inherit the template value.
type TaskConfigModel struct {
	ID               uuid.UUID             `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	EngagementID     uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_task_config_key,priority:1"`
	TaskTemplateID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_task_config_key,priority:2"`
	Title            *string               `gorm:"type:varchar(200)"`
	Granularity      *calendar.Granularity `gorm:"type:varchar(20)"`
	ExactDate        *time.Time            `gorm:"type:date"`
	DueMonth         *int
	DueDay           *int
	DueWeekday       *int
	OffsetType       *duedate.OffsetType `gorm:"type:varchar(10)"`
	OffsetValue      *int
	Priority         *engagement.Priority `gorm:"type:varchar(10)"`
	EstimatedMinutes *int
	AssigneeID       *uuid.UUID `gorm:"type:uuid"`
	SortOrder        *int
	IsActive         *bool
	StartDate        *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (TaskConfigModel) TableName() string {
	return "task_configs"
}

// ToDomain converts the persistence model to a domain TaskConfig
func (m *TaskConfigModel) ToDomain() engagement.TaskConfig {
	return engagement.TaskConfig{
		ID:               m.ID,
		TenantID:         m.TenantID,
		EngagementID:     m.EngagementID,
		TaskTemplateID:   m.TaskTemplateID,
		Title:            m.Title,
		Granularity:      m.Granularity,
		ExactDate:        m.ExactDate,
		DueMonth:         m.DueMonth,
		DueDay:           m.DueDay,
		DueWeekday:       m.DueWeekday,
		OffsetType:       m.OffsetType,
		OffsetValue:      m.OffsetValue,
		Priority:         m.Priority,
		EstimatedMinutes: m.EstimatedMinutes,
		AssigneeID:       m.AssigneeID,
		SortOrder:        m.SortOrder,
		IsActive:         m.IsActive,
		StartDate:        m.StartDate,
	}
}

// TaskConfigModelFromDomain creates a new persistence model from a domain TaskConfig
func TaskConfigModelFromDomain(c engagement.TaskConfig) *TaskConfigModel {
	return &TaskConfigModel{
		ID:               c.ID,
		TenantID:         c.TenantID,
		EngagementID:     c.EngagementID,
		TaskTemplateID:   c.TaskTemplateID,
		Title:            c.Title,
		Granularity:      c.Granularity,
		ExactDate:        c.ExactDate,
		DueMonth:         c.DueMonth,
		DueDay:           c.DueDay,
		DueWeekday:       c.DueWeekday,
		OffsetType:       c.OffsetType,
		OffsetValue:      c.OffsetValue,
		Priority:         c.Priority,
		EstimatedMinutes: c.EstimatedMinutes,
		AssigneeID:       c.AssigneeID,
		SortOrder:        c.SortOrder,
		IsActive:         c.IsActive,
		StartDate:        c.StartDate,
	}
}

// PeriodModel is the persistence model for a materialized engagement period.
// (engagement_id, start_date) is unique.
type PeriodModel struct {
	TenantAggregateModel
	EngagementID     uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_period_engagement_start,priority:1"`
	Name             string                  `gorm:"type:varchar(100);not null"`
	StartDate        time.Time               `gorm:"type:date;not null;uniqueIndex:idx_period_engagement_start,priority:2"`
	EndDate          time.Time               `gorm:"type:date;not null"`
	Status           engagement.PeriodStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalTasks       int                     `gorm:"not null;default:0"`
	CompletedTasks   int                     `gorm:"not null;default:0"`
	BillingAmount    *decimal.Decimal        `gorm:"type:decimal(18,2)"`
	InvoiceID        *uuid.UUID              `gorm:"type:uuid"`
	IsBilled         bool                    `gorm:"not null;default:false"`
	InvoiceGenerated bool                    `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PeriodModel) TableName() string {
	return "engagement_periods"
}

// ToDomain converts the persistence model to a domain Period
func (m *PeriodModel) ToDomain() *engagement.Period {
	return &engagement.Period{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		EngagementID:        m.EngagementID,
		Name:                m.Name,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Status:              m.Status,
		TotalTasks:          m.TotalTasks,
		CompletedTasks:      m.CompletedTasks,
		BillingAmount:       m.BillingAmount,
		InvoiceID:           m.InvoiceID,
		IsBilled:            m.IsBilled,
		InvoiceGenerated:    m.InvoiceGenerated,
	}
}

// FromDomain populates the persistence model from a domain Period
func (m *PeriodModel) FromDomain(p *engagement.Period) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.EngagementID = p.EngagementID
	m.Name = p.Name
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.Status = p.Status
	m.TotalTasks = p.TotalTasks
	m.CompletedTasks = p.CompletedTasks
	m.BillingAmount = p.BillingAmount
	m.InvoiceID = p.InvoiceID
	m.IsBilled = p.IsBilled
	m.InvoiceGenerated = p.InvoiceGenerated
}

// PeriodModelFromDomain creates a new persistence model from a domain Period
func PeriodModelFromDomain(p *engagement.Period) *PeriodModel {
	m := &PeriodModel{}
	m.FromDomain(p)
	return m
}

// TaskModel is the persistence model for a generated task.
// (engagement_id, period_id, task_template_id, occurrence_start) is unique; the postgres
// migration indexes COALESCE(period_id) so one-off tasks are covered too.
type TaskModel struct {
	TenantAggregateModel
	EngagementID     uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_task_key,priority:1"`
	PeriodID         *uuid.UUID            `gorm:"type:uuid;index;uniqueIndex:idx_task_key,priority:2"`
	TaskTemplateID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_task_key,priority:3"`
	OccurrenceStart  time.Time             `gorm:"type:date;not null;uniqueIndex:idx_task_key,priority:4"`
	Title            string                `gorm:"type:varchar(300);not null"`
	Description      string                `gorm:"type:text"`
	DueDate          time.Time             `gorm:"type:date;not null;index"`
	SortOrder        int                   `gorm:"not null;default:0"`
	Priority         engagement.Priority   `gorm:"type:varchar(10);not null;default:'medium'"`
	EstimatedMinutes int                   `gorm:"not null;default:0"`
	Status           engagement.TaskStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	AssigneeID       *uuid.UUID            `gorm:"type:uuid"`
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "engagement_tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *engagement.Task {
	return &engagement.Task{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		EngagementID:        m.EngagementID,
		PeriodID:            m.PeriodID,
		TaskTemplateID:      m.TaskTemplateID,
		Title:               m.Title,
		Description:         m.Description,
		DueDate:             m.DueDate,
		OccurrenceStart:     m.OccurrenceStart,
		SortOrder:           m.SortOrder,
		Priority:            m.Priority,
		EstimatedMinutes:    m.EstimatedMinutes,
		Status:              m.Status,
		AssigneeID:          m.AssigneeID,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *engagement.Task) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.EngagementID = t.EngagementID
	m.PeriodID = t.PeriodID
	m.TaskTemplateID = t.TaskTemplateID
	m.OccurrenceStart = t.OccurrenceStart
	m.Title = t.Title
	m.Description = t.Description
	m.DueDate = t.DueDate
	m.SortOrder = t.SortOrder
	m.Priority = t.Priority
	m.EstimatedMinutes = t.EstimatedMinutes
	m.Status = t.Status
	m.AssigneeID = t.AssigneeID
	m.StartedAt = t.StartedAt
	m.CompletedAt = t.CompletedAt
}

// TaskModelFromDomain creates a new persistence model from a domain Task
func TaskModelFromDomain(t *engagement.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}

package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PeriodStatus is derived from the period's task counters
type PeriodStatus string

const (
	PeriodStatusPending    PeriodStatus = "pending"
	PeriodStatusInProgress PeriodStatus = "in_progress"
	PeriodStatusCompleted  PeriodStatus = "completed"
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusPending, PeriodStatusInProgress, PeriodStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of PeriodStatus
func (s PeriodStatus) String() string {
	return string(s)
}

// TaskCounts summarizes the tasks of a period
type TaskCounts struct {
	Total     int
	Started   int // in progress
	Completed int
}

// Status derives the period status from the counters.
// A period is completed iff it has tasks and all of them are completed.
func (c TaskCounts) Status() PeriodStatus {
	switch {
	case c.Total > 0 && c.Completed == c.Total:
		return PeriodStatusCompleted
	case c.Started > 0 || c.Completed > 0:
		return PeriodStatusInProgress
	default:
		return PeriodStatusPending
	}
}

// Period is one materialized interval of a recurring engagement
type Period struct {
	shared.TenantAggregateRoot
	EngagementID   uuid.UUID        `json:"engagement_id"`
	Name           string           `json:"name"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Status         PeriodStatus     `json:"status"`
	TotalTasks     int              `json:"total_tasks"`
	CompletedTasks int              `json:"completed_tasks"`
	BillingAmount  *decimal.Decimal `json:"billing_amount,omitempty"`

	InvoiceID        *uuid.UUID `json:"invoice_id,omitempty"`
	IsBilled         bool       `json:"is_billed"`
	InvoiceGenerated bool       `json:"invoice_generated"`
}

// NewPeriod creates a pending period for a calendar window
func NewPeriod(tenantID, engagementID uuid.UUID, w calendar.Window) *Period {
	return &Period{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EngagementID:        engagementID,
		Name:                w.Name,
		StartDate:           w.Start,
		EndDate:             w.End,
		Status:              PeriodStatusPending,
	}
}

// Window returns the period interval
func (p *Period) Window() calendar.Window {
	return calendar.Window{Start: p.StartDate, End: p.EndDate, Name: p.Name}
}

// IsCompleted returns true if every task is completed
func (p *Period) IsCompleted() bool {
	return p.Status == PeriodStatusCompleted
}

// Refresh stores the counters and the derived status. Entering completed raises
// PeriodCompleted stamped with at. Returns true if anything changed.
func (p *Period) Refresh(counts TaskCounts, at time.Time) bool {
	status := counts.Status()
	changed := p.TotalTasks != counts.Total || p.CompletedTasks != counts.Completed || p.Status != status

	wasCompleted := p.IsCompleted()
	p.TotalTasks = counts.Total
	p.CompletedTasks = counts.Completed
	p.Status = status

	if status == PeriodStatusCompleted && !wasCompleted {
		p.AddDomainEvent(NewPeriodCompletedEvent(p, at))
	}
	if changed {
		p.Touch()
	}
	return changed
}

// MarkBilled links the generated invoice and sets the idempotency flag
func (p *Period) MarkBilled(invoiceID uuid.UUID) {
	p.InvoiceID = &invoiceID
	p.IsBilled = true
	p.InvoiceGenerated = true
	p.Touch()
}

// ResetBilling clears the idempotency flag and billed status
func (p *Period) ResetBilling() {
	p.IsBilled = false
	p.InvoiceGenerated = false
	p.Touch()
}

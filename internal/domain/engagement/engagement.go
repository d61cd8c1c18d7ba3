package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of an engagement
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a valid engagement Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Engagement is a recurring or one-off service agreement for a customer.
// Recurring engagements own Periods; one-off engagements own flat Tasks.
type Engagement struct {
	shared.TenantAggregateRoot
	CustomerID  uuid.UUID            `json:"customer_id"`
	ServiceID   uuid.UUID            `json:"service_id"`
	Name        string               `json:"name"`
	Granularity calendar.Granularity `json:"granularity"`
	StartDate   *time.Time           `json:"start_date,omitempty"`
	EndDate     *time.Time           `json:"end_date,omitempty"` // One-off window end

	MonthStartDay        int `json:"month_start_day"`
	WeekStartDay         int `json:"week_start_day"`
	FiscalYearStartMonth int `json:"fiscal_year_start_month"`

	AutoBill      bool             `json:"auto_bill"`
	BillingAmount *decimal.Decimal `json:"billing_amount,omitempty"`
	OwnerID       *uuid.UUID       `json:"owner_id,omitempty"`
	Status        Status           `json:"status"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`

	InvoiceGenerated bool       `json:"invoice_generated"`
	IsBilled         bool       `json:"is_billed"`
	InvoiceID        *uuid.UUID `json:"invoice_id,omitempty"`
}

// NewEngagement creates a new pending engagement
func NewEngagement(tenantID, customerID, serviceID uuid.UUID, name string, granularity calendar.Granularity, startDate *time.Time) (*Engagement, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}
	if granularity == "" {
		granularity = calendar.GranularityNone
	}
	if !granularity.IsValid() {
		return nil, shared.NewDomainError("INVALID_GRANULARITY", "Unknown recurrence granularity")
	}
	if startDate != nil {
		d := calendar.Truncate(*startDate)
		startDate = &d
	}

	return &Engagement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		ServiceID:           serviceID,
		Name:                name,
		Granularity:         granularity,
		StartDate:           startDate,
		Status:              StatusPending,
	}, nil
}

// IsRecurring returns true if the engagement produces periods
func (e *Engagement) IsRecurring() bool {
	return e.Granularity.IsRecurring()
}

// Calendar returns the recurrence configuration of the engagement
func (e *Engagement) Calendar() calendar.Config {
	return calendar.Config{
		Granularity:          e.Granularity,
		MonthStartDay:        e.MonthStartDay,
		WeekStartDay:         e.WeekStartDay,
		FiscalYearStartMonth: time.Month(e.FiscalYearStartMonth),
	}
}

// OneOffWindow returns [start, end] for a one-off engagement, where a missing end is the
// start itself and a missing start is asOf
func (e *Engagement) OneOffWindow(asOf time.Time) calendar.Window {
	start := calendar.Truncate(asOf)
	if e.StartDate != nil {
		start = calendar.Truncate(*e.StartDate)
	}
	end := start
	if e.EndDate != nil && !e.EndDate.Before(start) {
		end = calendar.Truncate(*e.EndDate)
	}
	return calendar.Window{Start: start, End: end, Name: e.Name}
}

// ChangeStatus moves the engagement to another status at the given instant.
// Entering completed raises EngagementCompleted; leaving it raises EngagementReopened.
func (e *Engagement) ChangeStatus(to Status, at time.Time) error {
	if !to.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid engagement status")
	}
	from := e.Status
	if from == to {
		return nil
	}

	e.Status = to
	switch {
	case to == StatusCompleted:
		e.CompletedAt = &at
		e.AddDomainEvent(NewEngagementCompletedEvent(e, at))
	case from == StatusCompleted:
		e.CompletedAt = nil
		e.AddDomainEvent(NewEngagementReopenedEvent(e, to))
	}
	e.Touch()
	return nil
}

// MarkBilled links the generated invoice and sets the idempotency flag
func (e *Engagement) MarkBilled(invoiceID uuid.UUID) {
	e.InvoiceID = &invoiceID
	e.IsBilled = true
	e.InvoiceGenerated = true
	e.Touch()
}

// ResetBilling clears the idempotency flag and billed status so completion can bill again.
// The invoice link is kept; the invoice itself is handled by the reversion policy.
func (e *Engagement) ResetBilling() {
	e.IsBilled = false
	e.InvoiceGenerated = false
	e.Touch()
}

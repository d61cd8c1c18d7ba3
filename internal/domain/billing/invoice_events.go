package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventTypeInvoiceStatusChanged is raised on every accepted invoice status change
const EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"

// InvoiceStatusChangedEvent is raised when an invoice changes status
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	FromStatus    InvoiceStatus   `json:"from_status"`
	ToStatus      InvoiceStatus   `json:"to_status"`
	Total         decimal.Decimal `json:"total"`
	At            time.Time       `json:"at"`
}

// EventType returns the event type name
func (e *InvoiceStatusChangedEvent) EventType() string {
	return EventTypeInvoiceStatusChanged
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent for a change at the given instant
func NewInvoiceStatusChangedEvent(i *Invoice, from, to InvoiceStatus, at time.Time) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, "Invoice", i.ID, i.TenantID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.InvoiceNumber,
		FromStatus:      from,
		ToStatus:        to,
		Total:           i.Total,
		At:              at,
	}
}

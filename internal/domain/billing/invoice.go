package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusSent:      {InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusDraft, InvoiceStatusCancelled},
	InvoiceStatusOverdue:   {InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusDraft, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusCancelled: {InvoiceStatusDraft},
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsUnposted returns true for statuses that carry no ledger postings
func (s InvoiceStatus) IsUnposted() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusCancelled
}

// CanTransitionTo checks if the invoice can move from s to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// InvoiceItem is one line of an invoice
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ServiceID   *uuid.UUID      `json:"service_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	SortOrder   int             `json:"sort_order"`
}

// Invoice is a billing document for a customer
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber     string          `json:"invoice_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	EngagementID      *uuid.UUID      `json:"engagement_id,omitempty"`
	PeriodID          *uuid.UUID      `json:"period_id,omitempty"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           time.Time       `json:"due_date"`
	PaymentTerms      PaymentTerms    `json:"payment_terms"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	Status            InvoiceStatus   `json:"status"`
	IncomeAccountID   *uuid.UUID      `json:"income_account_id,omitempty"`
	CustomerAccountID *uuid.UUID      `json:"customer_account_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Items             []InvoiceItem   `json:"items"`
}

// DraftInvoice carries what is needed to create a draft invoice
type DraftInvoice struct {
	Number            string
	CustomerID        uuid.UUID
	EngagementID      *uuid.UUID
	PeriodID          *uuid.UUID
	IssueDate         time.Time
	PaymentTerms      PaymentTerms
	Description       string
	ServiceID         *uuid.UUID
	Amount            decimal.Decimal
	TaxRate           decimal.Decimal
	IncomeAccountID   *uuid.UUID
	CustomerAccountID *uuid.UUID
}

// NewDraftInvoice creates a draft invoice with a single line item
func NewDraftInvoice(tenantID uuid.UUID, d DraftInvoice) (*Invoice, error) {
	if d.Number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if d.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !d.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	tax, total := ResolveTax(d.Amount, d.TaxRate)
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       d.Number,
		CustomerID:          d.CustomerID,
		EngagementID:        d.EngagementID,
		PeriodID:            d.PeriodID,
		IssueDate:           d.IssueDate,
		DueDate:             ResolveDueDate(d.PaymentTerms, d.IssueDate),
		PaymentTerms:        d.PaymentTerms,
		Subtotal:            d.Amount,
		TaxRate:             d.TaxRate,
		TaxAmount:           tax,
		Total:               total,
		Status:              InvoiceStatusDraft,
		IncomeAccountID:     d.IncomeAccountID,
		CustomerAccountID:   d.CustomerAccountID,
	}
	inv.Items = []InvoiceItem{{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		ServiceID:   d.ServiceID,
		Description: d.Description,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   d.Amount,
		Amount:      d.Amount,
	}}
	return inv, nil
}

// HasAccounts returns true if both posting accounts are set
func (i *Invoice) HasAccounts() bool {
	return i.IncomeAccountID != nil && i.CustomerAccountID != nil
}

// ChangeStatus moves the invoice to another status at the given instant and raises
// InvoiceStatusChanged. Re-entering sent or overdue raises the event again; other self
// transitions are no-ops.
func (i *Invoice) ChangeStatus(to InvoiceStatus, at time.Time) error {
	if !to.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
	from := i.Status
	if from == to && !from.CanTransitionTo(to) {
		return nil
	}
	if !from.CanTransitionTo(to) {
		return shared.NewTransitionError("Invoice", string(from), string(to))
	}

	i.Status = to
	i.Touch()
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, from, to, at))
	return nil
}

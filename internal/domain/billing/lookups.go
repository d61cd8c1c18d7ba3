package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a billable service offering. Maintained elsewhere, read-only here.
type Service struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        uuid.UUID        `json:"tenant_id"`
	Name            string           `json:"name"`
	DefaultPrice    *decimal.Decimal `json:"default_price,omitempty"`
	TaxRate         decimal.Decimal  `json:"tax_rate"`
	IncomeAccountID *uuid.UUID       `json:"income_account_id,omitempty"`
	PaymentTerms    PaymentTerms     `json:"payment_terms"`
}

// Customer is the billed party. Maintained elsewhere, read-only here.
type Customer struct {
	ID              uuid.UUID    `json:"id"`
	TenantID        uuid.UUID    `json:"tenant_id"`
	Name            string       `json:"name"`
	LedgerAccountID *uuid.UUID   `json:"ledger_account_id,omitempty"`
	PaymentTerms    PaymentTerms `json:"payment_terms"`
}

// CustomerPrice is a customer-specific price for a service
type CustomerPrice struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	ServiceID  uuid.UUID       `json:"service_id"`
	Price      decimal.Decimal `json:"price"`
}

// ReceiptAccount selects which default account receives customer payments
type ReceiptAccount string

const (
	ReceiptAccountCash ReceiptAccount = "cash"
	ReceiptAccountBank ReceiptAccount = "bank"
)

// TenantSettings is the tenant-level numbering and default-ledger configuration
type TenantSettings struct {
	TenantID               uuid.UUID       `json:"tenant_id"`
	Numbering              NumberingConfig `json:"numbering"`
	DefaultIncomeAccountID *uuid.UUID      `json:"default_income_account_id,omitempty"`
	CashAccountID          *uuid.UUID      `json:"cash_account_id,omitempty"`
	BankAccountID          *uuid.UUID      `json:"bank_account_id,omitempty"`
	ReceiptAccount         ReceiptAccount  `json:"receipt_account"`
}

// ReceiptAccountID returns the cash or bank default selected by the toggle
func (s *TenantSettings) ReceiptAccountID() *uuid.UUID {
	if s == nil {
		return nil
	}
	if s.ReceiptAccount == ReceiptAccountCash {
		return s.CashAccountID
	}
	return s.BankAccountID
}

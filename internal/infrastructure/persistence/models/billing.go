package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Invoice numbers are unique per tenant.
type InvoiceModel struct {
	BaseModel
	TenantID          uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_tenant_number,priority:1"`
	InvoiceNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	EngagementID      *uuid.UUID            `gorm:"type:uuid;index"`
	PeriodID          *uuid.UUID            `gorm:"type:uuid;index"`
	IssueDate         time.Time             `gorm:"type:date;not null"`
	DueDate           time.Time             `gorm:"type:date;not null"`
	PaymentTerms      billing.PaymentTerms  `gorm:"type:varchar(20);not null"`
	Subtotal          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TaxRate           decimal.Decimal       `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount         decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Total             decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Status            billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	IncomeAccountID   *uuid.UUID            `gorm:"type:uuid"`
	CustomerAccountID *uuid.UUID            `gorm:"type:uuid"`
	Notes             string                `gorm:"type:text"`
	Items             []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	items := make([]billing.InvoiceItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &billing.Invoice{
		TenantAggregateRoot: shared.TenantAggregateRoot{BaseEntity: m.entity(), TenantID: m.TenantID},
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		EngagementID:        m.EngagementID,
		PeriodID:            m.PeriodID,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		PaymentTerms:        m.PaymentTerms,
		Subtotal:            m.Subtotal,
		TaxRate:             m.TaxRate,
		TaxAmount:           m.TaxAmount,
		Total:               m.Total,
		Status:              m.Status,
		IncomeAccountID:     m.IncomeAccountID,
		CustomerAccountID:   m.CustomerAccountID,
		Notes:               m.Notes,
		Items:               items,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.fromEntity(inv.BaseEntity)
	m.TenantID = inv.TenantID
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.EngagementID = inv.EngagementID
	m.PeriodID = inv.PeriodID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaymentTerms = inv.PaymentTerms
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.Total = inv.Total
	m.Status = inv.Status
	m.IncomeAccountID = inv.IncomeAccountID
	m.CustomerAccountID = inv.CustomerAccountID
	m.Notes = inv.Notes
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is one invoice line
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() billing.InvoiceItem {
	return billing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		ServiceID:   m.ServiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		SortOrder:   m.SortOrder,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem
func InvoiceItemModelFromDomain(it billing.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          it.ID,
		InvoiceID:   it.InvoiceID,
		ServiceID:   it.ServiceID,
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Amount:      it.Amount,
		SortOrder:   it.SortOrder,
	}
}

// ServiceModel is the billing view of a catalogue service
type ServiceModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name            string               `gorm:"type:varchar(200);not null"`
	DefaultPrice    *decimal.Decimal     `gorm:"type:decimal(18,2)"`
	TaxRate         decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
	IncomeAccountID *uuid.UUID           `gorm:"type:uuid"`
	PaymentTerms    billing.PaymentTerms `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts the persistence model to a domain Service
func (m *ServiceModel) ToDomain() *billing.Service {
	return &billing.Service{
		ID:              m.ID,
		TenantID:        m.TenantID,
		Name:            m.Name,
		DefaultPrice:    m.DefaultPrice,
		TaxRate:         m.TaxRate,
		IncomeAccountID: m.IncomeAccountID,
		PaymentTerms:    m.PaymentTerms,
	}
}

// CustomerModel is the billing view of a customer
type CustomerModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name            string               `gorm:"type:varchar(200);not null"`
	LedgerAccountID *uuid.UUID           `gorm:"type:uuid"`
	PaymentTerms    billing.PaymentTerms `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *billing.Customer {
	return &billing.Customer{
		ID:              m.ID,
		TenantID:        m.TenantID,
		Name:            m.Name,
		LedgerAccountID: m.LedgerAccountID,
		PaymentTerms:    m.PaymentTerms,
	}
}

// CustomerPriceModel is a negotiated price of one service for one customer
type CustomerPriceModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customer_price_key,priority:1"`
	ServiceID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customer_price_key,priority:2"`
	Price      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CustomerPriceModel) TableName() string {
	return "customer_service_prices"
}

// ToDomain converts the persistence model to a domain CustomerPrice
func (m *CustomerPriceModel) ToDomain() *billing.CustomerPrice {
	return &billing.CustomerPrice{
		ID:         m.ID,
		TenantID:   m.TenantID,
		CustomerID: m.CustomerID,
		ServiceID:  m.ServiceID,
		Price:      m.Price,
	}
}

// TenantSettingsModel holds the billing and posting defaults of a tenant
type TenantSettingsModel struct {
	TenantID               uuid.UUID              `gorm:"type:uuid;primary_key"`
	InvoicePrefix          string                 `gorm:"type:varchar(20)"`
	InvoiceSuffix          string                 `gorm:"type:varchar(20)"`
	InvoiceNumberWidth     int                    `gorm:"not null;default:0"`
	InvoiceStartingNumber  int64                  `gorm:"not null;default:1"`
	DefaultIncomeAccountID *uuid.UUID             `gorm:"type:uuid"`
	CashAccountID          *uuid.UUID             `gorm:"type:uuid"`
	BankAccountID          *uuid.UUID             `gorm:"type:uuid"`
	ReceiptAccount         billing.ReceiptAccount `gorm:"type:varchar(10);not null;default:'bank'"`
	UpdatedAt              time.Time
}

// TableName returns the table name for GORM
func (TenantSettingsModel) TableName() string {
	return "tenant_billing_settings"
}

// ToDomain converts the persistence model to domain TenantSettings
func (m *TenantSettingsModel) ToDomain() *billing.TenantSettings {
	return &billing.TenantSettings{
		TenantID: m.TenantID,
		Numbering: billing.NumberingConfig{
			Prefix:           m.InvoicePrefix,
			Suffix:           m.InvoiceSuffix,
			Width:            m.InvoiceNumberWidth,
			StartingSequence: m.InvoiceStartingNumber,
		},
		DefaultIncomeAccountID: m.DefaultIncomeAccountID,
		CashAccountID:          m.CashAccountID,
		BankAccountID:          m.BankAccountID,
		ReceiptAccount:         m.ReceiptAccount,
	}
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture seeds the read-only lookups and aggregates of one tenant
type Fixture struct {
	t        *testing.T
	DB       *gorm.DB
	TenantID uuid.UUID
}

// NewFixture creates a fixture over a fresh sqlite database
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureWithDB(t, NewSQLiteDB(t))
}

// NewFixtureWithDB creates a fixture for a new tenant in db
func NewFixtureWithDB(t *testing.T, db *gorm.DB) *Fixture {
	return &Fixture{t: t, DB: db, TenantID: uuid.New()}
}

func (f *Fixture) create(value any) {
	f.t.Helper()
	require.NoError(f.t, f.DB.WithContext(context.Background()).Create(value).Error)
}

// Service seeds a service. mutate may be nil.
func (f *Fixture) Service(name string, mutate func(*models.ServiceModel)) *billing.Service {
	f.t.Helper()
	m := &models.ServiceModel{
		ID:       uuid.New(),
		TenantID: f.TenantID,
		Name:     name,
		TaxRate:  decimal.Zero,
	}
	if mutate != nil {
		mutate(m)
	}
	f.create(m)
	return m.ToDomain()
}

// Customer seeds a customer. mutate may be nil.
func (f *Fixture) Customer(name string, mutate func(*models.CustomerModel)) *billing.Customer {
	f.t.Helper()
	m := &models.CustomerModel{ID: uuid.New(), TenantID: f.TenantID, Name: name}
	if mutate != nil {
		mutate(m)
	}
	f.create(m)
	return m.ToDomain()
}

// CustomerPrice seeds a customer-specific price
func (f *Fixture) CustomerPrice(customerID, serviceID uuid.UUID, price decimal.Decimal) {
	f.t.Helper()
	f.create(&models.CustomerPriceModel{
		ID:         uuid.New(),
		TenantID:   f.TenantID,
		CustomerID: customerID,
		ServiceID:  serviceID,
		Price:      price,
	})
}

// Settings seeds the tenant billing settings
func (f *Fixture) Settings(mutate func(*models.TenantSettingsModel)) {
	f.t.Helper()
	m := &models.TenantSettingsModel{
		TenantID:              f.TenantID,
		InvoiceStartingNumber: 1,
		ReceiptAccount:        billing.ReceiptAccountBank,
	}
	if mutate != nil {
		mutate(m)
	}
	f.create(m)
}

// Account seeds a ledger account with a zero opening balance
func (f *Fixture) Account(code, name string, accountType finance.AccountType) *finance.LedgerAccount {
	f.t.Helper()
	a, err := finance.NewLedgerAccount(f.TenantID, code, name, accountType, decimal.Zero)
	require.NoError(f.t, err)
	f.create(models.LedgerAccountModelFromDomain(a))
	return a
}

// VoucherType seeds a voucher type. An empty prefix falls back to the code default.
func (f *Fixture) VoucherType(code finance.VoucherTypeCode, prefix string) *finance.VoucherType {
	f.t.Helper()
	m := &models.VoucherTypeModel{
		ID:       uuid.New(),
		TenantID: f.TenantID,
		Code:     code,
		Name:     string(code),
		Prefix:   prefix,
	}
	f.create(m)
	return m.ToDomain()
}

// Template seeds an active task template for a service. mutate may be nil.
func (f *Fixture) Template(serviceID uuid.UUID, title string, mutate func(*engagement.TaskTemplate)) engagement.TaskTemplate {
	f.t.Helper()
	tpl := engagement.TaskTemplate{
		ID:          uuid.New(),
		TenantID:    f.TenantID,
		ServiceID:   serviceID,
		Title:       title,
		Granularity: calendar.GranularityNone,
		Priority:    engagement.PriorityMedium,
		IsActive:    true,
	}
	if mutate != nil {
		mutate(&tpl)
	}
	f.create(models.TaskTemplateModelFromDomain(tpl))
	return tpl
}

// TaskConfig seeds an engagement override of a template
func (f *Fixture) TaskConfig(engagementID, templateID uuid.UUID, mutate func(*engagement.TaskConfig)) engagement.TaskConfig {
	f.t.Helper()
	cfg := engagement.TaskConfig{
		ID:             uuid.New(),
		TenantID:       f.TenantID,
		EngagementID:   engagementID,
		TaskTemplateID: templateID,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	f.create(models.TaskConfigModelFromDomain(cfg))
	return cfg
}

// Engagement seeds a pending engagement. mutate may be nil.
func (f *Fixture) Engagement(customerID, serviceID uuid.UUID, g calendar.Granularity, start *time.Time, mutate func(*engagement.Engagement)) *engagement.Engagement {
	f.t.Helper()
	e, err := engagement.NewEngagement(f.TenantID, customerID, serviceID, "Engagement", g, start)
	require.NoError(f.t, err)
	if mutate != nil {
		mutate(e)
	}
	f.create(models.EngagementModelFromDomain(e))
	return e
}

// Ledger is the chart of accounts seeded by Fixture.Ledger
type Ledger struct {
	Receivable *finance.LedgerAccount
	Income     *finance.LedgerAccount
	Bank       *finance.LedgerAccount
	Cash       *finance.LedgerAccount
	Receipt    *finance.VoucherType
	Journal    *finance.VoucherType
}

// Ledger seeds receivable, income, bank and cash accounts, the receipt and journal
// voucher types, and tenant settings pointing at them with the given receipt toggle
func (f *Fixture) Ledger(receipt billing.ReceiptAccount) Ledger {
	f.t.Helper()
	l := Ledger{
		Receivable: f.Account("1200", "Accounts Receivable", finance.AccountTypeAsset),
		Income:     f.Account("4000", "Service Income", finance.AccountTypeIncome),
		Bank:       f.Account("1010", "Bank", finance.AccountTypeAsset),
		Cash:       f.Account("1000", "Cash", finance.AccountTypeAsset),
		Receipt:    f.VoucherType(finance.VoucherTypeReceipt, ""),
		Journal:    f.VoucherType(finance.VoucherTypeJournal, ""),
	}
	f.Settings(func(m *models.TenantSettingsModel) {
		m.DefaultIncomeAccountID = &l.Income.ID
		m.BankAccountID = &l.Bank.ID
		m.CashAccountID = &l.Cash.ID
		m.ReceiptAccount = receipt
	})
	return l
}

// Invoice seeds a draft invoice for customerID with the given subtotal and no tax
func (f *Fixture) Invoice(customerID uuid.UUID, number string, amount decimal.Decimal, mutate func(*billing.DraftInvoice)) *billing.Invoice {
	f.t.Helper()
	d := billing.DraftInvoice{
		Number:       number,
		CustomerID:   customerID,
		IssueDate:    Date(2025, time.March, 1),
		PaymentTerms: billing.PaymentTermsNet30,
		Description:  "Professional services",
		Amount:       amount,
		TaxRate:      decimal.Zero,
	}
	if mutate != nil {
		mutate(&d)
	}
	inv, err := billing.NewDraftInvoice(f.TenantID, d)
	require.NoError(f.t, err)
	f.create(models.InvoiceModelFromDomain(inv))
	return inv
}

// Balance reloads the balance of an account
func (f *Fixture) Balance(accountID uuid.UUID) decimal.Decimal {
	f.t.Helper()
	var m models.LedgerAccountModel
	require.NoError(f.t, f.DB.Where("tenant_id = ? AND id = ?", f.TenantID, accountID).First(&m).Error)
	return m.Balance
}

// Count counts the rows of model matching the optional condition
func (f *Fixture) Count(model any, query string, args ...any) int64 {
	f.t.Helper()
	db := f.DB.Model(model).Where("tenant_id = ?", f.TenantID)
	if query != "" {
		db = db.Where(query, args...)
	}
	var n int64
	require.NoError(f.t, db.Count(&n).Error)
	return n
}

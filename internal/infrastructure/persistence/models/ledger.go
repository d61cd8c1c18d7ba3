package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerAccountModel is the persistence model for a chart-of-accounts entry
type LedgerAccountModel struct {
	BaseModel
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_account_code,priority:1"`
	Code           string              `gorm:"type:varchar(30);not null;uniqueIndex:idx_ledger_account_code,priority:2"`
	Name           string              `gorm:"type:varchar(200);not null"`
	Type           finance.AccountType `gorm:"type:varchar(20);not null"`
	OpeningBalance decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Balance        decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive       bool                `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LedgerAccountModel) TableName() string {
	return "ledger_accounts"
}

// ToDomain converts the persistence model to a domain LedgerAccount
func (m *LedgerAccountModel) ToDomain() *finance.LedgerAccount {
	return &finance.LedgerAccount{
		BaseEntity:     m.entity(),
		TenantID:       m.TenantID,
		Code:           m.Code,
		Name:           m.Name,
		Type:           m.Type,
		OpeningBalance: m.OpeningBalance,
		Balance:        m.Balance,
		IsActive:       m.IsActive,
	}
}

// LedgerAccountModelFromDomain creates a new persistence model from a domain LedgerAccount
func LedgerAccountModelFromDomain(a *finance.LedgerAccount) *LedgerAccountModel {
	m := &LedgerAccountModel{
		TenantID:       a.TenantID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           a.Type,
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
		IsActive:       a.IsActive,
	}
	m.fromEntity(a.BaseEntity)
	return m
}

// LedgerTransactionModel is one posted ledger leg
type LedgerTransactionModel struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	AccountID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Debit       decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Credit      decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Date        time.Time                 `gorm:"type:date;not null"`
	Source      finance.TransactionSource `gorm:"type:varchar(10);not null"`
	InvoiceID   *uuid.UUID                `gorm:"type:uuid;index"`
	VoucherID   *uuid.UUID                `gorm:"type:uuid;index"`
	EntryID     *uuid.UUID                `gorm:"type:uuid"`
	Description string                    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerTransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain LedgerTransaction
func (m *LedgerTransactionModel) ToDomain() finance.LedgerTransaction {
	return finance.LedgerTransaction{
		ID:          m.ID,
		TenantID:    m.TenantID,
		AccountID:   m.AccountID,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Date:        m.Date,
		Source:      m.Source,
		InvoiceID:   m.InvoiceID,
		VoucherID:   m.VoucherID,
		EntryID:     m.EntryID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// LedgerTransactionModelFromDomain creates a new persistence model from a domain LedgerTransaction
func LedgerTransactionModelFromDomain(t finance.LedgerTransaction) *LedgerTransactionModel {
	return &LedgerTransactionModel{
		ID:          t.ID,
		TenantID:    t.TenantID,
		AccountID:   t.AccountID,
		Debit:       t.Debit,
		Credit:      t.Credit,
		Date:        t.Date,
		Source:      t.Source,
		InvoiceID:   t.InvoiceID,
		VoucherID:   t.VoucherID,
		EntryID:     t.EntryID,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// VoucherTypeModel is a tenant's voucher type
type VoucherTypeModel struct {
	ID       uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_voucher_type_code,priority:1"`
	Code     finance.VoucherTypeCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_voucher_type_code,priority:2"`
	Name     string                  `gorm:"type:varchar(100);not null"`
	Prefix   string                  `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (VoucherTypeModel) TableName() string {
	return "voucher_types"
}

// ToDomain converts the persistence model to a domain VoucherType
func (m *VoucherTypeModel) ToDomain() *finance.VoucherType {
	return &finance.VoucherType{
		ID:       m.ID,
		TenantID: m.TenantID,
		Code:     m.Code,
		Name:     m.Name,
		Prefix:   m.Prefix,
	}
}

// VoucherModel is the persistence model for the Voucher aggregate root.
// Voucher numbers are unique per tenant.
type VoucherModel struct {
	BaseModel
	TenantID      uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_voucher_tenant_number,priority:1"`
	VoucherNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_voucher_tenant_number,priority:2"`
	VoucherTypeID uuid.UUID               `gorm:"type:uuid;not null;index"`
	TypeCode      finance.VoucherTypeCode `gorm:"type:varchar(20);not null"`
	Status        finance.VoucherStatus   `gorm:"type:varchar(20);not null;default:'draft'"`
	Date          time.Time               `gorm:"type:date;not null"`
	InvoiceID     *uuid.UUID              `gorm:"type:uuid;index"`
	Narration     string                  `gorm:"type:varchar(500)"`
	PostedAt      *time.Time
	Entries       []VoucherEntryModel `gorm:"foreignKey:VoucherID;references:ID"`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string {
	return "vouchers"
}

// ToDomain converts the persistence model to a domain Voucher
func (m *VoucherModel) ToDomain() *finance.Voucher {
	entries := make([]finance.VoucherEntry, len(m.Entries))
	for i := range m.Entries {
		entries[i] = m.Entries[i].ToDomain()
	}
	return &finance.Voucher{
		TenantAggregateRoot: shared.TenantAggregateRoot{BaseEntity: m.entity(), TenantID: m.TenantID},
		VoucherNumber:       m.VoucherNumber,
		VoucherTypeID:       m.VoucherTypeID,
		TypeCode:            m.TypeCode,
		Status:              m.Status,
		Date:                m.Date,
		InvoiceID:           m.InvoiceID,
		Narration:           m.Narration,
		PostedAt:            m.PostedAt,
		Entries:             entries,
	}
}

// FromDomain populates the persistence model from a domain Voucher
func (m *VoucherModel) FromDomain(v *finance.Voucher) {
	m.fromEntity(v.BaseEntity)
	m.TenantID = v.TenantID
	m.VoucherNumber = v.VoucherNumber
	m.VoucherTypeID = v.VoucherTypeID
	m.TypeCode = v.TypeCode
	m.Status = v.Status
	m.Date = v.Date
	m.InvoiceID = v.InvoiceID
	m.Narration = v.Narration
	m.PostedAt = v.PostedAt
	m.Entries = make([]VoucherEntryModel, len(v.Entries))
	for i := range v.Entries {
		m.Entries[i] = *VoucherEntryModelFromDomain(v.Entries[i])
	}
}

// VoucherModelFromDomain creates a new persistence model from a domain Voucher
func VoucherModelFromDomain(v *finance.Voucher) *VoucherModel {
	m := &VoucherModel{}
	m.FromDomain(v)
	return m
}

// VoucherEntryModel is one voucher line
type VoucherEntryModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	VoucherID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null"`
	Debit     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Credit    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Narration string          `gorm:"type:varchar(500)"`
	SortOrder int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (VoucherEntryModel) TableName() string {
	return "voucher_entries"
}

// ToDomain converts the persistence model to a domain VoucherEntry
func (m *VoucherEntryModel) ToDomain() finance.VoucherEntry {
	return finance.VoucherEntry{
		ID:        m.ID,
		VoucherID: m.VoucherID,
		AccountID: m.AccountID,
		Debit:     m.Debit,
		Credit:    m.Credit,
		Narration: m.Narration,
		SortOrder: m.SortOrder,
	}
}

// VoucherEntryModelFromDomain creates a new persistence model from a domain VoucherEntry
func VoucherEntryModelFromDomain(e finance.VoucherEntry) *VoucherEntryModel {
	return &VoucherEntryModel{
		ID:        e.ID,
		VoucherID: e.VoucherID,
		AccountID: e.AccountID,
		Debit:     e.Debit,
		Credit:    e.Credit,
		Narration: e.Narration,
		SortOrder: e.SortOrder,
	}
}

// AllModels lists every model in creation order, for AutoMigrate in tests and local sqlite
func AllModels() []any {
	return []any{
		&EngagementModel{},
		&TaskTemplateModel{},
		&TaskConfigModel{},
		&PeriodModel{},
		&TaskModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&ServiceModel{},
		&CustomerModel{},
		&CustomerPriceModel{},
		&TenantSettingsModel{},
		&LedgerAccountModel{},
		&LedgerTransactionModel{},
		&VoucherTypeModel{},
		&VoucherModel{},
		&VoucherEntryModel{},
	}
}

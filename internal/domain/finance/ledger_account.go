package finance

import (
	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountType classifies a chart-of-accounts entry
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// LedgerAccount is a chart-of-accounts entry with a running balance.
// Balance always equals OpeningBalance + sum(debit) - sum(credit) over its transactions.
type LedgerAccount struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `json:"tenant_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"is_active"`
}

// NewLedgerAccount creates an account whose balance starts at the opening balance
func NewLedgerAccount(tenantID uuid.UUID, code, name string, accountType AccountType, opening decimal.Decimal) (*LedgerAccount, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Invalid account type")
	}
	return &LedgerAccount{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		Code:           code,
		Name:           name,
		Type:           accountType,
		OpeningBalance: opening,
		Balance:        opening,
		IsActive:       true,
	}, nil
}

// ExpectedBalance re-derives the balance from opening balance and transaction totals
func (a *LedgerAccount) ExpectedBalance(totals AccountTotals) decimal.Decimal {
	return a.OpeningBalance.Add(totals.Debit).Sub(totals.Credit)
}

// AccountTotals sums the transactions of one account
type AccountTotals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
	Count  int64
}

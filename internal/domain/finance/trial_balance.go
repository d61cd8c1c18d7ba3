package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrialBalanceStatus represents the result status of a trial balance check
type TrialBalanceStatus string

const (
	TrialBalanceStatusBalanced   TrialBalanceStatus = "BALANCED"   // Debit equals Credit, every balance matches history
	TrialBalanceStatusUnbalanced TrialBalanceStatus = "UNBALANCED" // Debit does not equal Credit or a balance drifted
)

// IsValid checks if the status is a valid TrialBalanceStatus
func (s TrialBalanceStatus) IsValid() bool {
	return s == TrialBalanceStatusBalanced || s == TrialBalanceStatusUnbalanced
}

// String returns the string representation
func (s TrialBalanceStatus) String() string {
	return string(s)
}

// IsBalanced returns true if the trial balance is balanced
func (s TrialBalanceStatus) IsBalanced() bool {
	return s == TrialBalanceStatusBalanced
}

// BalanceDiscrepancy is an account whose running balance disagrees with its history
type BalanceDiscrepancy struct {
	AccountID       uuid.UUID       `json:"account_id"`
	AccountCode     string          `json:"account_code"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	Difference      decimal.Decimal `json:"difference"` // Recorded - Expected
}

// TrialBalanceResult represents the result of a trial balance check
type TrialBalanceResult struct {
	TenantID      uuid.UUID            `json:"tenant_id"`
	CheckedAt     time.Time            `json:"checked_at"`
	Status        TrialBalanceStatus   `json:"status"`
	TotalDebits   decimal.Decimal      `json:"total_debits"`
	TotalCredits  decimal.Decimal      `json:"total_credits"`
	AccountCount  int                  `json:"account_count"`
	Discrepancies []BalanceDiscrepancy `json:"discrepancies"`
}

// NewTrialBalanceResult creates an empty balanced result
func NewTrialBalanceResult(tenantID uuid.UUID, checkedAt time.Time) *TrialBalanceResult {
	return &TrialBalanceResult{
		TenantID:      tenantID,
		CheckedAt:     checkedAt,
		Status:        TrialBalanceStatusBalanced,
		TotalDebits:   decimal.Zero,
		TotalCredits:  decimal.Zero,
		Discrepancies: make([]BalanceDiscrepancy, 0),
	}
}

// AddAccount folds one account and its transaction totals into the result
func (r *TrialBalanceResult) AddAccount(a *LedgerAccount, totals AccountTotals) {
	r.AccountCount++
	r.TotalDebits = r.TotalDebits.Add(totals.Debit)
	r.TotalCredits = r.TotalCredits.Add(totals.Credit)

	expected := a.ExpectedBalance(totals)
	if !expected.Equal(a.Balance) {
		r.Discrepancies = append(r.Discrepancies, BalanceDiscrepancy{
			AccountID:       a.ID,
			AccountCode:     a.Code,
			RecordedBalance: a.Balance,
			ExpectedBalance: expected,
			Difference:      a.Balance.Sub(expected),
		})
	}
	r.refreshStatus()
}

func (r *TrialBalanceResult) refreshStatus() {
	if r.TotalDebits.Equal(r.TotalCredits) && len(r.Discrepancies) == 0 {
		r.Status = TrialBalanceStatusBalanced
		return
	}
	r.Status = TrialBalanceStatusUnbalanced
}

package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *postingHarness) trialBalance(t *testing.T) *finance.TrialBalanceResult {
	t.Helper()
	svc := NewTrialBalanceService(persistence.NewGormTransactionScope(h.DB), nil)
	svc.now = func() time.Time { return paymentDay }
	result, err := svc.Check(context.Background(), h.TenantID)
	require.NoError(t, err)
	return result
}

func TestTrialBalanceService_BalancedAfterPostings(t *testing.T) {
	h := newPostingHarness(t, billing.ReceiptAccountBank)
	inv := h.mappedInvoice("INV-1")
	h.moveInvoice(t, inv, billing.InvoiceStatusPaid)
	v, err := h.vouchers.CreateJournal(context.Background(), h.transfer(300))
	require.NoError(t, err)
	h.moveVoucher(t, v, finance.VoucherStatusPosted)

	result := h.trialBalance(t)
	assert.Equal(t, finance.TrialBalanceStatusBalanced, result.Status)
	assert.Equal(t, 4, result.AccountCount)
	assert.True(t, result.TotalDebits.Equal(decimal.NewFromInt(2300)), "got %s", result.TotalDebits)
	assert.True(t, result.TotalDebits.Equal(result.TotalCredits))
	assert.Empty(t, result.Discrepancies)
	assert.True(t, result.CheckedAt.Equal(paymentDay))
}

func TestTrialBalanceService_EmptyLedger(t *testing.T) {
	h := newPostingHarness(t, billing.ReceiptAccountBank)

	result := h.trialBalance(t)
	assert.True(t, result.Status.IsBalanced())
	assert.True(t, result.TotalDebits.IsZero())
	assert.Equal(t, 4, result.AccountCount)
}

func TestTrialBalanceService_ReportsDrift(t *testing.T) {
	h := newPostingHarness(t, billing.ReceiptAccountBank)
	inv := h.mappedInvoice("INV-1")
	h.moveInvoice(t, inv, billing.InvoiceStatusSent)

	// a balance edited outside the posting path
	require.NoError(t, h.DB.Model(&models.LedgerAccountModel{}).
		Where("id = ?", h.ledger.Receivable.ID).
		Update("balance", decimal.NewFromInt(900)).Error)

	result := h.trialBalance(t)
	assert.Equal(t, finance.TrialBalanceStatusUnbalanced, result.Status)
	assert.True(t, result.TotalDebits.Equal(result.TotalCredits), "the transactions themselves still balance")
	require.Len(t, result.Discrepancies, 1)
	d := result.Discrepancies[0]
	assert.Equal(t, "1200", d.AccountCode)
	assert.True(t, d.RecordedBalance.Equal(decimal.NewFromInt(900)))
	assert.True(t, d.ExpectedBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, d.Difference.Equal(decimal.NewFromInt(-100)))
}

func TestTrialBalanceService_ReportsOneSidedTransaction(t *testing.T) {
	h := newPostingHarness(t, billing.ReceiptAccountBank)
	require.NoError(t, h.DB.Create(&models.LedgerTransactionModel{
		ID:        uuid.New(),
		TenantID:  h.TenantID,
		AccountID: h.ledger.Cash.ID,
		Debit:     decimal.NewFromInt(50),
		Credit:    decimal.Zero,
		Date:      paymentDay,
		Source:    finance.SourceVoucher,
		CreatedAt: paymentDay,
	}).Error)

	result := h.trialBalance(t)
	assert.False(t, result.Status.IsBalanced())
	assert.True(t, result.TotalDebits.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.TotalCredits.IsZero())
	require.Len(t, result.Discrepancies, 1, "the cash balance was never applied")
	assert.Equal(t, h.ledger.Cash.ID, result.Discrepancies[0].AccountID)
}

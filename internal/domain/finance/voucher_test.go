package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T) *Voucher {
	t.Helper()
	vt := VoucherType{ID: uuid.New(), Code: VoucherTypeJournal, Name: "Journal", Prefix: "JV"}
	v, err := NewVoucher(uuid.New(), vt, "JV-00001", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "Accrual")
	require.NoError(t, err)
	return v
}

func TestVoucherNumber(t *testing.T) {
	assert.Equal(t, "RV-00042", FormatVoucherNumber("RV", 42))
	assert.Equal(t, "RV-123456", FormatVoucherNumber("RV", 123456))

	tests := []struct {
		number string
		want   int64
		ok     bool
	}{
		{number: "RV-00042", want: 42, ok: true},
		{number: "RV-123456", want: 123456, ok: true},
		{number: "RV-", ok: false},
		{number: "RV-+0042", ok: false},
		{number: "RVX-00042", ok: false},
		{number: "JV-00042", ok: false},
	}
	for _, tt := range tests {
		got, ok := VoucherSequence("RV", tt.number)
		assert.Equal(t, tt.ok, ok, tt.number)
		assert.Equal(t, tt.want, got, tt.number)
	}
}

func TestVoucherStatus(t *testing.T) {
	t.Run("IsValid", func(t *testing.T) {
		assert.True(t, VoucherStatusDraft.IsValid())
		assert.True(t, VoucherStatusPosted.IsValid())
		assert.True(t, VoucherStatusCancelled.IsValid())
		assert.False(t, VoucherStatus("approved").IsValid())
	})

	t.Run("transition table", func(t *testing.T) {
		assert.True(t, VoucherStatusDraft.CanTransitionTo(VoucherStatusPosted))
		assert.True(t, VoucherStatusDraft.CanTransitionTo(VoucherStatusCancelled))
		assert.True(t, VoucherStatusPosted.CanTransitionTo(VoucherStatusDraft))
		assert.True(t, VoucherStatusPosted.CanTransitionTo(VoucherStatusCancelled))
		assert.True(t, VoucherStatusCancelled.CanTransitionTo(VoucherStatusDraft))
		assert.False(t, VoucherStatusCancelled.CanTransitionTo(VoucherStatusPosted))
	})
}

func TestVoucher_Entries(t *testing.T) {
	t.Run("rejects two-sided and empty entries", func(t *testing.T) {
		v := newJournal(t)
		assert.Error(t, v.AddEntry(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(10), ""))
		assert.Error(t, v.AddEntry(uuid.New(), decimal.Zero, decimal.Zero, ""))
		assert.Error(t, v.AddEntry(uuid.New(), decimal.NewFromInt(-5), decimal.Zero, ""))
		assert.Error(t, v.AddEntry(uuid.Nil, decimal.NewFromInt(5), decimal.Zero, ""))
		assert.Empty(t, v.Entries)
	})

	t.Run("balanced voucher validates", func(t *testing.T) {
		v := newJournal(t)
		require.NoError(t, v.AddEntry(uuid.New(), decimal.NewFromInt(250), decimal.Zero, ""))
		require.NoError(t, v.AddEntry(uuid.New(), decimal.Zero, decimal.NewFromInt(200), ""))
		require.NoError(t, v.AddEntry(uuid.New(), decimal.Zero, decimal.NewFromInt(50), ""))
		assert.NoError(t, v.Validate())

		debit, credit := v.Totals()
		assert.True(t, debit.Equal(credit))
		assert.Equal(t, 2, v.Entries[2].SortOrder)
	})

	t.Run("unbalanced voucher fails", func(t *testing.T) {
		v := newJournal(t)
		require.NoError(t, v.AddEntry(uuid.New(), decimal.NewFromInt(250), decimal.Zero, ""))
		require.NoError(t, v.AddEntry(uuid.New(), decimal.Zero, decimal.NewFromInt(200), ""))
		assert.True(t, errors.Is(v.Validate(), ErrUnbalancedVoucher))
	})

	t.Run("single entry fails", func(t *testing.T) {
		v := newJournal(t)
		require.NoError(t, v.AddEntry(uuid.New(), decimal.NewFromInt(250), decimal.Zero, ""))
		assert.ErrorIs(t, v.Validate(), ErrUnbalancedVoucher)
	})
}

func TestVoucher_ChangeStatus(t *testing.T) {
	at := time.Date(2025, time.April, 2, 8, 0, 0, 0, time.UTC)

	t.Run("posting requires balance", func(t *testing.T) {
		v := newJournal(t)
		require.NoError(t, v.AddEntry(uuid.New(), decimal.NewFromInt(100), decimal.Zero, ""))
		err := v.ChangeStatus(VoucherStatusPosted, at)
		assert.ErrorIs(t, err, ErrUnbalancedVoucher)
		assert.Equal(t, VoucherStatusDraft, v.Status)
		assert.Empty(t, v.GetDomainEvents())
	})

	t.Run("post and unpost raise events", func(t *testing.T) {
		v := newJournal(t)
		require.NoError(t, v.AddEntry(uuid.New(), decimal.NewFromInt(100), decimal.Zero, ""))
		require.NoError(t, v.AddEntry(uuid.New(), decimal.Zero, decimal.NewFromInt(100), ""))

		require.NoError(t, v.ChangeStatus(VoucherStatusPosted, at))
		require.NotNil(t, v.PostedAt)
		require.NoError(t, v.ChangeStatus(VoucherStatusCancelled, at))
		assert.Nil(t, v.PostedAt)

		events := v.GetDomainEvents()
		require.Len(t, events, 2)
		last, ok := events[1].(*VoucherStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, VoucherStatusPosted, last.FromStatus)
		assert.Equal(t, VoucherStatusCancelled, last.ToStatus)
	})

	t.Run("disallowed transition", func(t *testing.T) {
		v := newJournal(t)
		require.NoError(t, v.ChangeStatus(VoucherStatusCancelled, at))
		assert.Error(t, v.ChangeStatus(VoucherStatusPosted, at))
	})
}

func TestVoucher_Postings(t *testing.T) {
	v := newJournal(t)
	invoiceID := uuid.New()
	v.InvoiceID = &invoiceID
	require.NoError(t, v.AddEntry(uuid.New(), decimal.NewFromInt(100), decimal.Zero, ""))
	require.NoError(t, v.AddEntry(uuid.New(), decimal.Zero, decimal.NewFromInt(100), ""))

	txs := v.Postings()
	require.Len(t, txs, 2)
	assert.True(t, IsBalanced(txs))
	for i, tx := range txs {
		assert.Equal(t, SourceVoucher, tx.Source)
		assert.Equal(t, v.ID, *tx.VoucherID)
		assert.Equal(t, v.Entries[i].ID, *tx.EntryID)
		assert.Equal(t, &invoiceID, tx.InvoiceID)
	}
}

func TestNewInvoicePosting(t *testing.T) {
	customer, income := uuid.New(), uuid.New()
	txs := NewInvoicePosting(uuid.New(), uuid.New(), customer, income, decimal.NewFromInt(1000), time.Now(), "INV-1")
	require.Len(t, txs, 2)
	assert.Equal(t, customer, txs[0].AccountID)
	assert.True(t, txs[0].Debit.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, income, txs[1].AccountID)
	assert.True(t, txs[1].Credit.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, txs[0].VoucherID)
	assert.True(t, IsBalanced(txs))
}

func TestTrialBalanceResult(t *testing.T) {
	tenantID := uuid.New()

	t.Run("balanced ledger", func(t *testing.T) {
		r := NewTrialBalanceResult(tenantID, time.Now())
		a, err := NewLedgerAccount(tenantID, "1100", "Receivables", AccountTypeAsset, decimal.NewFromInt(10))
		require.NoError(t, err)
		a.Balance = decimal.NewFromInt(1010)
		b, err := NewLedgerAccount(tenantID, "4000", "Fees", AccountTypeIncome, decimal.Zero)
		require.NoError(t, err)
		b.Balance = decimal.NewFromInt(-1000)

		r.AddAccount(a, AccountTotals{Debit: decimal.NewFromInt(1000), Credit: decimal.Zero, Count: 1})
		r.AddAccount(b, AccountTotals{Debit: decimal.Zero, Credit: decimal.NewFromInt(1000), Count: 1})

		assert.True(t, r.Status.IsBalanced())
		assert.Equal(t, 2, r.AccountCount)
		assert.Empty(t, r.Discrepancies)
	})

	t.Run("drifted balance is reported", func(t *testing.T) {
		r := NewTrialBalanceResult(tenantID, time.Now())
		a, err := NewLedgerAccount(tenantID, "1100", "Receivables", AccountTypeAsset, decimal.Zero)
		require.NoError(t, err)
		a.Balance = decimal.NewFromInt(900)

		r.AddAccount(a, AccountTotals{Debit: decimal.NewFromInt(1000), Credit: decimal.NewFromInt(1000)})
		assert.Equal(t, TrialBalanceStatusUnbalanced, r.Status)
		require.Len(t, r.Discrepancies, 1)
		assert.True(t, r.Discrepancies[0].Difference.Equal(decimal.NewFromInt(900)))
		assert.True(t, r.Discrepancies[0].ExpectedBalance.IsZero())
	})

	t.Run("account validation", func(t *testing.T) {
		_, err := NewLedgerAccount(tenantID, "", "x", AccountTypeAsset, decimal.Zero)
		assert.Error(t, err)
		_, err = NewLedgerAccount(tenantID, "1", "x", "bogus", decimal.Zero)
		assert.Error(t, err)
	})
}

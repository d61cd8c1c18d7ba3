package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/practice/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *postingHarness) transfer(amount int64) CreateJournalCommand {
	return CreateJournalCommand{
		TenantID:  h.TenantID,
		Date:      testutil.Date(2025, time.April, 30),
		Narration: "Cash deposit",
		Entries: []JournalEntryInput{
			{AccountID: h.ledger.Bank.ID, Debit: decimal.NewFromInt(amount), Credit: decimal.Zero},
			{AccountID: h.ledger.Cash.ID, Debit: decimal.Zero, Credit: decimal.NewFromInt(amount)},
		},
	}
}

func (h *postingHarness) moveVoucher(t *testing.T, v *finance.Voucher, to finance.VoucherStatus) *finance.Voucher {
	t.Helper()
	got, err := h.vouchers.ChangeStatus(context.Background(), ChangeVoucherStatusCommand{
		TenantID:  h.TenantID,
		VoucherID: v.ID,
		Status:    to,
		At:        paymentDay,
	})
	require.NoError(t, err)
	return got
}

func (h *postingHarness) voucherPostings(v *finance.Voucher) int64 {
	return h.Count(&models.LedgerTransactionModel{}, "voucher_id = ?", v.ID)
}

func TestVoucherService_JournalLifecycle(t *testing.T) {
	h := newPostingHarness(t, billing.ReceiptAccountBank)
	ctx := context.Background()

	v, err := h.vouchers.CreateJournal(ctx, h.transfer(500))
	require.NoError(t, err)
	assert.Equal(t, "JV-00001", v.VoucherNumber)
	assert.Equal(t, finance.VoucherStatusDraft, v.Status)
	assert.Zero(t, h.voucherPostings(v), "drafts carry no postings")

	posted := h.moveVoucher(t, v, finance.VoucherStatusPosted)
	require.NotNil(t, posted.PostedAt)
	assert.Equal(t, int64(2), h.voucherPostings(v))
	h.assertBalance(t, h.ledger.Bank, 500)
	h.assertBalance(t, h.ledger.Cash, -500)
	assert.Equal(t, 2, h.recorder.postings[string(finance.SourceVoucher)])

	h.moveVoucher(t, v, finance.VoucherStatusCancelled)
	assert.Zero(t, h.voucherPostings(v))
	h.assertBalance(t, h.ledger.Bank, 0)
	h.assertBalance(t, h.ledger.Cash, 0)
	assert.Equal(t, int64(2), h.recorder.reversals[string(finance.SourceVoucher)])

	reopened := h.moveVoucher(t, v, finance.VoucherStatusDraft)
	assert.Nil(t, reopened.PostedAt)

	next, err := h.vouchers.CreateJournal(ctx, h.transfer(250))
	require.NoError(t, err)
	assert.Equal(t, "JV-00002", next.VoucherNumber)
}

func TestVoucherService_CreateJournalRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unbalanced", func(t *testing.T) {
		h := newPostingHarness(t, billing.ReceiptAccountBank)
		cmd := h.transfer(500)
		cmd.Entries[1].Credit = decimal.NewFromInt(400)

		_, err := h.vouchers.CreateJournal(ctx, cmd)
		assert.ErrorIs(t, err, finance.ErrUnbalancedVoucher)
		assert.Zero(t, h.Count(&models.VoucherModel{}, ""))
	})

	t.Run("single entry", func(t *testing.T) {
		h := newPostingHarness(t, billing.ReceiptAccountBank)
		cmd := h.transfer(500)
		cmd.Entries = cmd.Entries[:1]

		_, err := h.vouchers.CreateJournal(ctx, cmd)
		assert.ErrorIs(t, err, finance.ErrUnbalancedVoucher)
	})

	t.Run("unknown account", func(t *testing.T) {
		h := newPostingHarness(t, billing.ReceiptAccountBank)
		cmd := h.transfer(500)
		cmd.Entries[0].AccountID = uuid.New()

		_, err := h.vouchers.CreateJournal(ctx, cmd)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("journal type missing", func(t *testing.T) {
		h := newPostingHarness(t, billing.ReceiptAccountBank)
		require.NoError(t, h.DB.Where("tenant_id = ? AND code = ?", h.TenantID, finance.VoucherTypeJournal).
			Delete(&models.VoucherTypeModel{}).Error)

		_, err := h.vouchers.CreateJournal(ctx, h.transfer(500))
		assert.ErrorIs(t, err, finance.ErrVoucherTypeMissing)
	})
}

func TestVoucherService_ChangeStatusRejectsInvalidTransition(t *testing.T) {
	h := newPostingHarness(t, billing.ReceiptAccountBank)
	ctx := context.Background()

	v, err := h.vouchers.CreateJournal(ctx, h.transfer(500))
	require.NoError(t, err)
	h.moveVoucher(t, v, finance.VoucherStatusCancelled)

	_, err = h.vouchers.ChangeStatus(ctx, ChangeVoucherStatusCommand{
		TenantID:  h.TenantID,
		VoucherID: v.ID,
		Status:    finance.VoucherStatusPosted,
	})
	assert.Error(t, err)
	assert.Zero(t, h.voucherPostings(v))
}

func TestNextVoucherNumber_UsesConfiguredPrefix(t *testing.T) {
	f := testutil.NewFixture(t)
	vt := f.VoucherType(finance.VoucherTypePayment, "PAY")
	fallback := f.VoucherType(finance.VoucherTypeJournal, "")

	withRepos(t, f, func(ctx context.Context, repos uow.Repositories) {
		got, err := NextVoucherNumber(ctx, repos, *vt)
		require.NoError(t, err)
		assert.Equal(t, "PAY-00001", got)

		got, err = NextVoucherNumber(ctx, repos, *fallback)
		require.NoError(t, err)
		assert.Equal(t, "JV-00001", got)
	})
}

func TestNextVoucherNumber_SkipsTakenNumbers(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "no vouchers", want: "PAY-00001"},
		{name: "contiguous", existing: []string{"PAY-00001", "PAY-00002"}, want: "PAY-00003"},
		{name: "gap below the count", existing: []string{"PAY-00002"}, want: "PAY-00003"},
		{name: "gap above the count is left", existing: []string{"PAY-00001", "PAY-00007"}, want: "PAY-00003"},
		{name: "unparsable numbers ignored", existing: []string{"PAY-00003", "PAY-99999x"}, want: "PAY-00004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			vt := f.VoucherType(finance.VoucherTypePayment, "PAY")

			withRepos(t, f, func(ctx context.Context, repos uow.Repositories) {
				for _, n := range tt.existing {
					v, err := finance.NewVoucher(f.TenantID, *vt, n, testutil.Date(2025, time.April, 1), "Seed")
					require.NoError(t, err)
					require.NoError(t, repos.Vouchers().Create(ctx, v))
				}

				got, err := NextVoucherNumber(ctx, repos, *vt)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		})
	}
}

func withRepos(t *testing.T, f *testutil.Fixture, fn func(ctx context.Context, repos uow.Repositories)) {
	t.Helper()
	err := persistence.NewGormTransactionScope(f.DB).Execute(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		fn(ctx, repos)
		return nil
	})
	require.NoError(t, err)
}

package billing

import (
	"context"
	"testing"
	"time"

	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/practice/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withResolver runs fn against a resolver inside one transaction
func withResolver(t *testing.T, f *testutil.Fixture, fn func(ctx context.Context, r *Resolver)) {
	t.Helper()
	err := persistence.NewGormTransactionScope(f.DB).Execute(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		fn(ctx, NewResolver(repos))
		return nil
	})
	require.NoError(t, err)
}

func TestResolver_ResolveAmount(t *testing.T) {
	f := testutil.NewFixture(t)
	servicePrice := decimal.NewFromInt(100)
	svc := f.Service("Bookkeeping", func(m *models.ServiceModel) { m.DefaultPrice = &servicePrice })
	bare := f.Service("Advisory", nil)
	cust := f.Customer("Acme", nil)
	other := f.Customer("Globex", nil)
	f.CustomerPrice(cust.ID, svc.ID, decimal.NewFromInt(90))

	engagementAmount := decimal.NewFromInt(80)
	periodAmount := decimal.NewFromInt(70)
	period := &engagement.Period{BillingAmount: &periodAmount}

	withEngagementAmount := f.Engagement(cust.ID, svc.ID, calendar.GranularityMonthly, nil, func(e *engagement.Engagement) {
		e.BillingAmount = &engagementAmount
	})
	withCustomerPrice := f.Engagement(cust.ID, svc.ID, calendar.GranularityMonthly, nil, nil)
	withServicePrice := f.Engagement(other.ID, svc.ID, calendar.GranularityMonthly, nil, nil)
	withoutPrice := f.Engagement(other.ID, bare.ID, calendar.GranularityMonthly, nil, nil)

	withResolver(t, f, func(ctx context.Context, r *Resolver) {
		tests := []struct {
			name   string
			eng    *engagement.Engagement
			period *engagement.Period
			want   decimal.Decimal
		}{
			{"period override wins", withEngagementAmount, period, periodAmount},
			{"engagement amount", withEngagementAmount, &engagement.Period{}, engagementAmount},
			{"customer price", withCustomerPrice, nil, decimal.NewFromInt(90)},
			{"service default", withServicePrice, nil, servicePrice},
		}
		for _, tt := range tests {
			got, err := r.ResolveAmount(ctx, tt.eng, tt.period)
			require.NoError(t, err, tt.name)
			assert.True(t, got.Equal(tt.want), "%s: got %s", tt.name, got)
		}

		_, err := r.ResolveAmount(ctx, withoutPrice, nil)
		assert.ErrorIs(t, err, billing.ErrNoValidPrice)
	})
}

func TestResolver_ResolveLedgerAccounts(t *testing.T) {
	f := testutil.NewFixture(t)
	l := f.Ledger(billing.ReceiptAccountBank)
	mapped := f.Account("4100", "Advisory Income", finance.AccountTypeIncome)
	svc := f.Service("Advisory", func(m *models.ServiceModel) { m.IncomeAccountID = &mapped.ID })
	plain := f.Service("Bookkeeping", nil)
	cust := f.Customer("Acme", func(m *models.CustomerModel) { m.LedgerAccountID = &l.Receivable.ID })
	noAccount := f.Customer("Globex", nil)

	mappedEng := f.Engagement(cust.ID, svc.ID, calendar.GranularityMonthly, nil, nil)
	defaultEng := f.Engagement(noAccount.ID, plain.ID, calendar.GranularityQuarterly, nil, nil)
	oneOff := f.Engagement(cust.ID, svc.ID, calendar.GranularityNone, nil, nil)

	withResolver(t, f, func(ctx context.Context, r *Resolver) {
		got, err := r.ResolveLedgerAccounts(ctx, mappedEng)
		require.NoError(t, err)
		assert.Equal(t, mapped.ID, *got.IncomeAccountID, "service account beats the tenant default")
		assert.Equal(t, l.Receivable.ID, *got.CustomerAccountID)

		got, err = r.ResolveLedgerAccounts(ctx, defaultEng)
		require.NoError(t, err)
		assert.Equal(t, l.Income.ID, *got.IncomeAccountID)
		assert.Nil(t, got.CustomerAccountID)

		got, err = r.ResolveLedgerAccounts(ctx, oneOff)
		require.NoError(t, err)
		assert.Equal(t, LedgerAccounts{}, got, "one-off engagements stay unmapped")
	})

	t.Run("no default income account", func(t *testing.T) {
		f := testutil.NewFixture(t)
		svc := f.Service("Bookkeeping", nil)
		cust := f.Customer("Acme", nil)
		eng := f.Engagement(cust.ID, svc.ID, calendar.GranularityMonthly, nil, nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			_, err := r.ResolveLedgerAccounts(ctx, eng)
			assert.ErrorIs(t, err, billing.ErrIncomeAccountUnmapped)
		})
	})
}

func TestResolver_ResolvePaymentTerms(t *testing.T) {
	f := testutil.NewFixture(t)
	withTerms := f.Service("Payroll", func(m *models.ServiceModel) { m.PaymentTerms = billing.PaymentTermsNet45 })
	without := f.Service("Advisory", nil)
	dueOnReceipt := f.Customer("Acme", func(m *models.CustomerModel) { m.PaymentTerms = billing.PaymentTermsDueOnReceipt })
	plain := f.Customer("Globex", nil)

	tests := []struct {
		name string
		eng  *engagement.Engagement
		want billing.PaymentTerms
	}{
		{"customer terms", f.Engagement(dueOnReceipt.ID, withTerms.ID, calendar.GranularityMonthly, nil, nil), billing.PaymentTermsDueOnReceipt},
		{"service terms", f.Engagement(plain.ID, withTerms.ID, calendar.GranularityMonthly, nil, nil), billing.PaymentTermsNet45},
		{"fallback", f.Engagement(plain.ID, without.ID, calendar.GranularityMonthly, nil, nil), billing.PaymentTermsNet15},
	}

	withResolver(t, f, func(ctx context.Context, r *Resolver) {
		for _, tt := range tests {
			got, svc, err := r.ResolvePaymentTerms(ctx, tt.eng, billing.PaymentTermsNet15)
			require.NoError(t, err, tt.name)
			assert.Equal(t, tt.want, got, tt.name)
			assert.Equal(t, tt.eng.ServiceID, svc.ID)
		}
	})
}

func TestResolver_ResolveInvoiceNumber(t *testing.T) {
	issue := testutil.Date(2025, time.April, 2)

	t.Run("fallback numbering counts per day", func(t *testing.T) {
		f := testutil.NewFixture(t)
		cust := f.Customer("Acme", nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "INV-20250402-00001", got)
		})

		f.Invoice(cust.ID, "INV-20250402-00001", decimal.NewFromInt(10), nil)
		f.Invoice(cust.ID, "INV-20250401-00001", decimal.NewFromInt(10), nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "INV-20250402-00002", got)
		})
	})

	t.Run("tenant scheme", func(t *testing.T) {
		f := testutil.NewFixture(t)
		cust := f.Customer("Acme", nil)
		f.Settings(func(m *models.TenantSettingsModel) {
			m.InvoicePrefix = "AC/"
			m.InvoiceSuffix = "/25"
			m.InvoiceNumberWidth = 4
			m.InvoiceStartingNumber = 100
		})
		f.Invoice(cust.ID, "imported-1", decimal.NewFromInt(10), nil)

		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "AC/0101/25", got)
		})
	})

	t.Run("taken candidates advance past the highest sequence", func(t *testing.T) {
		f := testutil.NewFixture(t)
		cust := f.Customer("Acme", nil)
		f.Invoice(cust.ID, "INV-20250402-00002", decimal.NewFromInt(10), nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "INV-20250402-00003", got)
		})

		f.Settings(func(m *models.TenantSettingsModel) {
			m.InvoicePrefix = "AC-"
			m.InvoiceNumberWidth = 3
			m.InvoiceStartingNumber = 1
		})
		f.Invoice(cust.ID, "AC-002", decimal.NewFromInt(10), nil)
		f.Invoice(cust.ID, "AC-009", decimal.NewFromInt(10), nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "AC-004", got, "three invoices exist, AC-004 is free")
		})

		f.Invoice(cust.ID, "AC-005", decimal.NewFromInt(10), nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "AC-010", got)
		})
	})

	t.Run("settings without a scheme use the fallback", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.Settings(nil)
		withResolver(t, f, func(ctx context.Context, r *Resolver) {
			got, err := r.ResolveInvoiceNumber(ctx, f.TenantID, issue)
			require.NoError(t, err)
			assert.Equal(t, "INV-20250402-00001", got)
		})
	})
}

package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/practice/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	cust := f.Customer("Acme", nil)
	repo := persistence.NewGormInvoiceRepository(f.DB)

	inv, err := billing.NewDraftInvoice(f.TenantID, billing.DraftInvoice{
		Number:       "INV-20250301-00001",
		CustomerID:   cust.ID,
		IssueDate:    testutil.Date(2025, time.March, 1),
		PaymentTerms: billing.PaymentTermsNet15,
		Description:  "Bookkeeping - Mar 2025",
		Amount:       decimal.NewFromInt(200),
		TaxRate:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.FindByIDForTenant(ctx, f.TenantID, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(220)))
	assert.True(t, got.DueDate.Equal(testutil.Date(2025, time.March, 16)))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Bookkeeping - Mar 2025", got.Items[0].Description)

	require.NoError(t, got.ChangeStatus(billing.InvoiceStatusSent, testutil.Date(2025, time.March, 2)))
	require.NoError(t, repo.Save(ctx, got))
	got, err = repo.FindByIDForTenant(ctx, f.TenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, got.Status)
	assert.Len(t, got.Items, 1)

	f.Invoice(cust.ID, "INV-20250301-00002", decimal.NewFromInt(50), nil)
	f.Invoice(cust.ID, "ACME-7", decimal.NewFromInt(50), nil)

	n, err := repo.CountForTenant(ctx, f.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = repo.CountWithPrefix(ctx, f.TenantID, billing.FallbackInvoicePrefix(testutil.Date(2025, time.March, 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	taken, err := repo.NumberExists(ctx, f.TenantID, "ACME-7")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.NumberExists(ctx, uuid.New(), "ACME-7")
	require.NoError(t, err)
	assert.False(t, taken, "numbers are scoped to the tenant")
	numbers, err := repo.NumbersWithPrefix(ctx, f.TenantID, "INV-20250301-")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{inv.InvoiceNumber, "INV-20250301-00002"}, numbers)

	dup, err := billing.NewDraftInvoice(f.TenantID, billing.DraftInvoice{
		Number:       "ACME-7",
		CustomerID:   cust.ID,
		IssueDate:    testutil.Date(2025, time.March, 1),
		PaymentTerms: billing.PaymentTermsNet15,
		Description:  "Duplicate",
		Amount:       decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, dup), "invoice numbers are unique per tenant")

	require.NoError(t, repo.Delete(ctx, f.TenantID, inv.ID))
	assert.Zero(t, f.DB.Where("invoice_id = ?", inv.ID).Find(&[]models.InvoiceItemModel{}).RowsAffected)
	_, err = repo.FindByIDForTenant(ctx, f.TenantID, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, f.TenantID, inv.ID), shared.ErrNotFound)
}

func TestGormBillingLookups(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	price := decimal.NewFromInt(120)
	svc := f.Service("Payroll", func(m *models.ServiceModel) {
		m.DefaultPrice = &price
		m.PaymentTerms = billing.PaymentTermsNet45
	})
	cust := f.Customer("Acme", func(m *models.CustomerModel) { m.PaymentTerms = billing.PaymentTermsDueOnReceipt })

	gotSvc, err := persistence.NewGormServiceRepository(f.DB).FindByIDForTenant(ctx, f.TenantID, svc.ID)
	require.NoError(t, err)
	assert.True(t, gotSvc.DefaultPrice.Equal(price))
	assert.Equal(t, billing.PaymentTermsNet45, gotSvc.PaymentTerms)

	_, err = persistence.NewGormServiceRepository(f.DB).FindByIDForTenant(ctx, uuid.New(), svc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	gotCust, err := persistence.NewGormCustomerRepository(f.DB).FindByIDForTenant(ctx, f.TenantID, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentTermsDueOnReceipt, gotCust.PaymentTerms)

	prices := persistence.NewGormCustomerPriceRepository(f.DB)
	missing, err := prices.Find(ctx, f.TenantID, cust.ID, svc.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	f.CustomerPrice(cust.ID, svc.ID, decimal.NewFromInt(90))
	found, err := prices.Find(ctx, f.TenantID, cust.ID, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(90)))

	settings := persistence.NewGormTenantSettingsRepository(f.DB)
	none, err := settings.FindByTenant(ctx, f.TenantID)
	require.NoError(t, err)
	assert.Nil(t, none)

	f.Settings(func(m *models.TenantSettingsModel) {
		m.InvoicePrefix = "AC-"
		m.InvoiceNumberWidth = 4
		m.ReceiptAccount = billing.ReceiptAccountCash
	})
	s, err := settings.FindByTenant(ctx, f.TenantID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.Numbering.IsConfigured())
	assert.Equal(t, "AC-0003", s.Numbering.Format(2))
	assert.Equal(t, billing.ReceiptAccountCash, s.ReceiptAccount)
}

// Package billing resolves invoice amounts, accounts and numbers, and creates draft
// invoices when engagements and periods complete.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/shopspring/decimal"
)

// LedgerAccounts are the posting accounts resolved for an invoice; either may be nil
type LedgerAccounts struct {
	IncomeAccountID   *uuid.UUID
	CustomerAccountID *uuid.UUID
}

// Resolver applies the billing priority chains against the repositories of one
// transaction
type Resolver struct {
	repos uow.Repositories
}

// NewResolver creates a resolver scoped to the given repositories
func NewResolver(repos uow.Repositories) *Resolver {
	return &Resolver{repos: repos}
}

// ResolveAmount returns the first configured amount of: period override, engagement
// billing amount, customer-specific price, service default price. period may be nil.
func (r *Resolver) ResolveAmount(ctx context.Context, eng *engagement.Engagement, period *engagement.Period) (decimal.Decimal, error) {
	if period != nil && period.BillingAmount != nil {
		return *period.BillingAmount, nil
	}
	if eng.BillingAmount != nil {
		return *eng.BillingAmount, nil
	}

	price, err := r.repos.CustomerPrices().Find(ctx, eng.TenantID, eng.CustomerID, eng.ServiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load customer price: %w", err)
	}
	if price != nil {
		return price.Price, nil
	}

	svc, err := r.repos.Services().FindByIDForTenant(ctx, eng.TenantID, eng.ServiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load service: %w", err)
	}
	if svc.DefaultPrice != nil {
		return *svc.DefaultPrice, nil
	}
	return decimal.Zero, billing.ErrNoValidPrice
}

// ResolveLedgerAccounts maps the income and customer accounts of a recurring
// engagement. One-off engagements are never mapped automatically. A recurring
// engagement without an income account fails with ErrIncomeAccountUnmapped; the
// customer account may stay nil.
func (r *Resolver) ResolveLedgerAccounts(ctx context.Context, eng *engagement.Engagement) (LedgerAccounts, error) {
	if !eng.IsRecurring() {
		return LedgerAccounts{}, nil
	}

	svc, err := r.repos.Services().FindByIDForTenant(ctx, eng.TenantID, eng.ServiceID)
	if err != nil {
		return LedgerAccounts{}, fmt.Errorf("failed to load service: %w", err)
	}

	accounts := LedgerAccounts{IncomeAccountID: svc.IncomeAccountID}
	if accounts.IncomeAccountID == nil {
		settings, err := r.repos.TenantSettings().FindByTenant(ctx, eng.TenantID)
		if err != nil {
			return LedgerAccounts{}, fmt.Errorf("failed to load tenant settings: %w", err)
		}
		if settings != nil {
			accounts.IncomeAccountID = settings.DefaultIncomeAccountID
		}
	}
	if accounts.IncomeAccountID == nil {
		return LedgerAccounts{}, fmt.Errorf("service %s: %w", svc.Name, billing.ErrIncomeAccountUnmapped)
	}

	customer, err := r.repos.Customers().FindByIDForTenant(ctx, eng.TenantID, eng.CustomerID)
	if err != nil {
		return LedgerAccounts{}, fmt.Errorf("failed to load customer: %w", err)
	}
	accounts.CustomerAccountID = customer.LedgerAccountID
	return accounts, nil
}

// ResolveInvoiceNumber formats the next invoice number from the tenant numbering
// scheme, or INV-YYYYMMDD-NNNNN when the tenant has none. The invoice count gives
// the candidate; when deleted drafts left it taken, numbering continues past the
// highest sequence already issued under the scheme.
func (r *Resolver) ResolveInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issueDate time.Time) (string, error) {
	settings, err := r.repos.TenantSettings().FindByTenant(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("failed to load tenant settings: %w", err)
	}

	if settings != nil && settings.Numbering.IsConfigured() {
		scheme := settings.Numbering
		count, err := r.repos.Invoices().CountForTenant(ctx, tenantID)
		if err != nil {
			return "", fmt.Errorf("failed to count invoices: %w", err)
		}
		return r.freeInvoiceNumber(ctx, tenantID, scheme.Format(count), scheme.Prefix, scheme.Sequence, scheme.FormatSequence)
	}

	prefix := billing.FallbackInvoicePrefix(issueDate)
	count, err := r.repos.Invoices().CountWithPrefix(ctx, tenantID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count invoices: %w", err)
	}
	return r.freeInvoiceNumber(ctx, tenantID, billing.FallbackInvoiceNumber(issueDate, count), prefix,
		func(n string) (int64, bool) { return billing.FallbackInvoiceSequence(issueDate, n) },
		func(seq int64) string { return billing.FallbackInvoiceNumber(issueDate, seq-1) },
	)
}

// freeInvoiceNumber returns candidate unless it is taken, then the number after the
// highest sequence among the tenant's numbers starting with prefix
func (r *Resolver) freeInvoiceNumber(
	ctx context.Context,
	tenantID uuid.UUID,
	candidate, prefix string,
	parse func(string) (int64, bool),
	format func(int64) string,
) (string, error) {
	taken, err := r.repos.Invoices().NumberExists(ctx, tenantID, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check invoice number: %w", err)
	}
	if !taken {
		return candidate, nil
	}

	numbers, err := r.repos.Invoices().NumbersWithPrefix(ctx, tenantID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to list invoice numbers: %w", err)
	}
	return format(billing.NextSequence(numbers, parse)), nil
}

// ResolvePaymentTerms returns the customer terms, then the service terms, then the fallback
func (r *Resolver) ResolvePaymentTerms(ctx context.Context, eng *engagement.Engagement, fallback billing.PaymentTerms) (billing.PaymentTerms, *billing.Service, error) {
	svc, err := r.repos.Services().FindByIDForTenant(ctx, eng.TenantID, eng.ServiceID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load service: %w", err)
	}
	customer, err := r.repos.Customers().FindByIDForTenant(ctx, eng.TenantID, eng.CustomerID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return billing.FirstTerms(customer.PaymentTerms, svc.PaymentTerms, fallback), svc, nil
}

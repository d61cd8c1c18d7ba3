// Package uow defines the unit of work the application services run in: one storage
// transaction with every repository scoped to it.
package uow

import (
	"context"

	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/finance"
)

// Repositories provides access to all repositories within a transaction
type Repositories interface {
	Engagements() engagement.EngagementRepository
	TaskTemplates() engagement.TaskTemplateRepository
	TaskConfigs() engagement.TaskConfigRepository
	Periods() engagement.PeriodRepository
	Tasks() engagement.TaskRepository

	Invoices() billing.InvoiceRepository
	Services() billing.ServiceRepository
	Customers() billing.CustomerRepository
	CustomerPrices() billing.CustomerPriceRepository
	TenantSettings() billing.TenantSettingsRepository

	LedgerAccounts() finance.LedgerAccountRepository
	LedgerTransactions() finance.LedgerTransactionRepository
	Vouchers() finance.VoucherRepository
	VoucherTypes() finance.VoucherTypeRepository
}

// TransactionScope runs fn atomically. The context passed to fn carries the
// transaction; calling Execute again with that context opens a nested scope that
// rolls back on its own without aborting the outer one.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

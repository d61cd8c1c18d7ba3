package persistence

import (
	"context"

	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/finance"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
// The active transaction travels in the context, so a scope opened while another is
// running becomes a SAVEPOINT of the outer transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction (or savepoint) is rolled back.
// If the function succeeds, it is committed (or released).
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return TxFromContext(ctx, s.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx, &gormRepositories{tx: tx})
	})
}

// TxFromContext returns the transaction carried by ctx, or db when there is none
func TxFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db
}

// gormRepositories provides access to all repositories within a transaction.
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) Engagements() engagement.EngagementRepository {
	return NewGormEngagementRepository(r.tx)
}

func (r *gormRepositories) TaskTemplates() engagement.TaskTemplateRepository {
	return NewGormTaskTemplateRepository(r.tx)
}

func (r *gormRepositories) TaskConfigs() engagement.TaskConfigRepository {
	return NewGormTaskConfigRepository(r.tx)
}

func (r *gormRepositories) Periods() engagement.PeriodRepository {
	return NewGormPeriodRepository(r.tx)
}

func (r *gormRepositories) Tasks() engagement.TaskRepository {
	return NewGormTaskRepository(r.tx)
}

func (r *gormRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormRepositories) Services() billing.ServiceRepository {
	return NewGormServiceRepository(r.tx)
}

func (r *gormRepositories) Customers() billing.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormRepositories) CustomerPrices() billing.CustomerPriceRepository {
	return NewGormCustomerPriceRepository(r.tx)
}

func (r *gormRepositories) TenantSettings() billing.TenantSettingsRepository {
	return NewGormTenantSettingsRepository(r.tx)
}

func (r *gormRepositories) LedgerAccounts() finance.LedgerAccountRepository {
	return NewGormLedgerAccountRepository(r.tx)
}

func (r *gormRepositories) LedgerTransactions() finance.LedgerTransactionRepository {
	return NewGormLedgerTransactionRepository(r.tx)
}

func (r *gormRepositories) Vouchers() finance.VoucherRepository {
	return NewGormVoucherRepository(r.tx)
}

func (r *gormRepositories) VoucherTypes() finance.VoucherTypeRepository {
	return NewGormVoucherTypeRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ uow.Repositories = (*gormRepositories)(nil)

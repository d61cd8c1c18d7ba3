package finance

import (
	"context"

	"github.com/google/uuid"
)

// LedgerAccountRepository defines the interface for ledger account persistence
type LedgerAccountRepository interface {
	// FindByIDForTenant finds an account by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*LedgerAccount, error)

	// FindAllForTenant returns every account of a tenant ordered by code
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]LedgerAccount, error)

	// Save creates or updates an account
	Save(ctx context.Context, a *LedgerAccount) error
}

// LedgerTransactionRepository is the only path that changes account balances:
// every insert adds debit - credit to its account and every delete subtracts it.
type LedgerTransactionRepository interface {
	// Post inserts the transactions and applies them to account balances
	Post(ctx context.Context, txs []LedgerTransaction) error

	// ExistsForInvoice checks for invoice-direct postings of an invoice
	ExistsForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (bool, error)

	// ExistsForVoucher checks for postings of a voucher
	ExistsForVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (bool, error)

	// DeleteByInvoice removes the invoice-direct postings of an invoice and reverses their balances.
	// Postings of vouchers referencing the invoice are not touched.
	DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error)

	// DeleteByVoucher removes the postings of a voucher and reverses their balances
	DeleteByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (int64, error)

	// FindByInvoice returns the invoice-direct postings of an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]LedgerTransaction, error)

	// FindByVoucher returns the postings of a voucher
	FindByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) ([]LedgerTransaction, error)

	// TotalsByAccount sums debits and credits per account for a tenant
	TotalsByAccount(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]AccountTotals, error)
}

// VoucherRepository defines the interface for voucher persistence
type VoucherRepository interface {
	// FindByIDForTenant finds a voucher with its entries by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Voucher, error)

	// FindByInvoice returns the vouchers of a type that reference an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, code VoucherTypeCode) ([]Voucher, error)

	// Create inserts a voucher and its entries
	Create(ctx context.Context, v *Voucher) error

	// Save updates the voucher header
	Save(ctx context.Context, v *Voucher) error

	// Delete removes a voucher and its entries
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountByType counts the vouchers of a type for a tenant
	CountByType(ctx context.Context, tenantID, voucherTypeID uuid.UUID) (int64, error)

	// NumberExists checks whether a voucher number is taken within a tenant
	NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)

	// NumbersWithPrefix returns the voucher numbers of a tenant starting with prefix
	NumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error)
}

// VoucherTypeRepository reads the tenant's voucher types
type VoucherTypeRepository interface {
	// FindByCode returns the voucher type for a code, or nil if the tenant has none
	FindByCode(ctx context.Context, tenantID uuid.UUID, code VoucherTypeCode) (*VoucherType, error)
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerTransactionRepository implements LedgerTransactionRepository using GORM.
// It is the only writer of ledger_accounts.balance.
type GormLedgerTransactionRepository struct {
	db *gorm.DB
}

// NewGormLedgerTransactionRepository creates a new GormLedgerTransactionRepository
func NewGormLedgerTransactionRepository(db *gorm.DB) *GormLedgerTransactionRepository {
	return &GormLedgerTransactionRepository{db: db}
}

// Post inserts the transactions and adds debit - credit to each account balance
func (r *GormLedgerTransactionRepository) Post(ctx context.Context, txs []finance.LedgerTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	if !finance.IsBalanced(txs) {
		return finance.ErrUnbalancedVoucher
	}

	now := time.Now()
	rows := make([]models.LedgerTransactionModel, len(txs))
	for i := range txs {
		rows[i] = *models.LedgerTransactionModelFromDomain(txs[i])
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert ledger transactions: %w", err)
	}
	return applyBalances(db, rows, false)
}

// ExistsForInvoice checks for invoice-direct postings of an invoice
func (r *GormLedgerTransactionRepository) ExistsForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (bool, error) {
	return r.exists(r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("source = ? AND invoice_id = ?", finance.SourceInvoice, invoiceID))
}

// ExistsForVoucher checks for postings of a voucher
func (r *GormLedgerTransactionRepository) ExistsForVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (bool, error) {
	return r.exists(r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("voucher_id = ?", voucherID))
}

func (r *GormLedgerTransactionRepository) exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Model(&models.LedgerTransactionModel{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByInvoice removes the invoice-direct postings of an invoice and reverses their balances
func (r *GormLedgerTransactionRepository) DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, tenantID, "source = ? AND invoice_id = ?", finance.SourceInvoice, invoiceID)
}

// DeleteByVoucher removes the postings of a voucher and reverses their balances
func (r *GormLedgerTransactionRepository) DeleteByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, tenantID, "voucher_id = ?", voucherID)
}

func (r *GormLedgerTransactionRepository) deleteWhere(ctx context.Context, tenantID uuid.UUID, cond string, args ...any) (int64, error) {
	db := r.db.WithContext(ctx)

	var rows []models.LedgerTransactionModel
	if err := db.Scopes(tenantScope(tenantID)).Where(cond, args...).Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	result := db.Where("id IN ?", ids).Delete(&models.LedgerTransactionModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete ledger transactions: %w", result.Error)
	}
	if err := applyBalances(db, rows, true); err != nil {
		return 0, err
	}
	return result.RowsAffected, nil
}

// applyBalances adds (or with reverse, subtracts) the net of the rows to their accounts
func applyBalances(db *gorm.DB, rows []models.LedgerTransactionModel, reverse bool) error {
	type accountKey struct {
		tenantID  uuid.UUID
		accountID uuid.UUID
	}
	order := make([]accountKey, 0, len(rows))
	nets := make(map[accountKey]decimal.Decimal, len(rows))
	for i := range rows {
		key := accountKey{tenantID: rows[i].TenantID, accountID: rows[i].AccountID}
		if _, ok := nets[key]; !ok {
			order = append(order, key)
			nets[key] = decimal.Zero
		}
		nets[key] = nets[key].Add(rows[i].Debit).Sub(rows[i].Credit)
	}

	for _, key := range order {
		net := nets[key]
		if reverse {
			net = net.Neg()
		}
		if net.IsZero() {
			continue
		}
		result := db.Model(&models.LedgerAccountModel{}).
			Where("tenant_id = ? AND id = ?", key.tenantID, key.accountID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", net),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update balance of account %s: %w", key.accountID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("ledger account %s: %w", key.accountID, shared.ErrNotFound)
		}
	}
	return nil
}

// FindByInvoice returns the invoice-direct postings of an invoice
func (r *GormLedgerTransactionRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]finance.LedgerTransaction, error) {
	return r.find(r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("source = ? AND invoice_id = ?", finance.SourceInvoice, invoiceID))
}

// FindByVoucher returns the postings of a voucher
func (r *GormLedgerTransactionRepository) FindByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) ([]finance.LedgerTransaction, error) {
	return r.find(r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("voucher_id = ?", voucherID))
}

func (r *GormLedgerTransactionRepository) find(query *gorm.DB) ([]finance.LedgerTransaction, error) {
	var rows []models.LedgerTransactionModel
	if err := query.Order("created_at ASC, debit DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	txs := make([]finance.LedgerTransaction, len(rows))
	for i := range rows {
		txs[i] = rows[i].ToDomain()
	}
	return txs, nil
}

type accountTotalsRow struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Count     int64
}

// TotalsByAccount sums debits and credits per account for a tenant
func (r *GormLedgerTransactionRepository) TotalsByAccount(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]finance.AccountTotals, error) {
	var rows []accountTotalsRow
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerTransactionModel{}).
		Scopes(tenantScope(tenantID)).
		Select("account_id, COALESCE(SUM(debit), 0) AS debit, COALESCE(SUM(credit), 0) AS credit, COUNT(*) AS count").
		Group("account_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]finance.AccountTotals, len(rows))
	for _, row := range rows {
		totals[row.AccountID] = finance.AccountTotals{Debit: row.Debit, Credit: row.Credit, Count: row.Count}
	}
	return totals, nil
}

// Ensure GormLedgerTransactionRepository implements LedgerTransactionRepository
var _ finance.LedgerTransactionRepository = (*GormLedgerTransactionRepository)(nil)

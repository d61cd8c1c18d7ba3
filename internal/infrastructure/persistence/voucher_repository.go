package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVoucherRepository implements VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

func preloadEntries(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// FindByIDForTenant finds a voucher with its entries by ID within a tenant
func (r *GormVoucherRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Voucher, error) {
	var model models.VoucherModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Entries", preloadEntries).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns the vouchers of a type that reference an invoice
func (r *GormVoucherRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, code finance.VoucherTypeCode) ([]finance.Voucher, error) {
	var rows []models.VoucherModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Entries", preloadEntries).
		Where("invoice_id = ? AND type_code = ?", invoiceID, code).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	vouchers := make([]finance.Voucher, len(rows))
	for i := range rows {
		vouchers[i] = *rows[i].ToDomain()
	}
	return vouchers, nil
}

// Create inserts a voucher and its entries
func (r *GormVoucherRepository) Create(ctx context.Context, v *finance.Voucher) error {
	return r.db.WithContext(ctx).Create(models.VoucherModelFromDomain(v)).Error
}

// Save updates the voucher header
func (r *GormVoucherRepository) Save(ctx context.Context, v *finance.Voucher) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(models.VoucherModelFromDomain(v)).Error
}

// Delete removes a voucher and its entries
func (r *GormVoucherRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.VoucherModel{}).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	if err := db.Where("voucher_id = ?", id).Delete(&models.VoucherEntryModel{}).Error; err != nil {
		return err
	}
	return db.Scopes(tenantScope(tenantID)).Where("id = ?", id).Delete(&models.VoucherModel{}).Error
}

// CountByType counts the vouchers of a type for a tenant
func (r *GormVoucherRepository) CountByType(ctx context.Context, tenantID, voucherTypeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VoucherModel{}).
		Scopes(tenantScope(tenantID)).
		Where("voucher_type_id = ?", voucherTypeID).
		Count(&count).Error
	return count, err
}

// NumberExists checks whether a voucher number is taken within a tenant
func (r *GormVoucherRepository) NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VoucherModel{}).
		Scopes(tenantScope(tenantID)).
		Where("voucher_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// NumbersWithPrefix returns the voucher numbers of a tenant starting with prefix
func (r *GormVoucherRepository) NumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.VoucherModel{}).
		Scopes(tenantScope(tenantID)).
		Where("voucher_number LIKE ?", prefix+"%").
		Pluck("voucher_number", &numbers).Error
	return numbers, err
}

// GormVoucherTypeRepository implements VoucherTypeRepository using GORM
type GormVoucherTypeRepository struct {
	db *gorm.DB
}

// NewGormVoucherTypeRepository creates a new GormVoucherTypeRepository
func NewGormVoucherTypeRepository(db *gorm.DB) *GormVoucherTypeRepository {
	return &GormVoucherTypeRepository{db: db}
}

// FindByCode returns the voucher type for a code, or nil if the tenant has none
func (r *GormVoucherTypeRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code finance.VoucherTypeCode) (*finance.VoucherType, error) {
	var model models.VoucherTypeModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("code = ?", code).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

var (
	_ finance.VoucherRepository     = (*GormVoucherRepository)(nil)
	_ finance.VoucherTypeRepository = (*GormVoucherTypeRepository)(nil)
)

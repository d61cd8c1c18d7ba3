package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its items by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts an invoice and its items
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	return r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error
}

// Save updates the invoice header
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(models.InvoiceModelFromDomain(inv)).Error
}

// Delete removes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Select("id").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		Delete(&models.InvoiceModel{}).Error
}

// CountForTenant counts every invoice of a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenantScope(tenantID)).
		Count(&count).Error
	return count, err
}

// CountWithPrefix counts the invoices whose number starts with prefix
func (r *GormInvoiceRepository) CountWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenantScope(tenantID)).
		Where("invoice_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

// NumberExists checks whether an invoice number is taken within a tenant
func (r *GormInvoiceRepository) NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenantScope(tenantID)).
		Where("invoice_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// NumbersWithPrefix returns the invoice numbers of a tenant starting with prefix
func (r *GormInvoiceRepository) NumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenantScope(tenantID)).
		Where("invoice_number LIKE ?", prefix+"%").
		Pluck("invoice_number", &numbers).Error
	return numbers, err
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)

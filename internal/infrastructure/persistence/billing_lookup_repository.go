package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByIDForTenant finds a service by ID within a tenant
func (r *GormServiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Service, error) {
	var model models.ServiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// GormCustomerPriceRepository implements CustomerPriceRepository using GORM
type GormCustomerPriceRepository struct {
	db *gorm.DB
}

// NewGormCustomerPriceRepository creates a new GormCustomerPriceRepository
func NewGormCustomerPriceRepository(db *gorm.DB) *GormCustomerPriceRepository {
	return &GormCustomerPriceRepository{db: db}
}

// Find returns the negotiated price of a service for a customer, or nil if none
func (r *GormCustomerPriceRepository) Find(ctx context.Context, tenantID, customerID, serviceID uuid.UUID) (*billing.CustomerPrice, error) {
	var model models.CustomerPriceModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("customer_id = ? AND service_id = ?", customerID, serviceID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormTenantSettingsRepository implements TenantSettingsRepository using GORM
type GormTenantSettingsRepository struct {
	db *gorm.DB
}

// NewGormTenantSettingsRepository creates a new GormTenantSettingsRepository
func NewGormTenantSettingsRepository(db *gorm.DB) *GormTenantSettingsRepository {
	return &GormTenantSettingsRepository{db: db}
}

// FindByTenant returns the settings of a tenant, or nil if none are stored
func (r *GormTenantSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*billing.TenantSettings, error) {
	var model models.TenantSettingsModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
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
	_ billing.ServiceRepository        = (*GormServiceRepository)(nil)
	_ billing.CustomerRepository       = (*GormCustomerRepository)(nil)
	_ billing.CustomerPriceRepository  = (*GormCustomerPriceRepository)(nil)
	_ billing.TenantSettingsRepository = (*GormTenantSettingsRepository)(nil)
)

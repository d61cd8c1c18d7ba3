package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerAccountRepository implements LedgerAccountRepository using GORM
type GormLedgerAccountRepository struct {
	db *gorm.DB
}

// NewGormLedgerAccountRepository creates a new GormLedgerAccountRepository
func NewGormLedgerAccountRepository(db *gorm.DB) *GormLedgerAccountRepository {
	return &GormLedgerAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormLedgerAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.LedgerAccount, error) {
	var model models.LedgerAccountModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns every account of a tenant ordered by code
func (r *GormLedgerAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]finance.LedgerAccount, error) {
	var rows []models.LedgerAccountModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]finance.LedgerAccount, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormLedgerAccountRepository) Save(ctx context.Context, a *finance.LedgerAccount) error {
	return r.db.WithContext(ctx).Save(models.LedgerAccountModelFromDomain(a)).Error
}

// Ensure GormLedgerAccountRepository implements LedgerAccountRepository
var _ finance.LedgerAccountRepository = (*GormLedgerAccountRepository)(nil)

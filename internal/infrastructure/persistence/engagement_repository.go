package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEngagementRepository implements EngagementRepository using GORM
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new GormEngagementRepository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// FindByIDForTenant finds an engagement by ID within a tenant
func (r *GormEngagementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*engagement.Engagement, error) {
	var model models.EngagementModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates an engagement
func (r *GormEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	return r.db.WithContext(ctx).Save(models.EngagementModelFromDomain(e)).Error
}

// Ensure GormEngagementRepository implements EngagementRepository
var _ engagement.EngagementRepository = (*GormEngagementRepository)(nil)

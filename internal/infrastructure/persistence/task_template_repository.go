package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaskTemplateRepository implements TaskTemplateRepository using GORM
type GormTaskTemplateRepository struct {
	db *gorm.DB
}

// NewGormTaskTemplateRepository creates a new GormTaskTemplateRepository
func NewGormTaskTemplateRepository(db *gorm.DB) *GormTaskTemplateRepository {
	return &GormTaskTemplateRepository{db: db}
}

// FindByService returns the templates of a service ordered by sort order
func (r *GormTaskTemplateRepository) FindByService(ctx context.Context, tenantID, serviceID uuid.UUID) ([]engagement.TaskTemplate, error) {
	var rows []models.TaskTemplateModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("service_id = ?", serviceID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	templates := make([]engagement.TaskTemplate, len(rows))
	for i := range rows {
		templates[i] = rows[i].ToDomain()
	}
	return templates, nil
}

// Create inserts a template
func (r *GormTaskTemplateRepository) Create(ctx context.Context, t engagement.TaskTemplate) error {
	return r.db.WithContext(ctx).Create(models.TaskTemplateModelFromDomain(t)).Error
}

// GormTaskConfigRepository implements TaskConfigRepository using GORM
type GormTaskConfigRepository struct {
	db *gorm.DB
}

// NewGormTaskConfigRepository creates a new GormTaskConfigRepository
func NewGormTaskConfigRepository(db *gorm.DB) *GormTaskConfigRepository {
	return &GormTaskConfigRepository{db: db}
}

// FindByEngagement returns the template overrides of an engagement
func (r *GormTaskConfigRepository) FindByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) ([]engagement.TaskConfig, error) {
	var rows []models.TaskConfigModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ?", engagementID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	configs := make([]engagement.TaskConfig, len(rows))
	for i := range rows {
		configs[i] = rows[i].ToDomain()
	}
	return configs, nil
}

// Create inserts an override
func (r *GormTaskConfigRepository) Create(ctx context.Context, c engagement.TaskConfig) error {
	return r.db.WithContext(ctx).Create(models.TaskConfigModelFromDomain(c)).Error
}

var (
	_ engagement.TaskTemplateRepository = (*GormTaskTemplateRepository)(nil)
	_ engagement.TaskConfigRepository   = (*GormTaskConfigRepository)(nil)
)

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPeriodRepository implements PeriodRepository using GORM
type GormPeriodRepository struct {
	db *gorm.DB
}

// NewGormPeriodRepository creates a new GormPeriodRepository
func NewGormPeriodRepository(db *gorm.DB) *GormPeriodRepository {
	return &GormPeriodRepository{db: db}
}

// FindByIDForTenant finds a period by ID within a tenant
func (r *GormPeriodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*engagement.Period, error) {
	var model models.PeriodModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEngagement returns the periods of an engagement ordered by start date
func (r *GormPeriodRepository) FindByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) ([]engagement.Period, error) {
	var rows []models.PeriodModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ?", engagementID).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	periods := make([]engagement.Period, len(rows))
	for i := range rows {
		periods[i] = *rows[i].ToDomain()
	}
	return periods, nil
}

// FindByStartDate returns the period starting on the given day, or nil if none
func (r *GormPeriodRepository) FindByStartDate(ctx context.Context, tenantID, engagementID uuid.UUID, start time.Time) (*engagement.Period, error) {
	var model models.PeriodModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ? AND start_date = ?", engagementID, calendar.Truncate(start)).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a period; the (engagement_id, start_date) key turns a duplicate into a no-op
func (r *GormPeriodRepository) Create(ctx context.Context, p *engagement.Period) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.PeriodModelFromDomain(p))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Save updates a period
func (r *GormPeriodRepository) Save(ctx context.Context, p *engagement.Period) error {
	return r.db.WithContext(ctx).Save(models.PeriodModelFromDomain(p)).Error
}

// DeleteByEngagement deletes every period of an engagement
func (r *GormPeriodRepository) DeleteByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ?", engagementID).
		Delete(&models.PeriodModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormPeriodRepository implements PeriodRepository
var _ engagement.PeriodRepository = (*GormPeriodRepository)(nil)

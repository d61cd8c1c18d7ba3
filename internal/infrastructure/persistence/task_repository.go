package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByIDForTenant finds a task by ID within a tenant
func (r *GormTaskRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*engagement.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEngagement returns every task of an engagement ordered by due date and sort order
func (r *GormTaskRepository) FindByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) ([]engagement.Task, error) {
	var rows []models.TaskModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ?", engagementID).
		Order("due_date ASC, sort_order ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]engagement.Task, len(rows))
	for i := range rows {
		tasks[i] = *rows[i].ToDomain()
	}
	return tasks, nil
}

// ExistsByKey checks whether a task already exists for the generation key
func (r *GormTaskRepository) ExistsByKey(ctx context.Context, tenantID uuid.UUID, key engagement.TaskKey) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ? AND task_template_id = ? AND occurrence_start = ?",
			key.EngagementID, key.TaskTemplateID, key.OccurrenceStart)
	if key.PeriodID != nil {
		query = query.Where("period_id = ?", *key.PeriodID)
	} else {
		query = query.Where("period_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateIfAbsent inserts the task; the composite task key turns a duplicate into a no-op
func (r *GormTaskRepository) CreateIfAbsent(ctx context.Context, t *engagement.Task) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.TaskModelFromDomain(t))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Save updates a task
func (r *GormTaskRepository) Save(ctx context.Context, t *engagement.Task) error {
	return r.db.WithContext(ctx).Save(models.TaskModelFromDomain(t)).Error
}

type taskCountRow struct {
	Total     int
	Started   int
	Completed int
}

func (r *GormTaskRepository) count(query *gorm.DB) (engagement.TaskCounts, error) {
	var row taskCountRow
	err := query.Model(&models.TaskModel{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS started, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed",
			engagement.TaskStatusInProgress, engagement.TaskStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return engagement.TaskCounts{}, err
	}
	return engagement.TaskCounts{Total: row.Total, Started: row.Started, Completed: row.Completed}, nil
}

// CountByPeriod counts the tasks of a period by status
func (r *GormTaskRepository) CountByPeriod(ctx context.Context, tenantID, periodID uuid.UUID) (engagement.TaskCounts, error) {
	return r.count(r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("period_id = ?", periodID))
}

// CountOneOff counts the period-less tasks of an engagement by status
func (r *GormTaskRepository) CountOneOff(ctx context.Context, tenantID, engagementID uuid.UUID) (engagement.TaskCounts, error) {
	return r.count(r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ? AND period_id IS NULL", engagementID))
}

// DeleteByEngagement deletes every task of an engagement
func (r *GormTaskRepository) DeleteByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("engagement_id = ?", engagementID).
		Delete(&models.TaskModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormTaskRepository implements TaskRepository
var _ engagement.TaskRepository = (*GormTaskRepository)(nil)

package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EngagementRepository defines the interface for engagement persistence
type EngagementRepository interface {
	// FindByIDForTenant finds an engagement by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Engagement, error)

	// Save creates or updates an engagement
	Save(ctx context.Context, e *Engagement) error
}

// TaskTemplateRepository reads the checklist templates of a service
type TaskTemplateRepository interface {
	// FindByService returns the templates of a service ordered by sort order
	FindByService(ctx context.Context, tenantID, serviceID uuid.UUID) ([]TaskTemplate, error)
}

// TaskConfigRepository reads per-engagement template overrides
type TaskConfigRepository interface {
	FindByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) ([]TaskConfig, error)
}

// PeriodRepository defines the interface for period persistence
type PeriodRepository interface {
	// FindByIDForTenant finds a period by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Period, error)

	// FindByEngagement returns the periods of an engagement ordered by start date
	FindByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) ([]Period, error)

	// FindByStartDate returns the period of an engagement starting on the given day, or nil if none
	FindByStartDate(ctx context.Context, tenantID, engagementID uuid.UUID, start time.Time) (*Period, error)

	// Create inserts a period unless one already exists for (engagement, start date).
	// Returns false if it already existed.
	Create(ctx context.Context, p *Period) (bool, error)

	// Save updates a period
	Save(ctx context.Context, p *Period) error

	// DeleteByEngagement deletes every period of an engagement
	DeleteByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) (int64, error)
}

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	// FindByIDForTenant finds a task by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Task, error)

	// FindByEngagement returns every task of an engagement ordered by due date and sort order
	FindByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) ([]Task, error)

	// ExistsByKey checks whether a task already exists for the generation key
	ExistsByKey(ctx context.Context, tenantID uuid.UUID, key TaskKey) (bool, error)

	// CreateIfAbsent inserts the task unless its key is taken. Returns false if it was.
	CreateIfAbsent(ctx context.Context, t *Task) (bool, error)

	// Save updates a task
	Save(ctx context.Context, t *Task) error

	// CountByPeriod counts the tasks of a period by status
	CountByPeriod(ctx context.Context, tenantID, periodID uuid.UUID) (TaskCounts, error)

	// CountOneOff counts the period-less tasks of an engagement by status
	CountOneOff(ctx context.Context, tenantID, engagementID uuid.UUID) (TaskCounts, error)

	// DeleteByEngagement deletes every task of an engagement
	DeleteByEngagement(ctx context.Context, tenantID, engagementID uuid.UUID) (int64, error)
}

package practice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ChangeTaskStatusCommand moves a task to another status
type ChangeTaskStatusCommand struct {
	TenantID uuid.UUID
	TaskID   uuid.UUID
	Status   engagement.TaskStatus
	At       time.Time
}

// ChangeEngagementStatusCommand moves an engagement to another status
type ChangeEngagementStatusCommand struct {
	TenantID     uuid.UUID
	EngagementID uuid.UUID
	Status       engagement.Status
	At           time.Time
}

// StatusService applies task and engagement status changes and rolls task progress up
// to the owning period or one-off engagement. Resulting domain events are published in
// the same transaction.
type StatusService struct {
	scope     uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(scope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		scope:     scope,
		publisher: publisher,
		logger:    logger,
	}
}

// ChangeTaskStatus updates a task and refreshes its period or one-off engagement
func (s *StatusService) ChangeTaskStatus(ctx context.Context, cmd ChangeTaskStatusCommand) (*engagement.Task, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "change_status",
		telemetry.WithAttribute("task_id", cmd.TaskID.String()),
		telemetry.WithAttribute("status", string(cmd.Status)),
	)
	defer span.End()

	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	var task *engagement.Task
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		task, err = repos.Tasks().FindByIDForTenant(ctx, cmd.TenantID, cmd.TaskID)
		if err != nil {
			return err
		}
		if err := task.ChangeStatus(cmd.Status, at); err != nil {
			return err
		}
		if err := repos.Tasks().Save(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		events := task.PullDomainEvents()
		rolled, err := s.rollUp(ctx, repos, task, at)
		if err != nil {
			return err
		}
		events = append(events, rolled...)

		return s.publish(ctx, events)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("task status changed",
		zap.String("task_id", task.ID.String()),
		zap.String("engagement_id", task.EngagementID.String()),
		zap.String("status", string(task.Status)),
	)
	return task, nil
}

// rollUp refreshes the period of a recurring task, or the status of a one-off engagement
func (s *StatusService) rollUp(ctx context.Context, repos uow.Repositories, task *engagement.Task, at time.Time) ([]shared.DomainEvent, error) {
	if task.PeriodID != nil {
		period, err := repos.Periods().FindByIDForTenant(ctx, task.TenantID, *task.PeriodID)
		if err != nil {
			return nil, fmt.Errorf("failed to load period: %w", err)
		}
		counts, err := repos.Tasks().CountByPeriod(ctx, task.TenantID, period.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count period tasks: %w", err)
		}
		if period.Refresh(counts, at) {
			if err := repos.Periods().Save(ctx, period); err != nil {
				return nil, fmt.Errorf("failed to save period: %w", err)
			}
		}
		return period.PullDomainEvents(), nil
	}

	eng, err := repos.Engagements().FindByIDForTenant(ctx, task.TenantID, task.EngagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load engagement: %w", err)
	}
	counts, err := repos.Tasks().CountOneOff(ctx, task.TenantID, eng.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count engagement tasks: %w", err)
	}

	target := eng.Status
	switch counts.Status() {
	case engagement.PeriodStatusCompleted:
		target = engagement.StatusCompleted
	case engagement.PeriodStatusInProgress:
		target = engagement.StatusInProgress
	case engagement.PeriodStatusPending:
		if eng.Status == engagement.StatusCompleted {
			target = engagement.StatusInProgress
		}
	}
	if eng.Status == engagement.StatusCancelled || target == eng.Status {
		return nil, nil
	}

	if err := eng.ChangeStatus(target, at); err != nil {
		return nil, err
	}
	if err := repos.Engagements().Save(ctx, eng); err != nil {
		return nil, fmt.Errorf("failed to save engagement: %w", err)
	}
	return eng.PullDomainEvents(), nil
}

// ChangeEngagementStatus updates an engagement status directly
func (s *StatusService) ChangeEngagementStatus(ctx context.Context, cmd ChangeEngagementStatusCommand) (*engagement.Engagement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "engagement", "change_status",
		telemetry.WithAttribute("engagement_id", cmd.EngagementID.String()),
		telemetry.WithAttribute("status", string(cmd.Status)),
	)
	defer span.End()

	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	var eng *engagement.Engagement
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		eng, err = repos.Engagements().FindByIDForTenant(ctx, cmd.TenantID, cmd.EngagementID)
		if err != nil {
			return err
		}
		if err := eng.ChangeStatus(cmd.Status, at); err != nil {
			return err
		}
		if err := repos.Engagements().Save(ctx, eng); err != nil {
			return fmt.Errorf("failed to save engagement: %w", err)
		}
		return s.publish(ctx, eng.PullDomainEvents())
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("engagement status changed",
		zap.String("engagement_id", eng.ID.String()),
		zap.String("status", string(eng.Status)),
	)
	return eng, nil
}

func (s *StatusService) publish(ctx context.Context, events []shared.DomainEvent) error {
	if len(events) == 0 || s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}
	return nil
}

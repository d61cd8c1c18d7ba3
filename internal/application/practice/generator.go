// Package practice materializes engagement periods and their task checklists, and rolls
// task progress up to periods and engagements.
package practice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/duedate"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// GeneratorConfig holds the generation policy
type GeneratorConfig struct {
	// Months to look back from the as-of date when an engagement has no start date
	LookbackMonths int
	// Future periods to materialize after the currently open one
	LookaheadPeriods int
	// Upper bound on how long one generation may hold the engagement lock
	LockTTL time.Duration
}

// DefaultGeneratorConfig returns the default generation policy
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		LookbackMonths:   12,
		LookaheadPeriods: 0,
		LockTTL:          30 * time.Second,
	}
}

// GenerateCommand asks for the periods and tasks of an engagement up to AsOf
type GenerateCommand struct {
	TenantID     uuid.UUID
	EngagementID uuid.UUID
	AsOf         time.Time
}

// GenerateResult reports what a generation run materialized
type GenerateResult struct {
	EngagementID   uuid.UUID `json:"engagement_id"`
	AsOf           time.Time `json:"as_of"`
	PeriodsCreated int       `json:"periods_created"`
	PeriodsTouched int       `json:"periods_touched"`
	TasksCreated   int       `json:"tasks_created"`
	TasksDeleted   int64     `json:"tasks_deleted,omitempty"`
	PeriodsDeleted int64     `json:"periods_deleted,omitempty"`
	SkippedPeriods int       `json:"skipped_periods"`
	InvalidRules   int       `json:"invalid_rules"`
}

// GeneratorService creates periods and tasks for engagements
type GeneratorService struct {
	scope     uow.TransactionScope
	lock      GenerationLock
	publisher shared.EventPublisher
	recorder  GenerationRecorder
	config    GeneratorConfig
	logger    *zap.Logger
}

// GeneratorOption configures a GeneratorService
type GeneratorOption func(*GeneratorService)

// WithGenerationRecorder sets the metrics recorder
func WithGenerationRecorder(r GenerationRecorder) GeneratorOption {
	return func(s *GeneratorService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewGeneratorService creates a new GeneratorService
func NewGeneratorService(
	scope uow.TransactionScope,
	lock GenerationLock,
	publisher shared.EventPublisher,
	config GeneratorConfig,
	logger *zap.Logger,
	opts ...GeneratorOption,
) *GeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultGeneratorConfig().LockTTL
	}
	s := &GeneratorService{
		scope:     scope,
		lock:      lock,
		publisher: publisher,
		recorder:  noopRecorder{},
		config:    config,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate materializes every elapsed or currently open period of the engagement up to
// cmd.AsOf, plus the configured lookahead, and the tasks of each. Re-running it never
// duplicates periods or tasks.
func (s *GeneratorService) Generate(ctx context.Context, cmd GenerateCommand) (*GenerateResult, error) {
	return s.run(ctx, cmd, false)
}

// Regenerate deletes every period and task of the engagement and generates them again
// for cmd.AsOf. Invoices linked to deleted periods are kept.
func (s *GeneratorService) Regenerate(ctx context.Context, cmd GenerateCommand) (*GenerateResult, error) {
	return s.run(ctx, cmd, true)
}

func (s *GeneratorService) run(ctx context.Context, cmd GenerateCommand, reset bool) (*GenerateResult, error) {
	if cmd.AsOf.IsZero() {
		return nil, shared.NewDomainError("INVALID_AS_OF", "As-of date is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "generator", "generate",
		telemetry.WithAttribute("engagement_id", cmd.EngagementID.String()),
		telemetry.WithAttribute("as_of", cmd.AsOf.Format(time.DateOnly)),
		telemetry.WithAttribute("reset", reset),
	)
	defer span.End()

	key := GenerationLockKey(cmd.TenantID, cmd.EngagementID)
	token, ok, err := s.lock.Acquire(ctx, key, s.config.LockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	if !ok {
		return nil, ErrGenerationInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("failed to release generation lock",
				zap.String("engagement_id", cmd.EngagementID.String()),
				zap.Error(err),
			)
		}
	}()

	result := &GenerateResult{EngagementID: cmd.EngagementID, AsOf: calendar.Truncate(cmd.AsOf)}
	err = s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if reset {
			if err := s.reset(ctx, repos, cmd, result); err != nil {
				return err
			}
		}
		return s.generate(ctx, repos, cmd, result)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		"periods_created", result.PeriodsCreated,
		"tasks_created", result.TasksCreated,
	)
	s.recorder.RecordGeneration(ctx, cmd.TenantID, result.PeriodsCreated, result.TasksCreated)
	s.logger.Info("generation completed",
		zap.String("engagement_id", cmd.EngagementID.String()),
		zap.Time("as_of", result.AsOf),
		zap.Bool("reset", reset),
		zap.Int("periods_created", result.PeriodsCreated),
		zap.Int("periods_touched", result.PeriodsTouched),
		zap.Int("tasks_created", result.TasksCreated),
	)
	return result, nil
}

func (s *GeneratorService) reset(ctx context.Context, repos uow.Repositories, cmd GenerateCommand, result *GenerateResult) error {
	tasks, err := repos.Tasks().DeleteByEngagement(ctx, cmd.TenantID, cmd.EngagementID)
	if err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	periods, err := repos.Periods().DeleteByEngagement(ctx, cmd.TenantID, cmd.EngagementID)
	if err != nil {
		return fmt.Errorf("failed to delete periods: %w", err)
	}
	result.TasksDeleted = tasks
	result.PeriodsDeleted = periods
	return nil
}

func (s *GeneratorService) generate(ctx context.Context, repos uow.Repositories, cmd GenerateCommand, result *GenerateResult) error {
	eng, err := repos.Engagements().FindByIDForTenant(ctx, cmd.TenantID, cmd.EngagementID)
	if err != nil {
		return err
	}
	if eng.Status == engagement.StatusCancelled {
		return shared.NewDomainError("ENGAGEMENT_CANCELLED", "Cancelled engagements are not generated")
	}

	tasks, err := s.effectiveTasks(ctx, repos, eng, result)
	if err != nil {
		return err
	}

	asOf := calendar.Truncate(cmd.AsOf)
	if !eng.IsRecurring() {
		return s.generateOneOff(ctx, repos, eng, tasks, asOf, result)
	}

	var events []shared.DomainEvent
	cal := eng.Calendar()
	for _, w := range s.candidateWindows(eng, cal, asOf) {
		plan := planPeriod(cal, w, tasks)
		if len(plan) == 0 {
			result.SkippedPeriods++
			continue
		}

		period, created, err := s.ensurePeriod(ctx, repos, eng, w)
		if err != nil {
			return err
		}
		if created {
			result.PeriodsCreated++
		}

		n, err := s.createTasks(ctx, repos, eng, &period.ID, plan)
		if err != nil {
			return err
		}
		result.TasksCreated += n

		counts, err := repos.Tasks().CountByPeriod(ctx, eng.TenantID, period.ID)
		if err != nil {
			return fmt.Errorf("failed to count tasks of period %s: %w", period.Name, err)
		}
		if period.Refresh(counts, time.Now().UTC()) || created {
			if err := repos.Periods().Save(ctx, period); err != nil {
				return fmt.Errorf("failed to save period %s: %w", period.Name, err)
			}
		}
		result.PeriodsTouched++
		events = append(events, period.PullDomainEvents()...)
	}

	if len(events) > 0 && s.publisher != nil {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			return fmt.Errorf("failed to publish period events: %w", err)
		}
	}
	return nil
}

// effectiveTasks merges the service templates with the engagement overrides once per
// template and drops rules that cannot be resolved
func (s *GeneratorService) effectiveTasks(ctx context.Context, repos uow.Repositories, eng *engagement.Engagement, result *GenerateResult) ([]engagement.EffectiveTask, error) {
	templates, err := repos.TaskTemplates().FindByService(ctx, eng.TenantID, eng.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task templates: %w", err)
	}
	configs, err := repos.TaskConfigs().FindByEngagement(ctx, eng.TenantID, eng.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task configs: %w", err)
	}

	merged := engagement.MergeAll(templates, configs)
	tasks := make([]engagement.EffectiveTask, 0, len(merged))
	for _, t := range merged {
		if err := t.Rule.Validate(); err != nil {
			result.InvalidRules++
			s.logger.Warn("skipping task template with invalid due-date rule",
				zap.String("engagement_id", eng.ID.String()),
				zap.String("template_id", t.TemplateID.String()),
				zap.Error(err),
			)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// candidateWindows returns the periods from the engagement start through the one open on
// asOf, followed by the configured lookahead, stopping after the engagement end date
func (s *GeneratorService) candidateWindows(eng *engagement.Engagement, cal calendar.Config, asOf time.Time) []calendar.Window {
	from := calendar.AddMonths(asOf, -s.config.LookbackMonths)
	if eng.StartDate != nil {
		from = calendar.Truncate(*eng.StartDate)
	}

	windows := cal.Between(from, asOf)
	if len(windows) > 0 {
		next := windows[len(windows)-1]
		for i := 0; i < s.config.LookaheadPeriods; i++ {
			next = cal.Next(next)
			windows = append(windows, next)
		}
	}

	if eng.EndDate == nil {
		return windows
	}
	end := calendar.Truncate(*eng.EndDate)
	for i, w := range windows {
		if w.Start.After(end) {
			return windows[:i]
		}
	}
	return windows
}

type plannedTask struct {
	task engagement.EffectiveTask
	occ  duedate.Occurrence
}

// planPeriod resolves every applicable task for a window; an empty plan means the
// period does not qualify
func planPeriod(cal calendar.Config, w calendar.Window, tasks []engagement.EffectiveTask) []plannedTask {
	var plan []plannedTask
	for _, t := range tasks {
		if !t.AppliesTo(w.End) {
			continue
		}
		for _, occ := range duedate.ResolveAll(t.Rule, cal, w) {
			// sub-intervals that end before the task starts are skipped
			if !t.AppliesTo(occ.Window.End) {
				continue
			}
			plan = append(plan, plannedTask{task: t, occ: occ})
		}
	}
	return plan
}

func (s *GeneratorService) ensurePeriod(ctx context.Context, repos uow.Repositories, eng *engagement.Engagement, w calendar.Window) (*engagement.Period, bool, error) {
	existing, err := repos.Periods().FindByStartDate(ctx, eng.TenantID, eng.ID, w.Start)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up period %s: %w", w.Name, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	period := engagement.NewPeriod(eng.TenantID, eng.ID, w)
	created, err := repos.Periods().Create(ctx, period)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create period %s: %w", w.Name, err)
	}
	if created {
		return period, true, nil
	}

	// lost a race against a concurrent insert
	existing, err = repos.Periods().FindByStartDate(ctx, eng.TenantID, eng.ID, w.Start)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload period %s: %w", w.Name, err)
	}
	if existing == nil {
		return nil, false, fmt.Errorf("period %s neither created nor found", w.Name)
	}
	return existing, false, nil
}

func (s *GeneratorService) createTasks(ctx context.Context, repos uow.Repositories, eng *engagement.Engagement, periodID *uuid.UUID, plan []plannedTask) (int, error) {
	created := 0
	for _, p := range plan {
		task := engagement.NewTask(eng.TenantID, eng.ID, periodID, p.task, p.occ)

		exists, err := repos.Tasks().ExistsByKey(ctx, eng.TenantID, task.Key())
		if err != nil {
			return created, fmt.Errorf("failed to check existing task: %w", err)
		}
		if exists {
			continue
		}

		ok, err := repos.Tasks().CreateIfAbsent(ctx, task)
		if err != nil {
			return created, fmt.Errorf("failed to create task %q: %w", task.Title, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *GeneratorService) generateOneOff(ctx context.Context, repos uow.Repositories, eng *engagement.Engagement, tasks []engagement.EffectiveTask, asOf time.Time, result *GenerateResult) error {
	w := eng.OneOffWindow(asOf)
	plan := planPeriod(calendar.Config{Granularity: calendar.GranularityNone}, w, tasks)
	n, err := s.createTasks(ctx, repos, eng, nil, plan)
	if err != nil {
		return err
	}
	result.TasksCreated += n
	return nil
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReversionPolicy decides what happens to a generated invoice when its period or
// engagement is reopened
type ReversionPolicy string

const (
	// ReversionOrphan leaves the invoice in place for manual handling
	ReversionOrphan ReversionPolicy = "orphan"
	// ReversionDeleteDraft deletes the invoice if it is still a draft
	ReversionDeleteDraft ReversionPolicy = "delete_draft"
)

// IsValid checks if the policy is known
func (p ReversionPolicy) IsValid() bool {
	return p == ReversionOrphan || p == ReversionDeleteDraft
}

// AutoCreatorConfig holds the invoice auto-creation policy
type AutoCreatorConfig struct {
	ReversionPolicy     ReversionPolicy
	DefaultPaymentTerms billing.PaymentTerms
}

// AutoCreator creates draft invoices when a period or one-off engagement completes and
// clears the billed state when it is reopened. Missing prerequisites are logged and
// skipped so the triggering status change always goes through.
type AutoCreator struct {
	scope  uow.TransactionScope
	config AutoCreatorConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAutoCreator creates a new AutoCreator
func NewAutoCreator(scope uow.TransactionScope, config AutoCreatorConfig, logger *zap.Logger) *AutoCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !config.ReversionPolicy.IsValid() {
		config.ReversionPolicy = ReversionOrphan
	}
	if !config.DefaultPaymentTerms.IsValid() {
		config.DefaultPaymentTerms = billing.PaymentTermsNet30
	}
	return &AutoCreator{
		scope:  scope,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AutoCreator) EventTypes() []string {
	return []string{
		engagement.EventTypePeriodCompleted,
		engagement.EventTypeEngagementCompleted,
		engagement.EventTypeTaskReopened,
		engagement.EventTypeEngagementReopened,
	}
}

// Handle dispatches completion and reopen events
func (h *AutoCreator) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *engagement.PeriodCompletedEvent:
		return h.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			return h.billPeriod(ctx, repos, evt)
		})
	case *engagement.EngagementCompletedEvent:
		return h.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			return h.billEngagement(ctx, repos, evt)
		})
	case *engagement.TaskReopenedEvent:
		return h.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			if evt.PeriodID != nil {
				return h.revertPeriod(ctx, repos, evt.TenantID(), *evt.PeriodID)
			}
			return h.revertEngagement(ctx, repos, evt.TenantID(), evt.EngagementID)
		})
	case *engagement.EngagementReopenedEvent:
		return h.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			return h.revertEngagement(ctx, repos, evt.TenantID(), evt.EngagementID)
		})
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *AutoCreator) billPeriod(ctx context.Context, repos uow.Repositories, evt *engagement.PeriodCompletedEvent) error {
	period, err := repos.Periods().FindByIDForTenant(ctx, evt.TenantID(), evt.PeriodID)
	if err != nil {
		return fmt.Errorf("failed to load period: %w", err)
	}
	eng, err := repos.Engagements().FindByIDForTenant(ctx, evt.TenantID(), period.EngagementID)
	if err != nil {
		return fmt.Errorf("failed to load engagement: %w", err)
	}

	log := h.logger.With(
		zap.String("engagement_id", eng.ID.String()),
		zap.String("period_id", period.ID.String()),
		zap.String("period", period.Name),
	)
	switch {
	case !eng.AutoBill:
		log.Debug("auto-bill disabled, skipping invoice")
		return nil
	case period.InvoiceGenerated:
		log.Info("invoice already generated for period, skipping")
		return nil
	case !period.IsCompleted():
		log.Info("period no longer completed, skipping invoice")
		return nil
	}

	inv, err := h.createInvoice(ctx, repos, eng, period, evt.At, log)
	if err != nil || inv == nil {
		return err
	}

	period.MarkBilled(inv.ID)
	if err := repos.Periods().Save(ctx, period); err != nil {
		return fmt.Errorf("failed to mark period billed: %w", err)
	}
	return nil
}

func (h *AutoCreator) billEngagement(ctx context.Context, repos uow.Repositories, evt *engagement.EngagementCompletedEvent) error {
	eng, err := repos.Engagements().FindByIDForTenant(ctx, evt.TenantID(), evt.EngagementID)
	if err != nil {
		return fmt.Errorf("failed to load engagement: %w", err)
	}

	log := h.logger.With(zap.String("engagement_id", eng.ID.String()))
	switch {
	case eng.IsRecurring():
		log.Debug("recurring engagements are billed per period, skipping invoice")
		return nil
	case !eng.AutoBill:
		log.Debug("auto-bill disabled, skipping invoice")
		return nil
	case eng.InvoiceGenerated:
		log.Info("invoice already generated for engagement, skipping")
		return nil
	}

	inv, err := h.createInvoice(ctx, repos, eng, nil, evt.At, log)
	if err != nil || inv == nil {
		return err
	}

	eng.MarkBilled(inv.ID)
	if err := repos.Engagements().Save(ctx, eng); err != nil {
		return fmt.Errorf("failed to mark engagement billed: %w", err)
	}
	return nil
}

// createInvoice issues the invoice on the day of completedAt. It returns nil without
// error when a prerequisite is missing.
func (h *AutoCreator) createInvoice(
	ctx context.Context,
	repos uow.Repositories,
	eng *engagement.Engagement,
	period *engagement.Period,
	completedAt time.Time,
	log *zap.Logger,
) (*billing.Invoice, error) {
	resolver := NewResolver(repos)

	amount, err := resolver.ResolveAmount(ctx, eng, period)
	if errors.Is(err, billing.ErrNoValidPrice) {
		log.Warn("no valid price, invoice not created", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		log.Info("resolved amount is not positive, invoice not created", zap.String("amount", amount.String()))
		return nil, nil
	}

	accounts, err := resolver.ResolveLedgerAccounts(ctx, eng)
	if errors.Is(err, billing.ErrIncomeAccountUnmapped) {
		log.Warn("income account unmapped, invoice not created", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	terms, svc, err := resolver.ResolvePaymentTerms(ctx, eng, h.config.DefaultPaymentTerms)
	if err != nil {
		return nil, err
	}

	if completedAt.IsZero() {
		completedAt = h.now()
	}
	issueDate := calendar.Truncate(completedAt)
	number, err := resolver.ResolveInvoiceNumber(ctx, eng.TenantID, issueDate)
	if err != nil {
		return nil, err
	}

	engagementID := eng.ID
	serviceID := eng.ServiceID
	draft := billing.DraftInvoice{
		Number:            number,
		CustomerID:        eng.CustomerID,
		EngagementID:      &engagementID,
		IssueDate:         issueDate,
		PaymentTerms:      terms,
		Description:       invoiceDescription(svc, eng, period),
		ServiceID:         &serviceID,
		Amount:            amount,
		TaxRate:           taxRate(svc),
		IncomeAccountID:   accounts.IncomeAccountID,
		CustomerAccountID: accounts.CustomerAccountID,
	}
	if period != nil {
		periodID := period.ID
		draft.PeriodID = &periodID
	}

	inv, err := billing.NewDraftInvoice(eng.TenantID, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice: %w", err)
	}
	if err := repos.Invoices().Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	log.Info("draft invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total", inv.Total.String()),
	)
	return inv, nil
}

func (h *AutoCreator) revertPeriod(ctx context.Context, repos uow.Repositories, tenantID, periodID uuid.UUID) error {
	period, err := repos.Periods().FindByIDForTenant(ctx, tenantID, periodID)
	if err != nil {
		return fmt.Errorf("failed to load period: %w", err)
	}
	if !period.InvoiceGenerated && !period.IsBilled {
		return nil
	}

	period.ResetBilling()
	discarded, err := h.discardDraft(ctx, repos, tenantID, period.InvoiceID)
	if err != nil {
		return err
	}
	if discarded {
		period.InvoiceID = nil
	}
	if err := repos.Periods().Save(ctx, period); err != nil {
		return fmt.Errorf("failed to reset period billing: %w", err)
	}

	h.logger.Info("period billing reset",
		zap.String("period_id", period.ID.String()),
		zap.String("policy", string(h.config.ReversionPolicy)),
	)
	return nil
}

func (h *AutoCreator) revertEngagement(ctx context.Context, repos uow.Repositories, tenantID, engagementID uuid.UUID) error {
	eng, err := repos.Engagements().FindByIDForTenant(ctx, tenantID, engagementID)
	if err != nil {
		return fmt.Errorf("failed to load engagement: %w", err)
	}
	if !eng.InvoiceGenerated && !eng.IsBilled {
		return nil
	}

	eng.ResetBilling()
	discarded, err := h.discardDraft(ctx, repos, tenantID, eng.InvoiceID)
	if err != nil {
		return err
	}
	if discarded {
		eng.InvoiceID = nil
	}
	if err := repos.Engagements().Save(ctx, eng); err != nil {
		return fmt.Errorf("failed to reset engagement billing: %w", err)
	}

	h.logger.Info("engagement billing reset",
		zap.String("engagement_id", eng.ID.String()),
		zap.String("policy", string(h.config.ReversionPolicy)),
	)
	return nil
}

// discardDraft deletes the invoice under the delete_draft policy when it is still a
// draft. Returns true if the invoice is gone.
func (h *AutoCreator) discardDraft(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, invoiceID *uuid.UUID) (bool, error) {
	if h.config.ReversionPolicy != ReversionDeleteDraft || invoiceID == nil {
		return false, nil
	}

	inv, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, *invoiceID)
	if errors.Is(err, shared.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load invoice for reversion: %w", err)
	}
	if inv.Status != billing.InvoiceStatusDraft {
		h.logger.Info("invoice is no longer a draft, leaving it in place",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("status", string(inv.Status)),
		)
		return false, nil
	}
	if err := repos.Invoices().Delete(ctx, tenantID, inv.ID); err != nil {
		return false, fmt.Errorf("failed to delete draft invoice: %w", err)
	}
	return true, nil
}

func taxRate(svc *billing.Service) decimal.Decimal {
	if svc == nil {
		return decimal.Zero
	}
	return svc.TaxRate
}

func invoiceDescription(svc *billing.Service, eng *engagement.Engagement, period *engagement.Period) string {
	name := eng.Name
	if svc != nil && svc.Name != "" {
		name = svc.Name
	}
	if period == nil {
		return name
	}
	return name + " - " + period.Name
}

// Ensure AutoCreator implements EventHandler
var _ shared.EventHandler = (*AutoCreator)(nil)

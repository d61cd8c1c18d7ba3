package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ChangeInvoiceStatusCommand moves an invoice to another status
type ChangeInvoiceStatusCommand struct {
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	Status    billing.InvoiceStatus
	At        time.Time
}

// InvoiceService applies invoice status changes; ledger effects follow from the
// published InvoiceStatusChanged event inside the same transaction
type InvoiceService struct {
	scope     uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		scope:     scope,
		publisher: publisher,
		logger:    logger,
	}
}

// ChangeStatus validates and applies an invoice status transition
func (s *InvoiceService) ChangeStatus(ctx context.Context, cmd ChangeInvoiceStatusCommand) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "change_status",
		telemetry.WithAttribute("invoice_id", cmd.InvoiceID.String()),
		telemetry.WithAttribute("status", string(cmd.Status)),
	)
	defer span.End()

	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	var inv *billing.Invoice
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		inv, err = repos.Invoices().FindByIDForTenant(ctx, cmd.TenantID, cmd.InvoiceID)
		if err != nil {
			return err
		}
		from := inv.Status
		if err := inv.ChangeStatus(cmd.Status, at); err != nil {
			return err
		}
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		events := inv.PullDomainEvents()
		if len(events) > 0 && s.publisher != nil {
			if err := s.publisher.Publish(ctx, events...); err != nil {
				return fmt.Errorf("failed to publish invoice events: %w", err)
			}
		}

		s.logger.Info("invoice status changed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.String("from", string(from)),
			zap.String("to", string(inv.Status)),
		)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return inv, nil
}

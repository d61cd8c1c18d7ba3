package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default number prefixes for voucher types that have none configured
var defaultVoucherPrefixes = map[finance.VoucherTypeCode]string{
	finance.VoucherTypeReceipt: "RV",
	finance.VoucherTypeJournal: "JV",
	finance.VoucherTypePayment: "PV",
}

// NextVoucherNumber returns prefix-NNNNN for the next voucher of a type. The count
// of existing vouchers gives the candidate; once deletions leave gaps the candidate
// may be taken, and numbering continues past the highest issued sequence.
func NextVoucherNumber(ctx context.Context, repos uow.Repositories, vt finance.VoucherType) (string, error) {
	count, err := repos.Vouchers().CountByType(ctx, vt.TenantID, vt.ID)
	if err != nil {
		return "", fmt.Errorf("failed to count vouchers: %w", err)
	}
	prefix := vt.Prefix
	if prefix == "" {
		prefix = defaultVoucherPrefixes[vt.Code]
	}

	candidate := finance.FormatVoucherNumber(prefix, count+1)
	taken, err := repos.Vouchers().NumberExists(ctx, vt.TenantID, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check voucher number: %w", err)
	}
	if !taken {
		return candidate, nil
	}

	numbers, err := repos.Vouchers().NumbersWithPrefix(ctx, vt.TenantID, prefix+"-")
	if err != nil {
		return "", fmt.Errorf("failed to list voucher numbers: %w", err)
	}
	var highest int64
	for _, n := range numbers {
		if seq, ok := finance.VoucherSequence(prefix, n); ok && seq > highest {
			highest = seq
		}
	}
	return finance.FormatVoucherNumber(prefix, highest+1), nil
}

// JournalEntryInput is one line of a journal voucher
type JournalEntryInput struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Narration string
}

// CreateJournalCommand creates a draft journal voucher
type CreateJournalCommand struct {
	TenantID  uuid.UUID
	Date      time.Time
	Narration string
	Entries   []JournalEntryInput
}

// ChangeVoucherStatusCommand moves a voucher to another status
type ChangeVoucherStatusCommand struct {
	TenantID  uuid.UUID
	VoucherID uuid.UUID
	Status    finance.VoucherStatus
	At        time.Time
}

// VoucherService manages manual vouchers. Ledger effects follow from the
// VoucherStatusChanged events it publishes.
type VoucherService struct {
	scope     uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(scope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *VoucherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherService{
		scope:     scope,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateJournal creates a balanced draft journal voucher
func (s *VoucherService) CreateJournal(ctx context.Context, cmd CreateJournalCommand) (*finance.Voucher, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "create_journal",
		telemetry.WithAttribute("entries", len(cmd.Entries)),
	)
	defer span.End()

	var voucher *finance.Voucher
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		vt, err := repos.VoucherTypes().FindByCode(ctx, cmd.TenantID, finance.VoucherTypeJournal)
		if err != nil {
			return fmt.Errorf("failed to load journal voucher type: %w", err)
		}
		if vt == nil {
			return finance.ErrVoucherTypeMissing
		}

		number, err := NextVoucherNumber(ctx, repos, *vt)
		if err != nil {
			return err
		}
		voucher, err = finance.NewVoucher(cmd.TenantID, *vt, number, cmd.Date, cmd.Narration)
		if err != nil {
			return err
		}

		for _, e := range cmd.Entries {
			if _, err := repos.LedgerAccounts().FindByIDForTenant(ctx, cmd.TenantID, e.AccountID); err != nil {
				return fmt.Errorf("account %s: %w", e.AccountID, err)
			}
			if err := voucher.AddEntry(e.AccountID, e.Debit, e.Credit, e.Narration); err != nil {
				return err
			}
		}
		if err := voucher.Validate(); err != nil {
			return err
		}

		if err := repos.Vouchers().Create(ctx, voucher); err != nil {
			return fmt.Errorf("failed to save voucher: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("journal voucher created",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("voucher_number", voucher.VoucherNumber),
		zap.Int("entries", len(voucher.Entries)),
	)
	return voucher, nil
}

// ChangeStatus validates and applies a voucher status transition
func (s *VoucherService) ChangeStatus(ctx context.Context, cmd ChangeVoucherStatusCommand) (*finance.Voucher, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "change_status",
		telemetry.WithAttribute("voucher_id", cmd.VoucherID.String()),
		telemetry.WithAttribute("status", string(cmd.Status)),
	)
	defer span.End()

	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	var voucher *finance.Voucher
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		voucher, err = repos.Vouchers().FindByIDForTenant(ctx, cmd.TenantID, cmd.VoucherID)
		if err != nil {
			return err
		}
		from := voucher.Status
		if err := voucher.ChangeStatus(cmd.Status, at); err != nil {
			return err
		}
		if err := repos.Vouchers().Save(ctx, voucher); err != nil {
			return fmt.Errorf("failed to save voucher: %w", err)
		}

		events := voucher.PullDomainEvents()
		if len(events) > 0 && s.publisher != nil {
			if err := s.publisher.Publish(ctx, events...); err != nil {
				return fmt.Errorf("failed to publish voucher events: %w", err)
			}
		}

		s.logger.Info("voucher status changed",
			zap.String("voucher_id", voucher.ID.String()),
			zap.String("voucher_number", voucher.VoucherNumber),
			zap.String("from", string(from)),
			zap.String("to", string(voucher.Status)),
		)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return voucher, nil
}

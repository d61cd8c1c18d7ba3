// Package finance turns invoice and voucher status changes into ledger postings and
// reconciles account balances against their history.
package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/billing"
	"github.com/practice/backend/internal/domain/calendar"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/domain/shared"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostingRecorder receives posting outcomes for metrics
type PostingRecorder interface {
	RecordPosting(ctx context.Context, tenantID uuid.UUID, source string, legs int)
	RecordReversal(ctx context.Context, tenantID uuid.UUID, source string, legs int64)
}

type noopRecorder struct{}

func (noopRecorder) RecordPosting(context.Context, uuid.UUID, string, int)    {}
func (noopRecorder) RecordReversal(context.Context, uuid.UUID, string, int64) {}

// PostingService is the ledger posting state machine. It reacts to invoice and voucher
// status changes by posting or reversing balanced ledger transactions, and keeps one
// posted receipt voucher per paid invoice.
type PostingService struct {
	scope    uow.TransactionScope
	recorder PostingRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// PostingOption configures a PostingService
type PostingOption func(*PostingService)

// WithPostingRecorder sets the metrics recorder
func WithPostingRecorder(r PostingRecorder) PostingOption {
	return func(s *PostingService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewPostingService creates a new PostingService
func NewPostingService(scope uow.TransactionScope, logger *zap.Logger, opts ...PostingOption) *PostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PostingService{
		scope:    scope,
		recorder: noopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EventTypes returns the event types this handler is interested in
func (s *PostingService) EventTypes() []string {
	return []string{billing.EventTypeInvoiceStatusChanged, finance.EventTypeVoucherStatusChanged}
}

// Handle dispatches invoice and voucher status changes
func (s *PostingService) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *billing.InvoiceStatusChangedEvent:
		ctx, span := telemetry.StartServiceSpan(ctx, "posting", "invoice_status_changed",
			telemetry.WithAttribute("invoice_id", evt.InvoiceID.String()),
			telemetry.WithAttribute("from", string(evt.FromStatus)),
			telemetry.WithAttribute("to", string(evt.ToStatus)),
		)
		defer span.End()

		err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			return s.onInvoiceStatusChanged(ctx, repos, evt)
		})
		telemetry.RecordError(span, err)
		return err

	case *finance.VoucherStatusChangedEvent:
		ctx, span := telemetry.StartServiceSpan(ctx, "posting", "voucher_status_changed",
			telemetry.WithAttribute("voucher_id", evt.VoucherID.String()),
			telemetry.WithAttribute("from", string(evt.FromStatus)),
			telemetry.WithAttribute("to", string(evt.ToStatus)),
		)
		defer span.End()

		err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			return s.onVoucherStatusChanged(ctx, repos, evt)
		})
		telemetry.RecordError(span, err)
		return err

	default:
		s.logger.Error("unexpected event type",
			zap.Strings("expected", s.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (s *PostingService) onInvoiceStatusChanged(ctx context.Context, repos uow.Repositories, evt *billing.InvoiceStatusChangedEvent) error {
	inv, err := repos.Invoices().FindByIDForTenant(ctx, evt.TenantID(), evt.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}
	from, to := evt.FromStatus, evt.ToStatus

	// draft and cancelled carry no postings at all
	if to.IsUnposted() {
		if err := s.reverseInvoice(ctx, repos, inv); err != nil {
			return err
		}
		return s.deleteReceipts(ctx, repos, inv)
	}

	if from == billing.InvoiceStatusPaid && to != billing.InvoiceStatusPaid {
		if err := s.deleteReceipts(ctx, repos, inv); err != nil {
			return err
		}
	}

	if err := s.postInvoice(ctx, repos, inv); err != nil {
		return err
	}

	if to == billing.InvoiceStatusPaid && from != billing.InvoiceStatusPaid {
		return s.createReceipt(ctx, repos, inv, evt.At)
	}
	return nil
}

// postInvoice inserts Dr customer / Cr income for the invoice total unless the invoice
// lacks an account, has no positive total, or is already posted
func (s *PostingService) postInvoice(ctx context.Context, repos uow.Repositories, inv *billing.Invoice) error {
	log := s.logger.With(zap.String("invoice_id", inv.ID.String()), zap.String("invoice_number", inv.InvoiceNumber))

	if !inv.HasAccounts() {
		log.Warn("invoice accounts not set, skipping ledger posting")
		return nil
	}
	if !inv.Total.IsPositive() {
		log.Info("invoice total is not positive, skipping ledger posting")
		return nil
	}
	exists, err := repos.LedgerTransactions().ExistsForInvoice(ctx, inv.TenantID, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to check invoice postings: %w", err)
	}
	if exists {
		log.Debug("invoice already posted")
		return nil
	}

	txs := finance.NewInvoicePosting(
		inv.TenantID, inv.ID,
		*inv.CustomerAccountID, *inv.IncomeAccountID,
		inv.Total, inv.IssueDate, "Invoice "+inv.InvoiceNumber,
	)
	if err := repos.LedgerTransactions().Post(ctx, txs); err != nil {
		return fmt.Errorf("failed to post invoice: %w", err)
	}

	s.recorder.RecordPosting(ctx, inv.TenantID, string(finance.SourceInvoice), len(txs))
	log.Info("invoice posted to ledger", zap.String("total", inv.Total.String()))
	return nil
}

func (s *PostingService) reverseInvoice(ctx context.Context, repos uow.Repositories, inv *billing.Invoice) error {
	n, err := repos.LedgerTransactions().DeleteByInvoice(ctx, inv.TenantID, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to reverse invoice postings: %w", err)
	}
	if n > 0 {
		s.recorder.RecordReversal(ctx, inv.TenantID, string(finance.SourceInvoice), n)
		s.logger.Info("invoice postings reversed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Int64("transactions", n),
		)
	}
	return nil
}

// createReceipt creates and posts the receipt voucher Dr cash/bank / Cr customer for a
// paid invoice, at most once per invoice. The receipt is dated the day the invoice was paid.
func (s *PostingService) createReceipt(ctx context.Context, repos uow.Repositories, inv *billing.Invoice, paidAt time.Time) error {
	log := s.logger.With(zap.String("invoice_id", inv.ID.String()), zap.String("invoice_number", inv.InvoiceNumber))

	if !inv.Total.IsPositive() {
		log.Info("invoice total is not positive, skipping receipt")
		return nil
	}

	existing, err := repos.Vouchers().FindByInvoice(ctx, inv.TenantID, inv.ID, finance.VoucherTypeReceipt)
	if err != nil {
		return fmt.Errorf("failed to check existing receipts: %w", err)
	}
	if len(existing) > 0 {
		log.Info("receipt already exists for invoice, skipping")
		return nil
	}

	cashBank, customerAccount, err := s.receiptAccounts(ctx, repos, inv)
	if errors.Is(err, finance.ErrReceiptAccountMissing) {
		log.Warn("receipt accounts unavailable, skipping receipt", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	vt, err := repos.VoucherTypes().FindByCode(ctx, inv.TenantID, finance.VoucherTypeReceipt)
	if err != nil {
		return fmt.Errorf("failed to load receipt voucher type: %w", err)
	}
	if vt == nil {
		log.Warn("receipt voucher type not configured, skipping receipt", zap.Error(finance.ErrVoucherTypeMissing))
		return nil
	}

	number, err := NextVoucherNumber(ctx, repos, *vt)
	if err != nil {
		return err
	}

	if paidAt.IsZero() {
		paidAt = s.now()
	}
	voucher, err := finance.NewVoucher(inv.TenantID, *vt, number, calendar.Truncate(paidAt), "Receipt for invoice "+inv.InvoiceNumber)
	if err != nil {
		return fmt.Errorf("failed to build receipt: %w", err)
	}
	invoiceID := inv.ID
	voucher.InvoiceID = &invoiceID
	if err := voucher.AddEntry(cashBank, inv.Total, decimal.Zero, ""); err != nil {
		return err
	}
	if err := voucher.AddEntry(customerAccount, decimal.Zero, inv.Total, ""); err != nil {
		return err
	}
	if err := voucher.ChangeStatus(finance.VoucherStatusPosted, paidAt); err != nil {
		return fmt.Errorf("failed to post receipt: %w", err)
	}
	// posted directly below, not through the voucher event
	voucher.ClearDomainEvents()

	if err := repos.Vouchers().Create(ctx, voucher); err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	if err := s.postVoucher(ctx, repos, voucher); err != nil {
		return err
	}

	log.Info("receipt voucher created",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("voucher_number", voucher.VoucherNumber),
		zap.String("amount", inv.Total.String()),
	)
	return nil
}

func (s *PostingService) receiptAccounts(ctx context.Context, repos uow.Repositories, inv *billing.Invoice) (cashBank, customer uuid.UUID, err error) {
	settings, err := repos.TenantSettings().FindByTenant(ctx, inv.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}
	receiptAccount := settings.ReceiptAccountID()
	if receiptAccount == nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("no cash/bank default: %w", finance.ErrReceiptAccountMissing)
	}

	customerAccount := inv.CustomerAccountID
	if customerAccount == nil {
		c, err := repos.Customers().FindByIDForTenant(ctx, inv.TenantID, inv.CustomerID)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("failed to load customer: %w", err)
		}
		customerAccount = c.LedgerAccountID
	}
	if customerAccount == nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("no customer account: %w", finance.ErrReceiptAccountMissing)
	}
	return *receiptAccount, *customerAccount, nil
}

// deleteReceipts removes every receipt voucher of the invoice with its entries and postings
func (s *PostingService) deleteReceipts(ctx context.Context, repos uow.Repositories, inv *billing.Invoice) error {
	receipts, err := repos.Vouchers().FindByInvoice(ctx, inv.TenantID, inv.ID, finance.VoucherTypeReceipt)
	if err != nil {
		return fmt.Errorf("failed to load receipts: %w", err)
	}
	for i := range receipts {
		if err := s.unpostVoucher(ctx, repos, &receipts[i]); err != nil {
			return err
		}
		if err := repos.Vouchers().Delete(ctx, inv.TenantID, receipts[i].ID); err != nil {
			return fmt.Errorf("failed to delete receipt %s: %w", receipts[i].VoucherNumber, err)
		}
		s.logger.Info("receipt voucher deleted",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("voucher_number", receipts[i].VoucherNumber),
		)
	}
	return nil
}

func (s *PostingService) onVoucherStatusChanged(ctx context.Context, repos uow.Repositories, evt *finance.VoucherStatusChangedEvent) error {
	voucher, err := repos.Vouchers().FindByIDForTenant(ctx, evt.TenantID(), evt.VoucherID)
	if err != nil {
		return fmt.Errorf("failed to load voucher: %w", err)
	}

	if evt.ToStatus == finance.VoucherStatusPosted {
		if err := voucher.Validate(); err != nil {
			s.logger.Warn("voucher does not balance, skipping ledger posting",
				zap.String("voucher_id", voucher.ID.String()),
				zap.Error(err),
			)
			return nil
		}
		return s.postVoucher(ctx, repos, voucher)
	}
	return s.unpostVoucher(ctx, repos, voucher)
}

// postVoucher posts every entry of the voucher unless it is already posted
func (s *PostingService) postVoucher(ctx context.Context, repos uow.Repositories, v *finance.Voucher) error {
	exists, err := repos.LedgerTransactions().ExistsForVoucher(ctx, v.TenantID, v.ID)
	if err != nil {
		return fmt.Errorf("failed to check voucher postings: %w", err)
	}
	if exists {
		s.logger.Debug("voucher already posted", zap.String("voucher_id", v.ID.String()))
		return nil
	}

	txs := v.Postings()
	if err := repos.LedgerTransactions().Post(ctx, txs); err != nil {
		return fmt.Errorf("failed to post voucher %s: %w", v.VoucherNumber, err)
	}
	s.recorder.RecordPosting(ctx, v.TenantID, string(finance.SourceVoucher), len(txs))
	s.logger.Info("voucher posted to ledger",
		zap.String("voucher_id", v.ID.String()),
		zap.String("voucher_number", v.VoucherNumber),
		zap.Int("entries", len(txs)),
	)
	return nil
}

func (s *PostingService) unpostVoucher(ctx context.Context, repos uow.Repositories, v *finance.Voucher) error {
	n, err := repos.LedgerTransactions().DeleteByVoucher(ctx, v.TenantID, v.ID)
	if err != nil {
		return fmt.Errorf("failed to reverse voucher %s: %w", v.VoucherNumber, err)
	}
	if n > 0 {
		s.recorder.RecordReversal(ctx, v.TenantID, string(finance.SourceVoucher), n)
		s.logger.Info("voucher postings reversed",
			zap.String("voucher_id", v.ID.String()),
			zap.Int64("transactions", n),
		)
	}
	return nil
}

// Ensure PostingService implements EventHandler
var _ shared.EventHandler = (*PostingService)(nil)

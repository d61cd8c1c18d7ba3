package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/uow"
	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TrialBalanceService re-derives every account balance from its ledger history.
// It is the reconciliation pass for postings that a swallowed handler error skipped
// or for balances edited outside the posting path.
type TrialBalanceService struct {
	scope  uow.TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewTrialBalanceService creates a new TrialBalanceService
func NewTrialBalanceService(scope uow.TransactionScope, logger *zap.Logger) *TrialBalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrialBalanceService{
		scope:  scope,
		logger: logger,
		now:    time.Now,
	}
}

// Check compares total debits with total credits and every recorded balance with
// opening balance + debits - credits
func (s *TrialBalanceService) Check(ctx context.Context, tenantID uuid.UUID) (*finance.TrialBalanceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trial_balance", "check",
		telemetry.WithAttribute("tenant_id", tenantID.String()),
	)
	defer span.End()

	result := finance.NewTrialBalanceResult(tenantID, s.now())
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		accounts, err := repos.LedgerAccounts().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		totals, err := repos.LedgerTransactions().TotalsByAccount(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to sum transactions: %w", err)
		}
		for i := range accounts {
			t, ok := totals[accounts[i].ID]
			if !ok {
				t = finance.AccountTotals{Debit: decimal.Zero, Credit: decimal.Zero}
			}
			result.AddAccount(&accounts[i], t)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		"status", string(result.Status),
		"discrepancies", len(result.Discrepancies),
	)
	if !result.Status.IsBalanced() {
		s.logger.Warn("trial balance is unbalanced",
			zap.String("tenant_id", tenantID.String()),
			zap.String("total_debits", result.TotalDebits.String()),
			zap.String("total_credits", result.TotalCredits.String()),
			zap.Int("discrepancies", len(result.Discrepancies)),
		)
	}
	return result, nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/practice/backend/internal/domain/finance"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errUnbalanced makes the command exit non-zero after the report is printed
var errUnbalanced = errors.New("trial balance is unbalanced")

func newTrialBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trial-balance",
		Short: "Compare every ledger account balance with its transaction history",
		Long: `Trial-balance re-derives each account balance from its ledger transactions,
reports the accounts whose stored balance drifted, and checks that total
debits equal total credits. The command fails when the ledger is unbalanced.

Example:
  practicectl --tenant 5f0c... trial-balance -o json`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			tenant, err := a.tenantID()
			if err != nil {
				return err
			}
			ctx := logger.WithTenantID(cmd.Context(), tenant.String())
			s, err := a.services(ctx)
			if err != nil {
				return err
			}

			result, err := s.TrialBalance.Check(ctx, tenant)
			if err != nil {
				return err
			}
			if err := a.print(cmd.OutOrStdout(), result, func(w io.Writer) {
				printTrialBalance(w, result)
			}); err != nil {
				return err
			}
			if !result.Status.IsBalanced() {
				a.log.Warn("trial balance is unbalanced",
					zap.Int("discrepancies", len(result.Discrepancies)),
					zap.String("total_debits", result.TotalDebits.String()),
					zap.String("total_credits", result.TotalCredits.String()),
				)
				return errUnbalanced
			}
			return nil
		}),
	}
}

func printTrialBalance(w io.Writer, r *finance.TrialBalanceResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "status\t%s\n", r.Status)
	fmt.Fprintf(tw, "accounts\t%d\n", r.AccountCount)
	fmt.Fprintf(tw, "total debits\t%s\n", r.TotalDebits.StringFixed(2))
	fmt.Fprintf(tw, "total credits\t%s\n", r.TotalCredits.StringFixed(2))
	if len(r.Discrepancies) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "ACCOUNT\tRECORDED\tEXPECTED\tDIFFERENCE")
		for _, d := range r.Discrepancies {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				d.AccountCode,
				d.RecordedBalance.StringFixed(2),
				d.ExpectedBalance.StringFixed(2),
				d.Difference.StringFixed(2),
			)
		}
	}
	_ = tw.Flush()
}

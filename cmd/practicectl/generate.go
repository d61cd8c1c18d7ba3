package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/practice/backend/internal/application/practice"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func newGenerateCmd(a *app, regenerate bool) *cobra.Command {
	var (
		asOf    string
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "generate <engagement-id>",
		Short: "Materialize the periods and tasks of an engagement up to a date",
		Long: `Generate creates every period of the engagement that has started by the
as-of date and its checklist tasks. Running it again only adds what is missing.

Example:
  practicectl --tenant 5f0c... generate 9a41... --as-of 2025-03-31`,
		Args: cobra.ExactArgs(1),
	}
	if regenerate {
		cmd.Use = "regenerate <engagement-id>"
		cmd.Short = "Delete the generated periods and tasks of an engagement and generate them again"
		cmd.Long = `Regenerate deletes every period and task of the engagement, task progress
included, and generates them again for the as-of date. Invoices stay in place.

Example:
  practicectl --tenant 5f0c... regenerate 9a41... --as-of 2025-03-31 --confirm`
		cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm that existing periods and tasks are deleted")
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "as-of date (YYYY-MM-DD, default today in UTC)")

	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if regenerate && !confirm {
			return errors.New("regenerate deletes task progress; pass --confirm to proceed")
		}
		tenant, err := a.tenantID()
		if err != nil {
			return err
		}
		engagementID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid engagement id %q: %w", args[0], err)
		}
		date, err := parseAsOf(asOf)
		if err != nil {
			return err
		}

		ctx := logger.WithEngagementID(logger.WithTenantID(cmd.Context(), tenant.String()), engagementID.String())
		s, err := a.services(ctx)
		if err != nil {
			return err
		}

		run := s.Generator.Generate
		if regenerate {
			run = s.Generator.Regenerate
		}
		result, err := run(ctx, practice.GenerateCommand{TenantID: tenant, EngagementID: engagementID, AsOf: date})
		if err != nil {
			return err
		}
		a.log.Info("generation finished",
			zap.String("engagement_id", engagementID.String()),
			zap.Int("periods_created", result.PeriodsCreated),
			zap.Int("tasks_created", result.TasksCreated),
		)
		return a.print(cmd.OutOrStdout(), result, func(w io.Writer) {
			printGenerateResult(w, result)
		})
	})
	return cmd
}

// parseAsOf defaults to the current UTC date
func parseAsOf(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
	}
	return date, nil
}

func printGenerateResult(w io.Writer, r *practice.GenerateResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "engagement\t%s\n", r.EngagementID)
	fmt.Fprintf(tw, "as of\t%s\n", r.AsOf.Format(dateLayout))
	if r.PeriodsDeleted > 0 || r.TasksDeleted > 0 {
		fmt.Fprintf(tw, "periods deleted\t%d\n", r.PeriodsDeleted)
		fmt.Fprintf(tw, "tasks deleted\t%d\n", r.TasksDeleted)
	}
	fmt.Fprintf(tw, "periods created\t%d\n", r.PeriodsCreated)
	fmt.Fprintf(tw, "periods touched\t%d\n", r.PeriodsTouched)
	fmt.Fprintf(tw, "tasks created\t%d\n", r.TasksCreated)
	fmt.Fprintf(tw, "skipped periods\t%d\n", r.SkippedPeriods)
	fmt.Fprintf(tw, "invalid rules\t%d\n", r.InvalidRules)
	_ = tw.Flush()
}

// print writes v as indented JSON or through text
func (a *app) print(w io.Writer, v any, text func(io.Writer)) error {
	if a.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

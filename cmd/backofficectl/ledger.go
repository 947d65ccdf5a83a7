package main

import (
	"context"

	ledgerapp "github.com/agency/backoffice/internal/application/ledger"
	"github.com/agency/backoffice/internal/bootstrap"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the tenant's ledger summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := opts.tenantID()
			if err != nil {
				return err
			}
			return opts.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				summary, err := app.Summaries.Summary(ctx, tenantID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

type activityOptions struct {
	kind   string
	from   string
	to     string
	search string
}

func newActivityCmd(opts *rootOptions) *cobra.Command {
	a := &activityOptions{}
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print recent ledger activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := opts.tenantID()
			if err != nil {
				return err
			}
			return opts.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				q, err := a.query()
				if err != nil {
					return err
				}
				entries, err := app.Summaries.RecentActivity(ctx, tenantID, q)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entries)
			})
		},
	}
	cmd.Flags().StringVar(&a.kind, "type", "All", "All, Invoice, Income, Purchase, Expense, Transfer or Due")
	cmd.Flags().StringVar(&a.from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&a.to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&a.search, "search", "", "Case-insensitive text filter")
	return cmd
}

func (a *activityOptions) query() (ledgerapp.ActivityQuery, error) {
	from, err := parseDay(a.from)
	if err != nil {
		return ledgerapp.ActivityQuery{}, err
	}
	to, err := parseDay(a.to)
	if err != nil {
		return ledgerapp.ActivityQuery{}, err
	}
	if to != nil {
		end := ledger.DayEnd(*to)
		to = &end
	}
	return ledgerapp.ActivityQuery{Type: a.kind, StartDate: from, EndDate: to, Search: a.search}, nil
}

func newDuplicatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List receivables that were probably also booked as invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := opts.tenantID()
			if err != nil {
				return err
			}
			return opts.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				dups, err := app.Summaries.DuplicateReceivables(ctx, tenantID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dups)
			})
		},
	}
}

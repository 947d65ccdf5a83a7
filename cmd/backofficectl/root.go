package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/agency/backoffice/internal/bootstrap"
	"github.com/agency/backoffice/internal/infrastructure/config"
	"github.com/agency/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	logLevel string
	tenant   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "backofficectl",
		Short:        "Operate the agency back-office ledger",
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.tenant, "tenant", "", "Tenant ID the command acts on")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSummaryCmd(opts),
		newActivityCmd(opts),
		newDuplicatesCmd(opts),
		newUserCmd(opts),
	)
	return cmd
}

// newLogger builds a console logger on stderr so stdout stays parseable
func (o *rootOptions) newLogger() (*zap.Logger, error) {
	return logger.New(config.LogConfig{Level: o.logLevel, Format: "console", Output: "stderr"})
}

func (o *rootOptions) tenantID() (uuid.UUID, error) {
	if o.tenant == "" {
		return uuid.Nil, fmt.Errorf("--tenant is required")
	}
	id, err := uuid.Parse(o.tenant)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tenant %q: %w", o.tenant, err)
	}
	return id, nil
}

// withContainer loads configuration, builds the application and runs fn
// with the event bus started so audit rows are written.
func (o *rootOptions) withContainer(ctx context.Context, fn func(ctx context.Context, app *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := o.newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.WithoutCancel(ctx)) }()

	if err := app.Events.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = app.Events.Stop(stopCtx)
	}()

	return fn(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDay reads a YYYY-MM-DD flag value as midnight UTC, the form dates
// are stored in; empty means unset
func parseDay(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return &t, nil
}

package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/agency/backoffice/internal/infrastructure/config"
	"github.com/agency/backoffice/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type migrateOptions struct {
	*rootOptions
	path string
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	opts := &migrateOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back and scaffold schema migrations",
	}
	cmd.PersistentFlags().StringVar(&opts.path, "path", "migrations", "Path to the migrations directory")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return opts.run(func(m *migration.Migrator, _ *zap.Logger) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back the last migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid step count %q", args[0])
					}
					steps = n
				}
				return opts.run(func(m *migration.Migrator, _ *zap.Logger) error { return m.Down(steps) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return opts.run(func(m *migration.Migrator, _ *zap.Logger) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), map[string]any{"version": v, "dirty": dirty})
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations, clearing the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return opts.run(func(m *migration.Migrator, _ *zap.Logger) error { return m.Force(v) })
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Scaffold an empty up/down migration pair",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := migration.Create(opts.path, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), f)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List migration files on disk",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				files, err := migration.List(opts.path)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "%06d  %s\n", f.Version, f.Name)
				}
				return nil
			},
		},
	)
	return cmd
}

// run opens a plain database/sql handle, independent of the gorm pool, and
// hands a Migrator to fn
func (o *migrateOptions) run(fn func(*migration.Migrator, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := o.newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, o.path, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	log.Info("Running migrations", zap.String("path", o.path))
	return fn(m, log)
}

// Command server runs the shopping assistant HTTP API and manages the
// history schema.
//
//	server serve            start the HTTP server (default)
//	server migrate up       apply pending migrations
//	server migrate down     roll back the latest migration
//	server migrate status   list migrations and their state
//
// A .env file in the working directory is loaded first when present.
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/shopping-assistant/internal/adapter/postgres"
	"github.com/heartmarshall/shopping-assistant/internal/app"
	"github.com/heartmarshall/shopping-assistant/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Shopping assistant API",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newMigrateCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := app.Run(cmd.Context()); err != nil {
		slog.Error("application failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the history schema",
	}

	step := func(use, short string, fn func(context.Context, *postgres.Migrator, *cobra.Command) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, fn)
			},
		}
	}

	migrate.AddCommand(
		step("up", "Apply all pending migrations", func(ctx context.Context, m *postgres.Migrator, _ *cobra.Command) error {
			return m.Up(ctx)
		}),
		step("down", "Roll back the latest migration", func(ctx context.Context, m *postgres.Migrator, _ *cobra.Command) error {
			return m.Down(ctx)
		}),
		step("status", "Show migration status", func(ctx context.Context, m *postgres.Migrator, cmd *cobra.Command) error {
			return m.Status(ctx, cmd.OutOrStdout())
		}),
	)
	return migrate
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *postgres.Migrator, *cobra.Command) error) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		return err
	}
	logger := app.NewLogger(cfg.Log)

	m, err := postgres.NewMigrator(cmd.Context(), cfg.Database.DSN, logger)
	if err != nil {
		logger.Error("open migrator", slog.String("error", err.Error()))
		return err
	}
	defer m.Close()

	if err := fn(cmd.Context(), m, cmd); err != nil {
		logger.Error("migrate "+cmd.Name()+" failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

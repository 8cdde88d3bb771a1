// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/limbogate/limbogate/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and reconcile the schema",
		Long: `Apply all pending database migrations, then reconcile the live schema
against the expected column set by adding any missing columns. Both
steps are idempotent and safe to run on every start.`,
		RunE: runMigrate,
	}
	cmd.Flags().Bool("status", false, "print the current migration version and exit")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // best-effort cleanup on exit

	if statusOnly, _ := cmd.Flags().GetBool("status"); statusOnly {
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		cmd.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil
	}

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}

	ctx := context.Background()
	cmd.Println("Reconciling schema...")
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.ReconcileSchema(ctx, pool, slog.Default()); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

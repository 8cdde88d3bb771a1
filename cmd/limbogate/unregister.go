// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/limbogate/limbogate/internal/auth"
	"github.com/limbogate/limbogate/internal/auth/postgres"
	"github.com/limbogate/limbogate/internal/store"
)

// NewUnregisterCmd creates the unregister subcommand.
func NewUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <nickname>",
		Short: "Remove a registered player record",
		Long: `Remove the player record for the given nickname. The player will have
to register again on their next connection.`,
		Args: cobra.ExactArgs(1),
		RunE: runUnregister,
	}
}

func runUnregister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := postgres.NewRecordRepository(pool)
	if err := repo.Delete(ctx, args[0]); err != nil {
		return err
	}

	cmd.Printf("Unregistered %s\n", auth.NormalizeName(args[0]))
	return nil
}

// NewChangePasswordCmd creates the change-password subcommand.
func NewChangePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password <nickname> <new-password>",
		Short: "Set a new password for a registered player",
		Args:  cobra.ExactArgs(2),
		RunE:  runChangePassword,
	}
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := postgres.NewRecordRepository(pool)
	rec, err := repo.FindByName(ctx, args[0])
	if err != nil {
		return err
	}

	hasher := auth.NewArgon2idHasher(cfg.Auth.Argon2Time)
	hash, err := hasher.Hash(args[1])
	if err != nil {
		return err
	}

	rec.PasswordHash = hash
	if err := repo.Update(ctx, rec); err != nil {
		return err
	}

	cmd.Printf("Password changed for %s\n", rec.Nickname)
	return nil
}

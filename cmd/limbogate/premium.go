// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/limbogate/limbogate/internal/auth"
	"github.com/limbogate/limbogate/internal/mojang"
)

// NewPremiumCmd creates the premium subcommand.
func NewPremiumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "premium <nickname>",
		Short: "Check whether a nickname belongs to a premium identity",
		Long: `Query the external profile endpoint for the given nickname and print
the result. Useful for diagnosing premium bypass behavior.`,
		Args: cobra.ExactArgs(1),
		RunE: runPremium,
	}
}

func runPremium(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client := mojang.NewClient(cfg.Premium.URL, slog.Default())
	status, err := client.HasPaidAccount(context.Background(), auth.NormalizeName(args[0]))
	if err != nil {
		return err
	}

	switch status {
	case mojang.StatusPremium:
		cmd.Println("premium")
	case mojang.StatusNotFound:
		cmd.Println("not premium")
	default:
		cmd.Println("rate limited, no answer")
	}
	return nil
}

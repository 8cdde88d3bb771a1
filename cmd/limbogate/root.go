// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/limbogate/limbogate/internal/config"
	"github.com/limbogate/limbogate/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the LimboGate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limbogate",
		Short: "LimboGate - auth session engine for offline-mode game proxies",
		Long: `LimboGate authenticates players connecting through a game proxy that
cannot trust client-supplied identities. It drives register/login/TOTP
dialogues, migrates legacy password hashes in place, and resolves
premium identities with a cached external lookup.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database_url", "", "PostgreSQL connection string")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewUnregisterCmd())
	cmd.AddCommand(NewChangePasswordCmd())
	cmd.AddCommand(NewPremiumCmd())

	return cmd
}

// loadConfig builds the effective configuration for a subcommand from
// defaults, the optional config file and any set flags. Without an
// explicit --config the XDG config path is tried, but may be absent.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	explicit := path != ""
	if path == "" {
		path = xdg.DefaultConfigFile()
	}
	return config.Load(path, explicit, cmd.Flags())
}

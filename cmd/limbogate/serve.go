// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/limbogate/limbogate/internal/auth/postgres"
	"github.com/limbogate/limbogate/internal/logging"
	"github.com/limbogate/limbogate/internal/observability"
	"github.com/limbogate/limbogate/internal/store"
	"github.com/limbogate/limbogate/pkg/errutil"
)

// registeredGaugeInterval is how often the registered-players gauge is
// refreshed from the store.
const registeredGaugeInterval = 30 * time.Second

// NewServeCmd creates the serve command. It runs the operational
// surface of the engine: database connectivity, health probes and the
// metrics endpoint. Auth session flows are driven by the embedding
// proxy through the engine API.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the observability and health endpoint server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logging.SetDefault("limbogate", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
			logger := slog.Default()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := store.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			repo := postgres.NewRecordRepository(pool)

			if !cfg.Observability.Enabled {
				logger.Info("observability disabled, serving health via database connection only")
				<-ctx.Done()
				return nil
			}

			obs := observability.NewServer(cfg.Observability.Addr, func() bool {
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				return pool.Ping(pingCtx) == nil
			})
			errCh, err := obs.Start()
			if err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := obs.Stop(stopCtx); err != nil {
					errutil.LogError(logger, "failed to stop observability server", err)
				}
			}()

			go refreshRegisteredGauge(ctx, repo, obs.Metrics(), logger)

			select {
			case <-ctx.Done():
				return nil
			case serveErr := <-errCh:
				return serveErr
			}
		},
	}
}

// refreshRegisteredGauge keeps the registered-players gauge in step
// with the store until ctx is cancelled.
func refreshRegisteredGauge(ctx context.Context, repo *postgres.RecordRepository, metrics *observability.Metrics, logger *slog.Logger) {
	ticker := time.NewTicker(registeredGaugeInterval)
	defer ticker.Stop()

	for {
		if n, err := repo.CountAll(ctx); err != nil {
			errutil.LogError(logger, "failed to count registered players", err)
		} else {
			metrics.RegisteredPlayers.Set(float64(n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

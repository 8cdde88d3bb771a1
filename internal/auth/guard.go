// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"
	"log/slog"
	"time"
)

// RegistrationGuard enforces the per-address registration limit. An
// address may hold at most Limit registered accounts; when MaxAge is
// nonzero, accounts older than MaxAge release their address claim and
// stop counting toward the limit.
type RegistrationGuard struct {
	store  CredentialStore
	limit  int
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistrationGuard creates a guard. A limit of zero or less
// disables the check entirely.
func NewRegistrationGuard(store CredentialStore, limit int, maxAge time.Duration, logger *slog.Logger) *RegistrationGuard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RegistrationGuard{
		store:  store,
		limit:  limit,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether the address may register another account.
//
// Records whose claim on the address has aged out are cleared as a
// side effect, so the address becomes reusable without operator
// intervention. Lookup failures are logged and the registration is
// allowed through; a flaky database must not lock players out. A claim
// release that fails to persist still counts toward the limit.
func (g *RegistrationGuard) Allow(ctx context.Context, address string) bool {
	if g.limit <= 0 || address == "" {
		return true
	}

	records, err := g.store.FindByIP(ctx, address)
	if err != nil {
		g.logger.ErrorContext(ctx, "registration limit check failed, allowing",
			slog.String("address", address),
			slog.Any("error", err))
		return true
	}

	active := 0
	now := g.now()
	for _, rec := range records {
		if g.maxAge > 0 {
			registered := time.UnixMilli(rec.RegisteredAt)
			if now.Sub(registered) > g.maxAge {
				rec.IP = ""
				err := g.store.Update(ctx, rec)
				if err == nil {
					continue
				}
				g.logger.ErrorContext(ctx, "failed to release expired address claim",
					slog.String("nickname", rec.Nickname),
					slog.Any("error", err))
				// The claim keeps counting until the release persists.
			}
		}
		active++
	}
	return active < g.limit
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/limbogate/limbogate/internal/cache"
	"github.com/limbogate/limbogate/internal/mojang"
	"github.com/limbogate/limbogate/internal/observability"
)

// ProfileLookup resolves whether a nickname belongs to a centrally
// issued (premium) identity. Implemented by mojang.Client.
type ProfileLookup interface {
	HasPaidAccount(ctx context.Context, lowercaseNickname string) (mojang.Status, error)
}

// PremiumResolverConfig tunes premium resolution.
type PremiumResolverConfig struct {
	// ForceOfflineMode treats every player as offline regardless of
	// what the external endpoint says.
	ForceOfflineMode bool

	// OnlineModeNeedAuth makes premium players pass password auth too
	// unless they are completely unknown to the store.
	OnlineModeNeedAuth bool

	// OnRateLimit is the answer handed out when the external endpoint
	// refuses to answer. It is never cached.
	OnRateLimit bool
}

// PremiumResolver answers premium lookups with a TTL cache in front of
// the external endpoint. Inconclusive answers (rate limits, transport
// failures) fall back to a configured default and are never cached, so
// a throttled endpoint cannot poison the cache.
type PremiumResolver struct {
	lookup ProfileLookup
	store  CredentialStore
	cache  *cache.TTL[string, PremiumEntry]
	cfg    PremiumResolverConfig
	logger *slog.Logger
}

// NewPremiumResolver creates a resolver. The cache may be nil to
// disable caching; a nil logger discards.
func NewPremiumResolver(
	lookup ProfileLookup,
	store CredentialStore,
	premiumCache *cache.TTL[string, PremiumEntry],
	cfg PremiumResolverConfig,
	logger *slog.Logger,
) *PremiumResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PremiumResolver{
		lookup: lookup,
		store:  store,
		cache:  premiumCache,
		cfg:    cfg,
		logger: logger,
	}
}

// IsPremiumExternal consults only the external endpoint (through the
// cache). Conclusive answers are cached; inconclusive ones return the
// configured fallback without touching the cache.
func (r *PremiumResolver) IsPremiumExternal(ctx context.Context, nickname string) bool {
	lowercase := NormalizeName(nickname)

	if r.cache != nil {
		if entry, ok := r.cache.Get(lowercase); ok {
			return entry.Premium
		}
	}

	status, err := r.lookup.HasPaidAccount(ctx, lowercase)
	if err != nil {
		r.logger.ErrorContext(ctx, "premium lookup failed, using fallback",
			slog.String("nickname", lowercase),
			slog.Bool("fallback", r.cfg.OnRateLimit),
			slog.Any("error", err))
		observability.RecordPremiumLookup("fallback")
		return r.cfg.OnRateLimit
	}

	switch status {
	case mojang.StatusPremium, mojang.StatusNotFound:
		premium := status == mojang.StatusPremium
		if premium {
			observability.RecordPremiumLookup("premium")
		} else {
			observability.RecordPremiumLookup("cracked")
		}
		if r.cache != nil {
			r.cache.Put(lowercase, PremiumEntry{Premium: premium, CheckedAt: time.Now()})
		}
		return premium
	default:
		observability.RecordPremiumLookup("fallback")
		return r.cfg.OnRateLimit
	}
}

// Invalidate evicts the cached premium answer for the nickname.
func (r *PremiumResolver) Invalidate(nickname string) {
	if r.cache != nil {
		r.cache.Remove(NormalizeName(nickname))
	}
}

// IsPremium decides whether the player should go through online-mode
// verification instead of password auth. A premium identity only wins
// when no offline account with a password already claims the name;
// with OnlineModeNeedAuth set, a completely unknown name also stays in
// password auth so premium players register like everyone else.
//
// Store failures resolve to premium, which pushes the player into
// online-mode verification rather than letting an outage skip checks.
func (r *PremiumResolver) IsPremium(ctx context.Context, nickname string) bool {
	if r.cfg.ForceOfflineMode {
		return false
	}

	if !r.IsPremiumExternal(ctx, nickname) {
		return false
	}

	lowercase := NormalizeName(nickname)

	registered, err := r.store.CountWithPassword(ctx, lowercase)
	if err != nil {
		r.logger.ErrorContext(ctx, "premium store check failed, assuming premium",
			slog.String("nickname", lowercase),
			slog.Any("error", err))
		return true
	}

	if r.cfg.OnlineModeNeedAuth {
		unregistered, err := r.store.CountWithoutPassword(ctx, lowercase)
		if err != nil {
			r.logger.ErrorContext(ctx, "premium store check failed, assuming premium",
				slog.String("nickname", lowercase),
				slog.Any("error", err))
			return true
		}
		return registered == 0 && unregistered != 0
	}
	return registered == 0
}

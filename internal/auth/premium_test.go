// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/limbogate/limbogate/internal/auth"
	"github.com/limbogate/limbogate/internal/cache"
	"github.com/limbogate/limbogate/internal/mojang"
)

func newPremiumCache(t *testing.T) *cache.TTL[string, auth.PremiumEntry] {
	t.Helper()
	c := cache.New[string, auth.PremiumEntry](time.Hour, time.Hour)
	t.Cleanup(c.Close)
	return c
}

func TestIsPremiumExternal(t *testing.T) {
	ctx := context.Background()

	t.Run("caches a definitive premium answer", func(t *testing.T) {
		lookup := &fakeLookup{status: mojang.StatusPremium}
		resolver := auth.NewPremiumResolver(lookup, newFakeStore(), newPremiumCache(t),
			auth.PremiumResolverConfig{}, nil)

		assert.True(t, resolver.IsPremiumExternal(ctx, "Notch"))
		assert.True(t, resolver.IsPremiumExternal(ctx, "notch"))
		assert.Equal(t, 1, lookup.calls, "second lookup should hit the cache")
	})

	t.Run("caches a definitive not-found answer", func(t *testing.T) {
		lookup := &fakeLookup{status: mojang.StatusNotFound}
		resolver := auth.NewPremiumResolver(lookup, newFakeStore(), newPremiumCache(t),
			auth.PremiumResolverConfig{OnRateLimit: true}, nil)

		assert.False(t, resolver.IsPremiumExternal(ctx, "cracked_player"))
		assert.False(t, resolver.IsPremiumExternal(ctx, "cracked_player"))
		assert.Equal(t, 1, lookup.calls)
	})

	t.Run("rate limit yields fallback and is never cached", func(t *testing.T) {
		lookup := &fakeLookup{status: mojang.StatusRateLimited}
		resolver := auth.NewPremiumResolver(lookup, newFakeStore(), newPremiumCache(t),
			auth.PremiumResolverConfig{OnRateLimit: true}, nil)

		assert.True(t, resolver.IsPremiumExternal(ctx, "someone"))
		assert.True(t, resolver.IsPremiumExternal(ctx, "someone"))
		assert.Equal(t, 2, lookup.calls, "inconclusive answers must not be cached")
	})

	t.Run("transport failure yields fallback", func(t *testing.T) {
		lookup := &fakeLookup{err: oops.Errorf("connection timed out")}
		resolver := auth.NewPremiumResolver(lookup, newFakeStore(), newPremiumCache(t),
			auth.PremiumResolverConfig{OnRateLimit: false}, nil)

		assert.False(t, resolver.IsPremiumExternal(ctx, "someone"))
		assert.Equal(t, 1, lookup.calls)
	})

	t.Run("invalidate evicts the cached answer", func(t *testing.T) {
		lookup := &fakeLookup{status: mojang.StatusPremium}
		resolver := auth.NewPremiumResolver(lookup, newFakeStore(), newPremiumCache(t),
			auth.PremiumResolverConfig{}, nil)

		assert.True(t, resolver.IsPremiumExternal(ctx, "Notch"))
		resolver.Invalidate("Notch")
		assert.True(t, resolver.IsPremiumExternal(ctx, "Notch"))
		assert.Equal(t, 2, lookup.calls)
	})
}

func TestIsPremium(t *testing.T) {
	ctx := context.Background()

	passwordRecord := &auth.PlayerRecord{
		Nickname:          "Notch",
		LowercaseNickname: "notch",
		PasswordHash:      "$argon2id$hash",
	}
	placeholderRecord := &auth.PlayerRecord{
		Nickname:          "Notch",
		LowercaseNickname: "notch",
	}

	tests := []struct {
		name   string
		cfg    auth.PremiumResolverConfig
		status mojang.Status
		store  *fakeStore
		want   bool
	}{
		{
			name:   "force offline mode short-circuits",
			cfg:    auth.PremiumResolverConfig{ForceOfflineMode: true},
			status: mojang.StatusPremium,
			store:  newFakeStore(),
			want:   false,
		},
		{
			name:   "cracked name is never premium",
			status: mojang.StatusNotFound,
			store:  newFakeStore(),
			want:   false,
		},
		{
			name:   "premium and unclaimed",
			status: mojang.StatusPremium,
			store:  newFakeStore(),
			want:   true,
		},
		{
			name:   "premium but claimed by a password account",
			status: mojang.StatusPremium,
			store:  newFakeStore(passwordRecord),
			want:   false,
		},
		{
			name:   "need-auth requires a provisioned placeholder",
			cfg:    auth.PremiumResolverConfig{OnlineModeNeedAuth: true},
			status: mojang.StatusPremium,
			store:  newFakeStore(),
			want:   false,
		},
		{
			name:   "need-auth with placeholder is premium",
			cfg:    auth.PremiumResolverConfig{OnlineModeNeedAuth: true},
			status: mojang.StatusPremium,
			store:  newFakeStore(placeholderRecord),
			want:   true,
		},
		{
			name:   "need-auth with password claim is not premium",
			cfg:    auth.PremiumResolverConfig{OnlineModeNeedAuth: true},
			status: mojang.StatusPremium,
			store:  newFakeStore(passwordRecord),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{status: tt.status}
			resolver := auth.NewPremiumResolver(lookup, tt.store, newPremiumCache(t), tt.cfg, nil)
			assert.Equal(t, tt.want, resolver.IsPremium(ctx, "Notch"))
		})
	}

	t.Run("store failure resolves to premium", func(t *testing.T) {
		store := newFakeStore()
		store.countErr = oops.Errorf("connection refused")
		lookup := &fakeLookup{status: mojang.StatusPremium}
		resolver := auth.NewPremiumResolver(lookup, store, newPremiumCache(t),
			auth.PremiumResolverConfig{}, nil)

		assert.True(t, resolver.IsPremium(ctx, "Notch"),
			"an outage must push players into online-mode verification")
	})
}

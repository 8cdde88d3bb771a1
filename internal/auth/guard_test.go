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
)

func recordWithIP(name, ip string, registeredAt time.Time) *auth.PlayerRecord {
	return &auth.PlayerRecord{
		Nickname:          name,
		LowercaseNickname: auth.NormalizeName(name),
		PasswordHash:      "$argon2id$hash",
		IP:                ip,
		RegisteredAt:      registeredAt.UnixMilli(),
	}
}

func TestRegistrationGuardAllow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("under limit allows", func(t *testing.T) {
		store := newFakeStore(recordWithIP("One", "1.2.3.4", now))
		guard := auth.NewRegistrationGuard(store, 2, 0, nil)
		assert.True(t, guard.Allow(ctx, "1.2.3.4"))
	})

	t.Run("at limit denies", func(t *testing.T) {
		store := newFakeStore(
			recordWithIP("One", "1.2.3.4", now),
			recordWithIP("Two", "1.2.3.4", now),
		)
		guard := auth.NewRegistrationGuard(store, 2, 0, nil)
		assert.False(t, guard.Allow(ctx, "1.2.3.4"))
	})

	t.Run("other addresses do not count", func(t *testing.T) {
		store := newFakeStore(
			recordWithIP("One", "1.2.3.4", now),
			recordWithIP("Two", "5.6.7.8", now),
		)
		guard := auth.NewRegistrationGuard(store, 2, 0, nil)
		assert.True(t, guard.Allow(ctx, "1.2.3.4"))
	})

	t.Run("zero limit disables the check", func(t *testing.T) {
		store := newFakeStore(
			recordWithIP("One", "1.2.3.4", now),
			recordWithIP("Two", "1.2.3.4", now),
		)
		guard := auth.NewRegistrationGuard(store, 0, 0, nil)
		assert.True(t, guard.Allow(ctx, "1.2.3.4"))
	})

	t.Run("expired claims are cleared and excluded", func(t *testing.T) {
		old := recordWithIP("Old", "1.2.3.4", now.Add(-48*time.Hour))
		fresh := recordWithIP("Fresh", "1.2.3.4", now)
		store := newFakeStore(old, fresh)

		guard := auth.NewRegistrationGuard(store, 2, 24*time.Hour, nil)
		assert.True(t, guard.Allow(ctx, "1.2.3.4"))
		assert.Empty(t, old.IP, "expired claim should release its address")
		assert.Equal(t, "1.2.3.4", fresh.IP)
	})

	t.Run("claim exactly at max age still counts", func(t *testing.T) {
		base := time.UnixMilli(now.UnixMilli())
		edge := recordWithIP("Edge", "1.2.3.4", base.Add(-24*time.Hour))
		store := newFakeStore(edge)

		guard := auth.NewRegistrationGuard(store, 1, 24*time.Hour, nil)
		auth.SetGuardClock(guard, func() time.Time { return base })
		assert.False(t, guard.Allow(ctx, "1.2.3.4"))
		assert.Equal(t, "1.2.3.4", edge.IP, "only strictly older claims are released")
	})

	t.Run("failed claim release keeps counting", func(t *testing.T) {
		old := recordWithIP("Old", "1.2.3.4", now.Add(-48*time.Hour))
		store := newFakeStore(old)
		store.updateFn = func(context.Context, *auth.PlayerRecord) error {
			return oops.Errorf("connection refused")
		}

		guard := auth.NewRegistrationGuard(store, 1, 24*time.Hour, nil)
		assert.False(t, guard.Allow(ctx, "1.2.3.4"))
	})

	t.Run("zero max age keeps old claims counting", func(t *testing.T) {
		store := newFakeStore(
			recordWithIP("Old", "1.2.3.4", now.Add(-48*time.Hour)),
			recordWithIP("Fresh", "1.2.3.4", now),
		)
		guard := auth.NewRegistrationGuard(store, 2, 0, nil)
		assert.False(t, guard.Allow(ctx, "1.2.3.4"))
	})

	t.Run("store failure allows", func(t *testing.T) {
		store := newFakeStore()
		store.findByIPFn = func(context.Context, string) ([]*auth.PlayerRecord, error) {
			return nil, oops.Errorf("connection refused")
		}
		guard := auth.NewRegistrationGuard(store, 1, 0, nil)
		assert.True(t, guard.Allow(ctx, "1.2.3.4"))
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/limbogate/limbogate/internal/auth"
	"github.com/limbogate/limbogate/internal/observability"
)

func TestCacheGauges(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	now := time.Now()

	sessions := auth.NewSessionCache(time.Hour, time.Hour, metrics)
	t.Cleanup(sessions.Close)
	premium := auth.NewPremiumCache(time.Hour, time.Hour, metrics)
	t.Cleanup(premium.Close)

	sessions.Put("alice", auth.SessionEntry{Nickname: "Alice", CheckedAt: now})
	sessions.Put("bob", auth.SessionEntry{Nickname: "Bob", CheckedAt: now})
	premium.Put("alice", auth.PremiumEntry{Premium: true, CheckedAt: now})

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.SessionCacheEntries))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PremiumCacheEntries))

	sessions.Remove("alice")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionCacheEntries))

	premium.Sweep(now.Add(2 * time.Hour))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.PremiumCacheEntries))
}

func TestCacheGaugesOptional(t *testing.T) {
	sessions := auth.NewSessionCache(time.Hour, time.Hour, nil)
	t.Cleanup(sessions.Close)

	sessions.Put("alice", auth.SessionEntry{Nickname: "Alice", CheckedAt: time.Now()})
	_, ok := sessions.Get("alice")
	assert.True(t, ok)
}

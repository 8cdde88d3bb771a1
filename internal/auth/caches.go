// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"time"

	"github.com/limbogate/limbogate/internal/cache"
	"github.com/limbogate/limbogate/internal/observability"
)

// NewSessionCache creates the recent-session cache for EngineParams.
// With a non-nil metrics, the cache keeps the session entry-count
// gauge current across puts, removes and sweeps.
func NewSessionCache(horizon, sweepInterval time.Duration, metrics *observability.Metrics) *cache.TTL[string, SessionEntry] {
	var opts []cache.Option
	if metrics != nil {
		opts = append(opts, cache.WithSizeGauge(metrics.SessionCacheEntries))
	}
	return cache.New[string, SessionEntry](horizon, sweepInterval, opts...)
}

// NewPremiumCache creates the premium-lookup cache for
// NewPremiumResolver, wiring the premium entry-count gauge the same
// way.
func NewPremiumCache(horizon, sweepInterval time.Duration, metrics *observability.Metrics) *cache.TTL[string, PremiumEntry] {
	var opts []cache.Option
	if metrics != nil {
		opts = append(opts, cache.WithSizeGauge(metrics.PremiumCacheEntries))
	}
	return cache.New[string, PremiumEntry](horizon, sweepInterval, opts...)
}

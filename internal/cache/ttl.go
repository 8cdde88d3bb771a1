// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package cache provides a generic expiring key/value cache with a
// background sweeper.
package cache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Entry is a cached value carrying its last-touched timestamp. Sweeps
// remove entries whose age meets or exceeds the cache horizon.
type Entry interface {
	Timestamp() time.Time
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	sizeGauge prometheus.Gauge
}

// WithSizeGauge sets a Prometheus gauge tracking the entry count.
func WithSizeGauge(g prometheus.Gauge) Option {
	return func(o *options) {
		o.sizeGauge = g
	}
}

// TTL is an expiring map safe for concurrent use. Each instance runs
// its own low-frequency sweeper goroutine, decoupled from request
// handling. Call Close to stop the sweeper.
type TTL[K comparable, V Entry] struct {
	mu      sync.RWMutex
	entries map[K]V
	horizon time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	sizeGauge prometheus.Gauge
}

// New creates a TTL cache whose entries expire after horizon and starts
// a sweeper firing every sweepInterval. A non-positive sweepInterval
// defaults to the horizon.
func New[K comparable, V Entry](horizon, sweepInterval time.Duration, opts ...Option) *TTL[K, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if sweepInterval <= 0 {
		sweepInterval = horizon
	}

	c := &TTL[K, V]{
		entries:   make(map[K]V),
		horizon:   horizon,
		stopChan:  make(chan struct{}),
		sizeGauge: o.sizeGauge,
	}

	c.wg.Add(1)
	go c.sweepLoop(sweepInterval)

	return c
}

// Put stores a value, replacing any existing entry for the key. The
// old entry is removed first so insertion order reflects recency.
func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	delete(c.entries, key)
	c.entries[key] = value
	size := len(c.entries)
	c.mu.Unlock()

	c.recordSize(size)
}

// Get returns the value for key and whether it was present. Expired
// entries still pending a sweep are returned; callers relying on strict
// horizons should compare the entry's timestamp themselves.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Remove deletes the entry for key, if any.
func (c *TTL[K, V]) Remove(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	c.recordSize(size)
}

// Len returns the current entry count.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes every entry whose age at now meets or exceeds the
// horizon. It is called by the background sweeper but exposed for
// deterministic tests.
func (c *TTL[K, V]) Sweep(now time.Time) {
	c.mu.Lock()
	for k, v := range c.entries {
		if now.Sub(v.Timestamp()) >= c.horizon {
			delete(c.entries, k)
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.recordSize(size)
}

// Close stops the background sweeper and waits for it to exit. The
// cache remains usable afterwards; entries simply stop expiring.
func (c *TTL[K, V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
}

func (c *TTL[K, V]) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case now := <-ticker.C:
			c.Sweep(now)
		}
	}
}

func (c *TTL[K, V]) recordSize(n int) {
	if c.sizeGauge != nil {
		c.sizeGauge.Set(float64(n))
	}
}

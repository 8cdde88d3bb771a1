// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import "time"

// SessionEntry records one successful authentication in the
// recent-session cache, keyed by normalized nickname. It grants a
// cache bypass only when both the remote address and the display-case
// nickname match the connecting player exactly.
type SessionEntry struct {
	Address   string
	Nickname  string
	CheckedAt time.Time
}

// Timestamp implements cache.Entry.
func (e SessionEntry) Timestamp() time.Time {
	return e.CheckedAt
}

// PremiumEntry caches one definitive premium-lookup answer, keyed by
// normalized nickname. Rate-limited answers are never cached.
type PremiumEntry struct {
	Premium   bool
	CheckedAt time.Time
}

// Timestamp implements cache.Entry.
func (e PremiumEntry) Timestamp() time.Time {
	return e.CheckedAt
}

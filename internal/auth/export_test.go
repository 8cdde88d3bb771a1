// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import "time"

// SetGuardClock pins the guard's clock for deterministic age checks.
func SetGuardClock(g *RegistrationGuard, now func() time.Time) {
	g.now = now
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package auth provides the authentication session engine for LimboGate.
//
// # Domain Types
//
// PlayerRecord is the persistent credential record, keyed by the
// lowercased nickname. Records are created by NewPlayerRecord, which
// derives the offline UUID and stamps the registration time; direct
// struct initialization bypasses those invariants.
//
// # Services
//
// Service types coordinate domain operations:
//   - Engine - connection-facing surface (NeedsAuth, StartAuthSession,
//     session cache maintenance, unregistration)
//   - Verifier - password verification with legacy-hash migration
//   - PremiumResolver - premium identity resolution with caching and
//     rate-limit fallback
//   - RegistrationGuard - per-IP registration limits
//
// An AuthSession drives one connection's register/login/TOTP dialogue
// inside the holding world; it is owned by that connection's handling
// context and never shared.
package auth

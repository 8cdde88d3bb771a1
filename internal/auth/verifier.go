// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Verifier checks supplied passwords against stored hashes, migrating
// legacy hashes to the modern algorithm on first successful use.
type Verifier struct {
	hasher PasswordHasher
	legacy LegacyVerifier // nil when migration is disabled
	store  CredentialStore
	logger *slog.Logger
}

// NewVerifier creates a Verifier. legacy may be nil to disable the
// migration path. Returns an error if hasher or store is nil.
func NewVerifier(hasher PasswordHasher, legacy LegacyVerifier, store CredentialStore, logger *slog.Logger) (*Verifier, error) {
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if store == nil {
		return nil, oops.Errorf("credential store is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Verifier{hasher: hasher, legacy: legacy, store: store, logger: logger}, nil
}

// Check verifies the password against the record's stored hash.
//
// The modern algorithm is checked first. When it fails and a legacy
// algorithm is configured, the same stored value is re-checked with the
// legacy algorithm; a legacy match recomputes a modern hash, persists
// it on the record, and still reports success. Malformed stored hashes
// report false like any other mismatch, so callers cannot distinguish
// "wrong password" from "unknown hash format".
func (v *Verifier) Check(ctx context.Context, password string, rec *PlayerRecord) bool {
	ok, err := v.hasher.Verify(password, rec.PasswordHash)
	if err != nil {
		// Legacy-format hashes fail the modern parse; treat as mismatch
		// and let the legacy path decide.
		ok = false
	}
	if ok {
		return true
	}

	if v.legacy == nil {
		return false
	}
	if !v.legacy.Verify(password, rec.PasswordHash) {
		return false
	}

	// Write-through upgrade. The login already succeeded; a failed
	// persist only means the next login migrates again.
	newHash, hashErr := v.hasher.Hash(password)
	if hashErr != nil {
		v.logger.Error("legacy hash migration rehash failed",
			"nickname", rec.LowercaseNickname,
			"operation", "hash",
			"error", hashErr.Error(),
		)
		return true
	}
	rec.PasswordHash = newHash
	if updateErr := v.store.Update(ctx, rec); updateErr != nil {
		v.logger.Error("legacy hash migration persist failed",
			"nickname", rec.LowercaseNickname,
			"operation", "update record",
			"error", updateErr.Error(),
		)
	} else {
		v.logger.Info("migrated legacy password hash",
			"nickname", rec.LowercaseNickname,
			"algorithm", v.legacy.Name(),
		)
	}
	return true
}

// HashPassword produces a modern hash for a new or changed password.
func (v *Verifier) HashPassword(password string) (string, error) {
	return v.hasher.Hash(password)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// LegacyVerifier checks a password against a hash produced by a
// previous deployment's algorithm. Legacy verifiers are consulted only
// when configured, and only after the modern check fails; a match
// triggers a write-through upgrade to the modern hash.
type LegacyVerifier interface {
	// Name is the config identifier for the algorithm.
	Name() string

	// Verify reports whether the password matches the stored legacy hash.
	// Unparseable hashes report false, indistinguishable from a mismatch.
	Verify(password, storedHash string) bool
}

// LegacyByName resolves a configured legacy algorithm identifier.
// An empty name disables legacy migration entirely.
func LegacyByName(name string) (LegacyVerifier, error) {
	switch strings.ToUpper(name) {
	case "":
		return nil, nil
	case "BCRYPT":
		return bcryptLegacy{}, nil
	case "AUTHME":
		return authMeLegacy{}, nil
	default:
		return nil, oops.Code("AUTH_UNKNOWN_LEGACY_HASH").
			With("algorithm", name).
			Errorf("unknown legacy hash algorithm: %s", name)
	}
}

// bcryptLegacy verifies $2a$/$2b$ hashes from bcrypt-era deployments.
type bcryptLegacy struct{}

func (bcryptLegacy) Name() string { return "BCRYPT" }

func (bcryptLegacy) Verify(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// authMeLegacy verifies AuthMe-style salted double-SHA256 hashes of the
// form $SHA$<salt>$<hex>, where hex = sha256(sha256(password) + salt).
type authMeLegacy struct{}

func (authMeLegacy) Name() string { return "AUTHME" }

func (authMeLegacy) Verify(password, storedHash string) bool {
	parts := strings.Split(storedHash, "$")
	// ["", "SHA", salt, hex]
	if len(parts) != 4 || parts[1] != "SHA" {
		return false
	}
	salt, expected := parts[2], parts[3]

	inner := sha256.Sum256([]byte(password))
	outer := sha256.Sum256([]byte(hex.EncodeToString(inner[:]) + salt))
	computed := hex.EncodeToString(outer[:])

	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(expected))) == 1
}

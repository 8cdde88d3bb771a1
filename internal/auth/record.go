// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"
	"crypto/md5" //nolint:gosec // G501: offline UUIDs are md5 name-based by protocol, not a credential
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// DefaultNicknamePattern matches the nicknames the vanilla protocol allows.
const DefaultNicknamePattern = `^[A-Za-z0-9_]{3,16}$`

// PlayerRecord is one registered identity. LowercaseNickname is the
// primary key and never changes once the record exists; Nickname keeps
// the display case as last seen. An empty PasswordHash marks a
// premium-only placeholder that requires no local password.
type PlayerRecord struct {
	Nickname          string
	LowercaseNickname string
	PasswordHash      string
	IP                string
	TotpSecret        string
	RegisteredAt      int64 // epoch millis, set at creation and never updated
	OfflineUUID       string
	OnlineUUID        string
}

// NewPlayerRecord creates a record for a freshly registered identity.
// The offline UUID is derived from the nickname and the registration
// time is stamped from the wall clock.
func NewPlayerRecord(nickname, passwordHash, ip string) *PlayerRecord {
	return &PlayerRecord{
		Nickname:          nickname,
		LowercaseNickname: NormalizeName(nickname),
		PasswordHash:      passwordHash,
		IP:                ip,
		RegisteredAt:      time.Now().UnixMilli(),
		OfflineUUID:       OfflineUUID(nickname).String(),
	}
}

// HasPassword reports whether the record carries a local password hash.
func (r *PlayerRecord) HasPassword() bool {
	return r.PasswordHash != ""
}

// HasTotp reports whether a one-time-code secret is enrolled.
func (r *PlayerRecord) HasTotp() bool {
	return r.TotpSecret != ""
}

// NormalizeName lowercases a nickname into its stable lookup key.
func NormalizeName(nickname string) string {
	return strings.ToLower(nickname)
}

// OfflineUUID derives the name-based UUID used for offline-mode
// connections. The derivation is the protocol's md5 "OfflinePlayer:"
// convention (a version 3 UUID without a namespace).
func OfflineUUID(nickname string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + nickname)) //nolint:gosec // G401: protocol-mandated derivation
	sum[6] = (sum[6] & 0x0f) | 0x30                     // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80                     // RFC 4122 variant
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		// md5.Sum is always 16 bytes; FromBytes cannot fail here.
		panic(err)
	}
	return id
}

// NicknameValidator validates connecting nicknames against a configured
// pattern before any auth session starts.
type NicknameValidator struct {
	pattern *regexp.Regexp
}

// NewNicknameValidator compiles the given pattern. An empty pattern
// falls back to DefaultNicknamePattern.
func NewNicknameValidator(pattern string) (*NicknameValidator, error) {
	if pattern == "" {
		pattern = DefaultNicknamePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_NICKNAME_PATTERN").
			With("pattern", pattern).
			Wrap(err)
	}
	return &NicknameValidator{pattern: re}, nil
}

// Valid reports whether the nickname matches the configured pattern.
func (v *NicknameValidator) Valid(nickname string) bool {
	return v.pattern.MatchString(nickname)
}

// CredentialStore manages PlayerRecord persistence. All operations are
// blocking round-trips to the backing store; callers must not hold
// locks across them.
type CredentialStore interface {
	// FindByName retrieves a record by nickname (normalized internally).
	// Returns ErrNotFound (wrapped) when no record exists.
	FindByName(ctx context.Context, nickname string) (*PlayerRecord, error)

	// FindByUUID retrieves a record whose offline or online UUID matches.
	FindByUUID(ctx context.Context, id string) (*PlayerRecord, error)

	// FindByIP retrieves every record whose stored IP matches.
	FindByIP(ctx context.Context, ip string) ([]*PlayerRecord, error)

	// CountWithPassword counts records for the normalized name that carry
	// a non-empty password hash.
	CountWithPassword(ctx context.Context, nickname string) (int64, error)

	// CountWithoutPassword counts records for the normalized name whose
	// password hash is empty (premium placeholders).
	CountWithoutPassword(ctx context.Context, nickname string) (int64, error)

	// CountAll returns the total number of registered records.
	CountAll(ctx context.Context) (int64, error)

	// Create stores a new record. Returns ErrDuplicateName (wrapped) when
	// the normalized name is already taken.
	Create(ctx context.Context, rec *PlayerRecord) error

	// Update rewrites an existing record in place. Returns ErrNotFound
	// (wrapped) when the row has vanished.
	Update(ctx context.Context, rec *PlayerRecord) error

	// Delete removes the record for the normalized name.
	Delete(ctx context.Context, nickname string) error
}

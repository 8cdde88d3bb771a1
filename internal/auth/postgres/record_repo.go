// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package postgres implements the auth credential store on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/limbogate/limbogate/internal/auth"
)

// poolIface is the subset of pgxpool.Pool the repository uses.
// pgxmock.PgxPoolIface satisfies it in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepository implements auth.CredentialStore using PostgreSQL.
type RecordRepository struct {
	pool poolIface
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(pool poolIface) *RecordRepository {
	return &RecordRepository{pool: pool}
}

const recordColumns = `nickname, lowercase_nickname, password_hash, ip,
	       totp_secret, registered_at, offline_uuid, online_uuid`

// FindByName retrieves a record by nickname, normalized internally.
func (r *RecordRepository) FindByName(ctx context.Context, nickname string) (*auth.PlayerRecord, error) {
	lowercase := auth.NormalizeName(nickname)
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM auth_players
		WHERE lowercase_nickname = $1
	`, lowercase)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RECORD_NOT_FOUND").
			With("nickname", lowercase).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RECORD_FIND_BY_NAME_FAILED").
			With("operation", "find record by name").
			With("nickname", lowercase).
			Wrap(err)
	}
	return rec, nil
}

// FindByUUID retrieves a record whose offline or online UUID matches.
func (r *RecordRepository) FindByUUID(ctx context.Context, id string) (*auth.PlayerRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM auth_players
		WHERE offline_uuid = $1 OR online_uuid = $1
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RECORD_NOT_FOUND").
			With("uuid", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RECORD_FIND_BY_UUID_FAILED").
			With("operation", "find record by uuid").
			With("uuid", id).
			Wrap(err)
	}
	return rec, nil
}

// FindByIP retrieves every record whose stored IP matches.
func (r *RecordRepository) FindByIP(ctx context.Context, ip string) ([]*auth.PlayerRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM auth_players
		WHERE ip = $1
	`, ip)
	if err != nil {
		return nil, oops.Code("RECORD_FIND_BY_IP_FAILED").
			With("operation", "find records by ip").
			With("ip", ip).
			Wrap(err)
	}
	defer rows.Close()

	var records []*auth.PlayerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, oops.Code("RECORD_FIND_BY_IP_FAILED").
				With("operation", "scan record row").
				With("ip", ip).
				Wrap(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("RECORD_FIND_BY_IP_FAILED").
			With("operation", "iterate record rows").
			With("ip", ip).
			Wrap(err)
	}
	return records, nil
}

// CountWithPassword counts records for the normalized name carrying a
// non-empty password hash.
func (r *RecordRepository) CountWithPassword(ctx context.Context, nickname string) (int64, error) {
	return r.countByName(ctx, nickname, `password_hash <> ''`)
}

// CountWithoutPassword counts records for the normalized name whose
// password hash is empty.
func (r *RecordRepository) CountWithoutPassword(ctx context.Context, nickname string) (int64, error) {
	return r.countByName(ctx, nickname, `password_hash = ''`)
}

func (r *RecordRepository) countByName(ctx context.Context, nickname, hashCond string) (int64, error) {
	lowercase := auth.NormalizeName(nickname)
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM auth_players
		WHERE lowercase_nickname = $1 AND `+hashCond, lowercase).Scan(&count)
	if err != nil {
		return 0, oops.Code("RECORD_COUNT_FAILED").
			With("operation", "count records by name").
			With("nickname", lowercase).
			Wrap(err)
	}
	return count, nil
}

// CountAll returns the total number of registered records.
func (r *RecordRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM auth_players`).Scan(&count)
	if err != nil {
		return 0, oops.Code("RECORD_COUNT_FAILED").
			With("operation", "count all records").
			Wrap(err)
	}
	return count, nil
}

// Create stores a new record.
func (r *RecordRepository) Create(ctx context.Context, rec *auth.PlayerRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_players (
			nickname, lowercase_nickname, password_hash, ip,
			totp_secret, registered_at, offline_uuid, online_uuid
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.Nickname,
		rec.LowercaseNickname,
		rec.PasswordHash,
		rec.IP,
		rec.TotpSecret,
		rec.RegisteredAt,
		rec.OfflineUUID,
		rec.OnlineUUID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("RECORD_DUPLICATE").
				With("nickname", rec.LowercaseNickname).
				Wrap(auth.ErrDuplicateName)
		}
		return oops.Code("RECORD_CREATE_FAILED").
			With("operation", "insert record").
			With("nickname", rec.LowercaseNickname).
			Wrap(err)
	}
	return nil
}

// Update rewrites an existing record in place.
func (r *RecordRepository) Update(ctx context.Context, rec *auth.PlayerRecord) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE auth_players SET
			nickname = $2,
			password_hash = $3,
			ip = $4,
			totp_secret = $5,
			offline_uuid = $6,
			online_uuid = $7
		WHERE lowercase_nickname = $1
	`,
		rec.LowercaseNickname,
		rec.Nickname,
		rec.PasswordHash,
		rec.IP,
		rec.TotpSecret,
		rec.OfflineUUID,
		rec.OnlineUUID,
	)
	if err != nil {
		return oops.Code("RECORD_UPDATE_FAILED").
			With("operation", "update record").
			With("nickname", rec.LowercaseNickname).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RECORD_NOT_FOUND").
			With("nickname", rec.LowercaseNickname).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes the record for the normalized name.
func (r *RecordRepository) Delete(ctx context.Context, nickname string) error {
	lowercase := auth.NormalizeName(nickname)
	result, err := r.pool.Exec(ctx, `
		DELETE FROM auth_players WHERE lowercase_nickname = $1
	`, lowercase)
	if err != nil {
		return oops.Code("RECORD_DELETE_FAILED").
			With("operation", "delete record").
			With("nickname", lowercase).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RECORD_NOT_FOUND").
			With("nickname", lowercase).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanRecord scans a single row into a PlayerRecord.
// Callers are responsible for handling pgx.ErrNoRows.
func scanRecord(row pgx.Row) (*auth.PlayerRecord, error) {
	var rec auth.PlayerRecord
	err := row.Scan(
		&rec.Nickname,
		&rec.LowercaseNickname,
		&rec.PasswordHash,
		&rec.IP,
		&rec.TotpSecret,
		&rec.RegisteredAt,
		&rec.OfflineUUID,
		&rec.OnlineUUID,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("RECORD_SCAN_FAILED").
			With("operation", "scan record").
			Wrap(err)
	}
	return &rec, nil
}

// Compile-time interface check.
var _ auth.CredentialStore = (*RecordRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package store

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// expectedColumn is one column the auth_players table must carry.
type expectedColumn struct {
	name       string
	definition string
}

// authPlayersColumns is the full expected column set, in declaration
// order. New versions append here; columns are never dropped or
// renamed, so older rows keep working with the defaults.
var authPlayersColumns = []expectedColumn{
	{"lowercase_nickname", "TEXT NOT NULL DEFAULT ''"},
	{"nickname", "TEXT NOT NULL DEFAULT ''"},
	{"password_hash", "TEXT NOT NULL DEFAULT ''"},
	{"ip", "TEXT NOT NULL DEFAULT ''"},
	{"totp_secret", "TEXT NOT NULL DEFAULT ''"},
	{"registered_at", "BIGINT NOT NULL DEFAULT 0"},
	{"offline_uuid", "TEXT NOT NULL DEFAULT ''"},
	{"online_uuid", "TEXT NOT NULL DEFAULT ''"},
}

// schemaConn is the subset of pgxpool.Pool the reconciler uses.
// pgxmock.PgxPoolIface satisfies it in tests.
type schemaConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ReconcileSchema adds any expected auth_players columns missing from
// the live schema. It only ever adds columns, never drops or renames,
// and is safe to run on every start.
func ReconcileSchema(ctx context.Context, conn schemaConn, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rows, err := conn.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = 'auth_players'
	`)
	if err != nil {
		return oops.Code("SCHEMA_RECONCILE_FAILED").
			With("operation", "list columns").
			Wrap(err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return oops.Code("SCHEMA_RECONCILE_FAILED").
				With("operation", "scan column name").
				Wrap(err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return oops.Code("SCHEMA_RECONCILE_FAILED").
			With("operation", "iterate columns").
			Wrap(err)
	}

	for _, col := range authPlayersColumns {
		if _, ok := existing[col.name]; ok {
			continue
		}
		// Column names come from the static list above, never from input.
		_, err := conn.Exec(ctx,
			`ALTER TABLE auth_players ADD COLUMN IF NOT EXISTS `+col.name+` `+col.definition)
		if err != nil {
			return oops.Code("SCHEMA_RECONCILE_FAILED").
				With("operation", "add column").
				With("column", col.name).
				Wrap(err)
		}
		logger.InfoContext(ctx, "added missing column", slog.String("column", col.name))
	}
	return nil
}

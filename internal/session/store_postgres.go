// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/database/schema"
)

// PostgresBackend implements [Backend] using PostgreSQL.
//
// # When to use
//
// Deployments that want sessions to survive a Redis flush, or that audit
// session writes alongside the rest of their relational data, configure this
// backend instead of (or behind) Redis. One row per identity domain.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a new PostgreSQL-backed session [Backend].
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

/*
Put upserts the sealed blob for a domain into sessions.record.

Parameters:
  - ctx: context.Context
  - domain: Domain
  - blob: string

Returns:
  - error: Persistence failures
*/
func (backend *PostgresBackend) Put(ctx context.Context, domain Domain, blob string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		schema.SessionRecord.Table, schema.SessionRecord.Domain, schema.SessionRecord.Blob, schema.SessionRecord.UpdatedAt,
		schema.SessionRecord.Domain,
		schema.SessionRecord.Blob, schema.SessionRecord.Blob, schema.SessionRecord.UpdatedAt, schema.SessionRecord.UpdatedAt,
	)

	if _, err := backend.pool.Exec(ctx, query, string(domain), blob, time.Now()); err != nil {
		return fmt.Errorf("postgres_session_put_failed: %w", err)
	}

	return nil
}

/*
Fetch returns the sealed blob for a domain.

Returns [apperr.NotFound] if no row exists.

Parameters:
  - ctx: context.Context
  - domain: Domain

Returns:
  - string: Sealed blob
  - error: apperr.NotFound or retrieval failures
*/
func (backend *PostgresBackend) Fetch(ctx context.Context, domain Domain) (string, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		schema.SessionRecord.Blob, schema.SessionRecord.Table, schema.SessionRecord.Domain,
	)

	var blob string
	if err := backend.pool.QueryRow(ctx, query, string(domain)).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("Session")
		}
		return "", fmt.Errorf("postgres_session_fetch_failed: %w", err)
	}

	return blob, nil
}

/*
Purge deletes the domain's session row. Zero rows affected is success:
the operation is idempotent.

Parameters:
  - ctx: context.Context
  - domain: Domain

Returns:
  - error: Deletion failures
*/
func (backend *PostgresBackend) Purge(ctx context.Context, domain Domain) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1`,
		schema.SessionRecord.Table, schema.SessionRecord.Domain,
	)

	if _, err := backend.pool.Exec(ctx, query, string(domain)); err != nil {
		return fmt.Errorf("postgres_session_purge_failed: %w", err)
	}

	return nil
}

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/sec"
)

// Store is the session façade injected into every domain client.
//
// # Absence Policy
//
// A corrupt stored record (failed unsealing or JSON decode) is treated as
// "no session": the entry is purged, the event is logged, and the caller
// sees an absent session — never an error. This keeps a poisoned storage
// entry from wedging the storefront.
type Store struct {
	backend Backend
	sealer  *sec.Sealer
	log     *slog.Logger
}

// NewStore constructs a [Store] over the given backend.
func NewStore(backend Backend, sealer *sec.Sealer, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		sealer:  sealer,
		log:     logger,
	}
}

// Set persists a session for the domain, replacing any existing one.
//
// The token and profile are written as a single sealed record. When the
// caller provides no expiry and the token happens to be a JWT, the advisory
// expiry is filled from the token's 'exp' claim.
//
// # Business Rules
//   - Token shape is never validated; it is an opaque backend credential.
//   - Expiry is advisory: recorded, never locally enforced.
func (store *Store) Set(ctx context.Context, domain Domain, token string, profile *Profile, expiresAt *time.Time) error {
	if !domain.Valid() {
		return apperr.ValidationError(fmt.Sprintf("Unknown session domain %q", domain))
	}
	if token == "" {
		return apperr.ValidationError("Session token must not be empty")
	}

	// Fill the advisory expiry from the token's own claims when absent.
	if expiresAt == nil {
		if claimExpiry, ok := sec.TokenExpiry(token); ok {
			expiresAt = &claimExpiry
		}
	}

	record := Session{
		Domain:    domain,
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   profile,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("session_store_encode_failed: %w", err)
	}

	blob, err := store.sealer.Seal(payload)
	if err != nil {
		return fmt.Errorf("session_store_seal_failed: %w", err)
	}

	if err := store.backend.Put(ctx, domain, blob); err != nil {
		return fmt.Errorf("session_store_put_failed: %w", err)
	}

	return nil
}

// Get returns the session for a domain, or (nil, nil) when absent.
//
// Corrupt records are purged and read as absent. Only infrastructure
// failures (backend unreachable) surface as errors.
func (store *Store) Get(ctx context.Context, domain Domain) (*Session, error) {
	blob, err := store.backend.Fetch(ctx, domain)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("session_store_fetch_failed: %w", err)
	}

	payload, err := store.sealer.Open(blob)
	if err != nil {
		if errors.Is(err, sec.ErrSealCorrupt) {
			store.purgeCorrupt(ctx, domain, err)
			return nil, nil
		}
		return nil, fmt.Errorf("session_store_unseal_failed: %w", err)
	}

	record := &Session{}
	if err := json.Unmarshal(payload, record); err != nil {
		store.purgeCorrupt(ctx, domain, err)
		return nil, nil
	}

	return record, nil
}

// Token returns the bearer credential for a domain.
//
// Any failure (absent, corrupt, backend down) reads as "no token": requests
// simply go out anonymous and the backend decides.
func (store *Store) Token(ctx context.Context, domain Domain) (string, bool) {
	record, err := store.Get(ctx, domain)
	if err != nil || record == nil {
		return "", false
	}
	return record.Token, true
}

// Profile returns the cached user record for a domain, or absent.
func (store *Store) Profile(ctx context.Context, domain Domain) (*Profile, bool) {
	record, err := store.Get(ctx, domain)
	if err != nil || record == nil || record.Profile == nil {
		return nil, false
	}
	return record.Profile, true
}

// IsAuthenticated reports token presence only. It does not check expiry —
// the reactive 401 model is the sole authority on token validity.
func (store *Store) IsAuthenticated(ctx context.Context, domain Domain) bool {
	_, ok := store.Token(ctx, domain)
	return ok
}

// Clear removes the session for a domain. Safe to call when nothing is
// stored.
func (store *Store) Clear(ctx context.Context, domain Domain) error {
	if err := store.backend.Purge(ctx, domain); err != nil {
		return fmt.Errorf("session_store_clear_failed: %w", err)
	}
	return nil
}

// purgeCorrupt removes a poisoned record and logs the incident.
func (store *Store) purgeCorrupt(ctx context.Context, domain Domain, cause error) {
	store.log.WarnContext(ctx, "session_record_corrupt_purged",
		slog.String("domain", string(domain)),
		slog.Any("cause", cause),
	)

	if err := store.backend.Purge(ctx, domain); err != nil {
		store.log.ErrorContext(ctx, "session_corrupt_purge_failed",
			slog.String("domain", string(domain)),
			slog.Any("error", err),
		)
	}
}

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/constants"
)

// RedisBackend implements [Backend] using Redis. It is the primary backend:
// sessions are hot, small, and benefit from native TTL handling.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a new Redis-backed session [Backend].
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// redisKey builds the fixed per-domain storage key.
func redisKey(domain Domain) string {
	return constants.SessionKeyPrefix + string(domain)
}

/*
Put stores the sealed blob under the domain's fixed key.

The TTL bounds how long an untouched session survives; every Put resets it.

Parameters:
  - context: context.Context
  - domain: Domain
  - blob: string

Returns:
  - error: Persistence failures
*/
func (backend *RedisBackend) Put(context context.Context, domain Domain, blob string) error {
	if err := backend.client.Set(context, redisKey(domain), blob, constants.SessionTTL).Err(); err != nil {
		return fmt.Errorf("redis_session_put_failed: %w", err)
	}
	return nil
}

/*
Fetch returns the sealed blob for the domain.

Description: Returns apperr.NotFound when no session is stored.

Parameters:
  - context: context.Context
  - domain: Domain

Returns:
  - string: Sealed blob
  - error: apperr.NotFound or connectivity errors
*/
func (backend *RedisBackend) Fetch(context context.Context, domain Domain) (string, error) {
	blob, err := backend.client.Get(context, redisKey(domain)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Session")
		}
		return "", fmt.Errorf("redis_session_fetch_failed: %w", err)
	}
	return blob, nil
}

/*
Purge removes the domain's session record. Deleting an absent key is a no-op
in Redis, which gives us idempotency for free.

Parameters:
  - context: context.Context
  - domain: Domain

Returns:
  - error: Deletion failures
*/
func (backend *RedisBackend) Purge(context context.Context, domain Domain) error {
	if err := backend.client.Del(context, redisKey(domain)).Err(); err != nil {
		return fmt.Errorf("redis_session_purge_failed: %w", err)
	}
	return nil
}

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package querycache implements the client-side cache of server-derived state.

Every read the storefront performs is tracked under a semantic [Key]
(e.g. "cart:customer", "admin:orders:page:2") together with its staleness
window and a monotonically increasing epoch. Mutations declare which keys
they make stale; latency-sensitive mutations additionally apply their
expected effect optimistically and roll back on failure.

Architecture:

  - Cache: The keyed entry table. Per-key wholesale replacement under one
    mutex; entries are never merged field-by-field.
  - Query: A typed read binding (key + fetch function + staleness window).
  - Mutation: The reusable three-phase optimistic protocol
    (snapshot → apply → commit-or-rollback).
  - Broadcaster: Optional cross-instance invalidation fan-out (Redis pub/sub).

Epochs exist for one reason: a slow response must never overwrite state that
a newer request has already refreshed. Every invalidation bumps the key's
epoch; a write carrying an older epoch is discarded.
*/
package querycache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// # Cache Keys

// Key is a semantic cache identifier. Keys are flat strings with colon-
// separated segments so whole families can be matched by prefix.
type Key string

// HasPrefix reports whether the key belongs to the given family.
func (k Key) HasPrefix(family string) bool {
	return strings.HasPrefix(string(k), family)
}

// # Entries

// entry is one cached record. Entries are replaced wholesale — a mutation
// scoped to key A can never interleave with one scoped to key B.
type entry struct {
	value       any
	fetchedAt   time.Time
	staleAfter  time.Duration
	epoch       uint64
	invalidated bool
}

// fresh reports whether the entry may be served without a refetch.
func (e *entry) fresh(now time.Time) bool {
	if e.invalidated {
		return false
	}
	// A zero window means "always stale": volatile reads refetch every time.
	if e.staleAfter <= 0 {
		return false
	}
	return now.Sub(e.fetchedAt) < e.staleAfter
}

// # Cache

// Broadcaster fans invalidations out to other gateway instances. It is
// optional; a nil broadcaster keeps all invalidation local.
type Broadcaster interface {
	// Publish announces that the given keys became stale.
	Publish(ctx context.Context, keys []Key) error
}

// Cache is the process-wide query cache.
//
// # Concurrency
//
// All operations are safe for concurrent use. The single mutex is held only
// for map bookkeeping, never across a network fetch.
type Cache struct {
	mu          sync.Mutex
	entries     map[Key]*entry
	broadcaster Broadcaster
	log         *slog.Logger
}

// CacheOption customizes a [Cache] at construction time.
type CacheOption func(*Cache)

// WithBroadcaster wires cross-instance invalidation fan-out.
func WithBroadcaster(b Broadcaster) CacheOption {
	return func(c *Cache) { c.broadcaster = b }
}

// WithLogger substitutes the structured logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.log = logger }
}

// New constructs an empty [Cache].
func New(opts ...CacheOption) *Cache {
	cache := &Cache{
		entries: make(map[Key]*entry),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// # Invalidation

// Invalidate marks the given keys stale, bumps their epochs, and broadcasts
// the invalidation to peer instances. Cached values stay readable via Peek
// until the next fetch replaces them.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) {
	c.invalidateLocal(keys...)
	c.broadcast(ctx, keys)
}

// InvalidateMatch marks every key satisfying the predicate stale. This is
// how a whole family ("all admin customer-order queries") goes stale from
// one mutation.
func (c *Cache) InvalidateMatch(ctx context.Context, match func(Key) bool) {
	c.mu.Lock()
	matched := make([]Key, 0)
	for key, cached := range c.entries {
		if match(key) {
			cached.invalidated = true
			cached.epoch++
			matched = append(matched, key)
		}
	}
	c.mu.Unlock()

	c.broadcast(ctx, matched)
}

// InvalidateLocal marks keys stale without broadcasting. Used when applying
// invalidations received FROM the broadcast channel, so they do not echo.
func (c *Cache) InvalidateLocal(keys ...Key) {
	c.invalidateLocal(keys...)
}

func (c *Cache) invalidateLocal(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		cached, ok := c.entries[key]
		if !ok {
			// Nothing cached yet; an absent entry is already "stale".
			continue
		}
		cached.invalidated = true
		cached.epoch++
	}
}

func (c *Cache) broadcast(ctx context.Context, keys []Key) {
	if c.broadcaster == nil || len(keys) == 0 {
		return
	}
	if err := c.broadcaster.Publish(ctx, keys); err != nil {
		// Peers fall back to their own staleness windows; the local
		// invalidation already happened.
		c.log.WarnContext(ctx, "cache_invalidation_broadcast_failed",
			slog.Int("keys", len(keys)),
			slog.Any("error", err),
		)
	}
}

// # Raw Entry Access (used by Query and Mutation)

// peek returns the cached value, its epoch, and whether it can be served
// fresh. The value is returned even when stale so optimistic mutations can
// snapshot it.
func (c *Cache) peek(key Key) (value any, epoch uint64, ok bool, isFresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, exists := c.entries[key]
	if !exists {
		return nil, 0, false, false
	}
	return cached.value, cached.epoch, true, cached.fresh(time.Now())
}

// epochOf returns the current epoch for a key (zero when absent).
func (c *Cache) epochOf(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.entries[key]; ok {
		return cached.epoch
	}
	return 0
}

// store writes a fetched value if — and only if — the key's epoch still
// matches what the fetch observed when it started. A stale response loses
// the race silently; the fresher state already in the cache wins.
func (c *Cache) store(key Key, value any, staleAfter time.Duration, observedEpoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, exists := c.entries[key]
	if exists && cached.epoch != observedEpoch {
		return false
	}

	if !exists {
		cached = &entry{}
		c.entries[key] = cached
	}

	cached.value = value
	cached.fetchedAt = time.Now()
	cached.staleAfter = staleAfter
	cached.invalidated = false
	return true
}

// restore puts a snapshot back verbatim and forces the next read to refetch.
// The epoch is bumped so any still-in-flight write from the failed attempt
// is discarded when it lands.
func (c *Cache) restore(key Key, snapshot any, hadValue bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !hadValue {
		delete(c.entries, key)
		return
	}

	cached, exists := c.entries[key]
	if !exists {
		cached = &entry{}
		c.entries[key] = cached
	}
	cached.value = snapshot
	cached.invalidated = true
	cached.epoch++
}

// overwrite replaces a key's value unconditionally, bumping the epoch. Used
// by the optimistic apply step, which must win over any in-flight fetch.
func (c *Cache) overwrite(key Key, value any, staleAfter time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, exists := c.entries[key]
	if !exists {
		cached = &entry{}
		c.entries[key] = cached
	}
	cached.value = value
	cached.fetchedAt = time.Now()
	cached.staleAfter = staleAfter
	cached.invalidated = false
	cached.epoch++
}

// Drop removes keys entirely (logout wipes a domain's cached reads).
func (c *Cache) Drop(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
}

// DropMatch removes every key satisfying the predicate.
func (c *Cache) DropMatch(match func(Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
		}
	}
}

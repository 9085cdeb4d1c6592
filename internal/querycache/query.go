// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package querycache

import (
	"context"
	"time"
)

// Query is a typed read binding: one cache key, one fetch function, one
// staleness window.
//
// # Staleness Policy
//
// Volatile reads (cart, wishlist) use a zero StaleAfter — always stale,
// refetched on every access. Slow-changing reads (brands, categories) use a
// multi-minute window to reduce request volume.
type Query[T any] struct {
	// Cache is the backing entry table.
	Cache *Cache

	// Key is the semantic identifier this read is tracked under.
	Key Key

	// StaleAfter is the freshness window. Zero means "always stale".
	StaleAfter time.Duration

	// Fetch loads the current server truth.
	Fetch func(ctx context.Context) (T, error)
}

// Get returns the cached value when fresh, otherwise fetches.
//
// # Race Tolerance
//
// The epoch is observed before the fetch starts. If an invalidation (or an
// optimistic apply) lands while the fetch is in flight, the write is
// discarded — the refetch triggered by that invalidation will carry the
// newer truth. The caller still receives the value its own fetch returned.
func (q Query[T]) Get(ctx context.Context) (T, error) {
	if value, _, ok, isFresh := q.Cache.peek(q.Key); ok && isFresh {
		if typed, valid := value.(T); valid {
			return typed, nil
		}
		// A type clash means the key is shared with different bindings —
		// treat as a miss and let the fetch repair it.
	}

	observedEpoch := q.Cache.epochOf(q.Key)

	fetched, err := q.Fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	q.Cache.store(q.Key, fetched, q.StaleAfter, observedEpoch)
	return fetched, nil
}

// Peek returns whatever is cached, fresh or stale, without any network
// activity. Optimistic flows and render-while-revalidate callers use it.
func (q Query[T]) Peek() (T, bool) {
	value, _, ok, _ := q.Cache.peek(q.Key)
	if !ok {
		var zero T
		return zero, false
	}

	typed, valid := value.(T)
	if !valid {
		var zero T
		return zero, false
	}
	return typed, true
}

// Refresh forces a fetch regardless of freshness.
func (q Query[T]) Refresh(ctx context.Context) (T, error) {
	q.Cache.InvalidateLocal(q.Key)
	return q.Get(ctx)
}

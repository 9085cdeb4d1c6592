// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package querycache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltora-energy/storefront/internal/querycache"
)

/*
TestQuery_ServesFreshFromCache verifies a read inside its staleness window
issues no second fetch.
*/
func TestQuery_ServesFreshFromCache(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	var fetches int
	query := querycache.Query[[]string]{
		Cache:      cache,
		Key:        "catalog:brands",
		StaleAfter: 5 * time.Minute,
		Fetch: func(ctx context.Context) ([]string, error) {
			fetches++
			return []string{"SunPro", "Helionix"}, nil
		},
	}

	first, err := query.Get(ctx)
	require.NoError(t, err)
	second, err := query.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches, "second read must come from cache")
}

/*
TestQuery_VolatileAlwaysRefetches verifies a zero staleness window refetches
on every access.
*/
func TestQuery_VolatileAlwaysRefetches(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	var fetches int
	query := querycache.Query[int]{
		Cache:      cache,
		Key:        "cart:customer",
		StaleAfter: 0,
		Fetch: func(ctx context.Context) (int, error) {
			fetches++
			return fetches, nil
		},
	}

	_, _ = query.Get(ctx)
	value, err := query.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
	assert.Equal(t, 2, fetches)
}

/*
TestQuery_InvalidationForcesRefetch verifies Invalidate marks a fresh entry
stale.
*/
func TestQuery_InvalidationForcesRefetch(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	var fetches int
	query := querycache.Query[int]{
		Cache:      cache,
		Key:        "catalog:categories",
		StaleAfter: time.Hour,
		Fetch: func(ctx context.Context) (int, error) {
			fetches++
			return fetches, nil
		},
	}

	_, _ = query.Get(ctx)
	cache.Invalidate(ctx, "catalog:categories")
	_, _ = query.Get(ctx)

	assert.Equal(t, 2, fetches)
}

/*
TestQuery_StaleResponseLosesTheRace verifies the epoch rule: a fetch that
started before an invalidation must not overwrite the state written after it.
*/
func TestQuery_StaleResponseLosesTheRace(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	seed := querycache.Query[string]{
		Cache:      cache,
		Key:        "product:p-1",
		StaleAfter: time.Hour,
		Fetch: func(ctx context.Context) (string, error) {
			return "seed", nil
		},
	}
	_, err := seed.Get(ctx)
	require.NoError(t, err)
	cache.Invalidate(ctx, "product:p-1")

	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})

	slow := querycache.Query[string]{
		Cache:      cache,
		Key:        "product:p-1",
		StaleAfter: time.Hour,
		Fetch: func(ctx context.Context) (string, error) {
			close(slowStarted)
			<-slowRelease
			return "old-truth", nil
		},
	}

	fast := querycache.Query[string]{
		Cache:      cache,
		Key:        "product:p-1",
		StaleAfter: time.Hour,
		Fetch: func(ctx context.Context) (string, error) {
			return "new-truth", nil
		},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = slow.Get(ctx)
	}()

	<-slowStarted

	// The invalidation (e.g. a newer mutation) lands mid-flight, then a
	// fresh fetch writes the new truth.
	cache.Invalidate(ctx, "product:p-1")
	_, err = fast.Get(ctx)
	require.NoError(t, err)

	close(slowRelease)
	<-done

	cached, ok := fast.Peek()
	require.True(t, ok)
	assert.Equal(t, "new-truth", cached, "the slow response must be discarded")
}

/*
TestCache_PredicateInvalidation verifies family invalidation via prefix
matching.
*/
func TestCache_PredicateInvalidation(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	fetchCounts := map[querycache.Key]int{}
	makeQuery := func(key querycache.Key) querycache.Query[int] {
		return querycache.Query[int]{
			Cache:      cache,
			Key:        key,
			StaleAfter: time.Hour,
			Fetch: func(ctx context.Context) (int, error) {
				fetchCounts[key]++
				return fetchCounts[key], nil
			},
		}
	}

	orders1 := makeQuery("admin:orders:page:1")
	orders2 := makeQuery("admin:orders:page:2")
	coupons := makeQuery("admin:coupons:page:1")

	_, _ = orders1.Get(ctx)
	_, _ = orders2.Get(ctx)
	_, _ = coupons.Get(ctx)

	// One mutation invalidates the whole order-query family.
	cache.InvalidateMatch(ctx, func(key querycache.Key) bool {
		return key.HasPrefix("admin:orders:")
	})

	_, _ = orders1.Get(ctx)
	_, _ = orders2.Get(ctx)
	_, _ = coupons.Get(ctx)

	assert.Equal(t, 2, fetchCounts["admin:orders:page:1"])
	assert.Equal(t, 2, fetchCounts["admin:orders:page:2"])
	assert.Equal(t, 1, fetchCounts["admin:coupons:page:1"], "unrelated family must stay fresh")
}

type recordingBroadcaster struct {
	published [][]querycache.Key
}

func (r *recordingBroadcaster) Publish(_ context.Context, keys []querycache.Key) error {
	r.published = append(r.published, keys)
	return nil
}

/*
TestCache_BroadcastAndEchoSuppression verifies Invalidate fans out to peers
while InvalidateLocal (the receive path) does not echo back.
*/
func TestCache_BroadcastAndEchoSuppression(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	cache := querycache.New(querycache.WithBroadcaster(broadcaster))
	ctx := context.Background()

	seed := querycache.Query[int]{
		Cache: cache,
		Key:   "cart:customer",
		Fetch: func(ctx context.Context) (int, error) { return 1, nil },
	}
	_, err := seed.Get(ctx)
	require.NoError(t, err)

	cache.Invalidate(ctx, "cart:customer")
	require.Len(t, broadcaster.published, 1)
	assert.Equal(t, []querycache.Key{"cart:customer"}, broadcaster.published[0])

	cache.InvalidateLocal("cart:customer")
	assert.Len(t, broadcaster.published, 1, "peer-received invalidations must not echo")
}

/*
TestMutation_OptimisticCommit verifies the apply step lands before the
network call and survives a successful commit untouched.
*/
func TestMutation_OptimisticCommit(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	seed := querycache.Query[[]string]{
		Cache: cache,
		Key:   "wishlist:customer",
		Fetch: func(ctx context.Context) ([]string, error) {
			return []string{"w-1", "w-2", "w-3"}, nil
		},
	}
	_, err := seed.Get(ctx)
	require.NoError(t, err)

	var duringRequest []string
	mutation := querycache.Mutation[[]string]{
		Cache: cache,
		Key:   "wishlist:customer",
		Apply: func(current []string) []string {
			next := make([]string, 0, len(current))
			for _, id := range current {
				if id != "w-2" {
					next = append(next, id)
				}
			}
			return next
		},
		Perform: func(ctx context.Context) error {
			// The cache must already reflect the removal here.
			duringRequest, _ = seed.Peek()
			return nil
		},
	}

	require.NoError(t, mutation.Run(ctx))
	assert.Equal(t, []string{"w-1", "w-3"}, duringRequest)

	after, ok := seed.Peek()
	require.True(t, ok)
	assert.Equal(t, []string{"w-1", "w-3"}, after)
}

/*
TestMutation_RollbackRestoresExactSnapshot verifies failure restores the
pre-mutation collection including ordering, and leaves the key stale so the
next read reconciles with the server.
*/
func TestMutation_RollbackRestoresExactSnapshot(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	original := []string{"w-1", "w-2", "w-3"}
	var fetches int
	seed := querycache.Query[[]string]{
		Cache:      cache,
		Key:        "wishlist:customer",
		StaleAfter: time.Hour,
		Fetch: func(ctx context.Context) ([]string, error) {
			fetches++
			return original, nil
		},
	}
	_, err := seed.Get(ctx)
	require.NoError(t, err)

	mutation := querycache.Mutation[[]string]{
		Cache: cache,
		Key:   "wishlist:customer",
		Apply: func(current []string) []string {
			return current[:1]
		},
		Perform: func(ctx context.Context) error {
			return errors.New("backend rejected the removal")
		},
	}

	require.Error(t, mutation.Run(ctx))

	// The exact snapshot is back, ordering included.
	cached, ok := seed.Peek()
	require.True(t, ok)
	assert.Equal(t, original, cached)

	// And the key was left stale: the next Get refetches server truth.
	_, err = seed.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

/*
TestMutation_DeclaredInvalidations verifies a plain (non-optimistic)
mutation marks its declared keys stale after success.
*/
func TestMutation_DeclaredInvalidations(t *testing.T) {
	cache := querycache.New()
	ctx := context.Background()

	var fetches int
	cartQuery := querycache.Query[int]{
		Cache:      cache,
		Key:        "cart:customer",
		StaleAfter: time.Hour,
		Fetch: func(ctx context.Context) (int, error) {
			fetches++
			return fetches, nil
		},
	}
	_, _ = cartQuery.Get(ctx)

	mutation := querycache.Mutation[int]{
		Cache:       cache,
		Perform:     func(ctx context.Context) error { return nil },
		Invalidates: []querycache.Key{"cart:customer"},
	}
	require.NoError(t, mutation.Run(ctx))

	_, _ = cartQuery.Get(ctx)
	assert.Equal(t, 2, fetches)
}

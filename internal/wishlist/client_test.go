// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package wishlist_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/sec"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/internal/session"
	"github.com/voltora-energy/storefront/internal/wishlist"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	client   *wishlist.Client
	cache    *querycache.Cache
	sessions *session.Store
}

func newFixture(t *testing.T, handler http.HandlerFunc) fixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sealer, err := sec.NewSealer(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewStore(session.NewMemoryBackend(), sealer, logger)
	require.NoError(t, sessions.Set(context.Background(), session.DomainCustomer, "tok-wish", nil, nil))

	api := httpapi.NewClient(session.DomainCustomer, server.URL, sessions)
	cache := querycache.New()

	return fixture{
		client:   wishlist.NewClient(api, cache, logger),
		cache:    cache,
		sessions: sessions,
	}
}

const threeItems = `{"wishlist":[` +
	`{"id":"w-1","product_id":"p-1","product":{"name":"400W Panel"}},` +
	`{"id":"w-2","product_id":"p-2","product":{"name":"Hybrid Inverter"}},` +
	`{"id":"w-3","product_id":"p-3","product":{"name":"LiFePO4 Battery"}}]}`

/*
TestItems_NormalizesLegacyShape verifies the wishlist read handles the
object-wrapped legacy payload and addresses entries by entry id.
*/
func TestItems_NormalizesLegacyShape(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(threeItems))
	})

	items, err := f.client.Items(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "w-2", items[1].ID)
	assert.Equal(t, "p-2", items[1].ProductID)
	assert.Equal(t, "Hybrid Inverter", items[1].Product.Name)
}

/*
TestItems_SurfacesReadFailure verifies wishlist reads are NOT absorbed into
an empty collection: the page needs the error for its retry affordance.
*/
func TestItems_SurfacesReadFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := f.client.Items(context.Background())
	assert.Error(t, err)
}

/*
TestRemove_OptimisticWithRollback verifies the full three-phase protocol:
N−1 items visible before the server answers, exact N-item ordering restored
when the server rejects the removal.
*/
func TestRemove_OptimisticWithRollback(t *testing.T) {
	var mu sync.Mutex
	var requestStarted, release chan struct{}
	failRemoval := false

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			mu.Lock()
			started, gate := requestStarted, release
			fail := failRemoval
			mu.Unlock()
			if started != nil {
				close(started)
				<-gate
			}
			if fail {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"Removal rejected"}`))
				return
			}
		}
		_, _ = w.Write([]byte(threeItems))
	})
	ctx := context.Background()

	original, err := f.client.Items(ctx)
	require.NoError(t, err)
	require.Len(t, original, 3)

	peek := querycache.Query[[]wishlist.Item]{Cache: f.cache, Key: wishlist.CacheKey}

	// 1. The optimistic phase: entry gone from the cache while the request
	//    is still in flight.
	mu.Lock()
	requestStarted = make(chan struct{})
	release = make(chan struct{})
	mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- f.client.Remove(ctx, "w-2") }()
	<-requestStarted

	during, ok := peek.Peek()
	require.True(t, ok)
	require.Len(t, during, 2)
	assert.Equal(t, []string{"w-1", "w-3"}, ids(during))

	close(release)
	require.NoError(t, <-done)

	// 2. The rollback phase: a rejected removal restores the exact original
	//    collection, ordering included.
	_, err = f.client.Items(ctx)
	require.NoError(t, err)

	mu.Lock()
	requestStarted, release = nil, nil
	failRemoval = true
	mu.Unlock()

	err = f.client.Remove(ctx, "w-1")
	require.Error(t, err)

	restored, ok := peek.Peek()
	require.True(t, ok)
	assert.Equal(t, []string{"w-1", "w-2", "w-3"}, ids(restored))
}

/*
TestRemove_NotFoundCountsAsSuccess verifies idempotent-delete semantics: an
entry already gone on the server is a successful removal, not a rollback.
*/
func TestRemove_NotFoundCountsAsSuccess(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Wishlist entry"}`))
			return
		}
		_, _ = w.Write([]byte(threeItems))
	})
	ctx := context.Background()

	_, err := f.client.Items(ctx)
	require.NoError(t, err)

	require.NoError(t, f.client.Remove(ctx, "w-3"))

	peek := querycache.Query[[]wishlist.Item]{Cache: f.cache, Key: wishlist.CacheKey}
	remaining, ok := peek.Peek()
	require.True(t, ok)
	assert.Equal(t, []string{"w-1", "w-2"}, ids(remaining), "optimistic state stands")
}

/*
TestRemove_RequiresEntryID verifies removal is addressed by entry id and an
empty id never reaches the network.
*/
func TestRemove_RequiresEntryID(t *testing.T) {
	var calls int
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	err := f.client.Remove(context.Background(), "")

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Equal(t, 0, calls)
}

func ids(items []wishlist.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

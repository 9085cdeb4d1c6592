// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package admin

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/pkg/pagination"
)

// Collection is the typed accessor every dashboard resource (orders,
// coupons, brands, ...) shares: paginated list, detail, create, update,
// delete. Writes invalidate the resource's whole key family so every
// cached page and detail goes stale together.
type Collection[T any] struct {
	client     *Client
	path       string
	family     string
	staleAfter time.Duration
}

func newCollection[T any](client *Client, path, family string, staleAfter time.Duration) Collection[T] {
	return Collection[T]{
		client:     client,
		path:       path,
		family:     family,
		staleAfter: staleAfter,
	}
}

func (c Collection[T]) requireSession(ctx context.Context, operation string) error {
	if !c.client.api.Sessions().IsAuthenticated(ctx, c.client.api.Domain()) {
		return apperr.LoginRequired(operation)
	}
	return nil
}

// listKey tracks one page of the collection in the query cache.
func (c Collection[T]) listKey(params pagination.Params) querycache.Key {
	params = params.Normalize()
	return querycache.Key(c.family + ":page:" + strconv.Itoa(params.Page) + ":limit:" + strconv.Itoa(params.Limit))
}

func (c Collection[T]) detailKey(id string) querycache.Key {
	return querycache.Key(c.family + ":detail:" + id)
}

// familyMatch invalidates every cached page and detail of this resource.
func (c Collection[T]) familyMatch(key querycache.Key) bool {
	return key.HasPrefix(c.family + ":")
}

/*
List fetches one page of the collection.
*/
func (c Collection[T]) List(ctx context.Context, params pagination.Params) ([]T, error) {
	if err := c.requireSession(ctx, "admin_list"); err != nil {
		return nil, err
	}

	query := querycache.Query[[]T]{
		Cache:      c.client.cache,
		Key:        c.listKey(params),
		StaleAfter: c.staleAfter,
		Fetch: func(ctx context.Context) ([]T, error) {
			var raw json.RawMessage
			if err := c.client.api.Get(ctx, c.path, params.Values(), &raw); err != nil {
				return nil, err
			}

			var items []T
			if err := httpapi.UnmarshalCollection(raw, &items, "items"); err != nil {
				return nil, err
			}
			return items, nil
		},
	}
	return query.Get(ctx)
}

/*
Detail fetches one record by id.
*/
func (c Collection[T]) Detail(ctx context.Context, id string) (*T, error) {
	if err := c.requireSession(ctx, "admin_detail"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.ValidationError("Record id is required")
	}

	query := querycache.Query[*T]{
		Cache:      c.client.cache,
		Key:        c.detailKey(id),
		StaleAfter: c.staleAfter,
		Fetch: func(ctx context.Context) (*T, error) {
			record := new(T)
			if err := c.client.api.Get(ctx, c.path+"/"+id, nil, record); err != nil {
				return nil, err
			}
			return record, nil
		},
	}
	return query.Get(ctx)
}

/*
Create inserts a record and invalidates the resource's key family.
*/
func (c Collection[T]) Create(ctx context.Context, payload *httpapi.Payload) (*T, error) {
	if err := c.requireSession(ctx, "admin_create"); err != nil {
		return nil, err
	}

	record := new(T)
	mutation := querycache.Mutation[T]{
		Cache: c.client.cache,
		Perform: func(ctx context.Context) error {
			return c.client.api.Post(ctx, c.path, payload, record)
		},
		InvalidatesMatch: c.familyMatch,
	}
	if err := mutation.Run(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

/*
Update patches a record via the emulated-PATCH convention and invalidates
the resource's key family.
*/
func (c Collection[T]) Update(ctx context.Context, id string, payload *httpapi.Payload) (*T, error) {
	if err := c.requireSession(ctx, "admin_update"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.ValidationError("Record id is required")
	}

	record := new(T)
	mutation := querycache.Mutation[T]{
		Cache: c.client.cache,
		Perform: func(ctx context.Context) error {
			return c.client.api.Patch(ctx, c.path+"/"+id, payload, record)
		},
		InvalidatesMatch: c.familyMatch,
	}
	if err := mutation.Run(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

/*
Delete removes a record and invalidates the resource's key family.
*/
func (c Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.requireSession(ctx, "admin_delete"); err != nil {
		return err
	}
	if id == "" {
		return apperr.ValidationError("Record id is required")
	}

	mutation := querycache.Mutation[T]{
		Cache: c.client.cache,
		Perform: func(ctx context.Context) error {
			return c.client.api.Delete(ctx, c.path+"/"+id, nil)
		},
		InvalidatesMatch: c.familyMatch,
	}
	return mutation.Run(ctx)
}

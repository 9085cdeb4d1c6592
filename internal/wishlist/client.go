// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package wishlist implements the customer wishlist client.

Removal is the latency-sensitive path: the entry disappears from the cached
collection immediately, before server confirmation, and the exact prior
snapshot is restored on failure. Unlike the cart, a failed wishlist read is
surfaced to the caller — the wishlist page offers a retry affordance and
needs to distinguish "empty" from "failed".
*/
package wishlist

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/platform/validate"
	"github.com/voltora-energy/storefront/internal/querycache"
)

// CacheKey tracks the customer's wishlist in the query cache.
const CacheKey querycache.Key = "wishlist:customer"

var collectionKeys = []string{"wishlist", "items"}

type Client struct {
	api    *httpapi.Client
	cache  *querycache.Cache
	logger *slog.Logger
}

func NewClient(api *httpapi.Client, cache *querycache.Cache, logger *slog.Logger) *Client {
	return &Client{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

func (client *Client) query() querycache.Query[[]Item] {
	return querycache.Query[[]Item]{
		Cache:      client.cache,
		Key:        CacheKey,
		StaleAfter: constants.StalenessVolatile,
		Fetch:      client.fetch,
	}
}

/*
Items returns the customer's wishlist.

Returns:
  - The entry collection, empty when no customer session exists (no network
    activity in that case).
  - An error on transport or contract failure. Errors are NOT absorbed here:
    the wishlist page shows a retry affordance and must see the failure.
*/
func (client *Client) Items(ctx context.Context) ([]Item, error) {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return []Item{}, nil
	}

	items, err := client.query().Get(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []Item{}, nil
	}
	return items, nil
}

func (client *Client) fetch(ctx context.Context) ([]Item, error) {
	var raw json.RawMessage
	if err := client.api.Get(ctx, "/wishlist", nil, &raw); err != nil {
		return nil, err
	}

	var items []Item
	if err := httpapi.UnmarshalCollection(raw, &items, collectionKeys...); err != nil {
		return nil, err
	}
	return items, nil
}

/*
Add puts a product on the wishlist and marks the cached collection stale.
*/
func (client *Client) Add(ctx context.Context, productID string) error {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return apperr.LoginRequired("add_to_wishlist")
	}

	validator := &validate.Validator{}
	validator.Required(FieldProductID, productID)
	if err := validator.Err(); err != nil {
		return err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldProductID, productID)

	mutation := querycache.Mutation[[]Item]{
		Cache: client.cache,
		Perform: func(ctx context.Context) error {
			return client.api.Post(ctx, "/wishlist/add", payload, nil)
		},
		Invalidates: []querycache.Key{CacheKey},
	}
	if err := mutation.Run(ctx); err != nil {
		return err
	}

	client.logger.InfoContext(ctx, "wishlist_entry_added", slog.String("product_id", productID))
	return nil
}

/*
Remove deletes a wishlist entry optimistically.

Parameters:
  - entryID: The wishlist ENTRY id, not the product id.

The entry disappears from the cached collection before the request goes
out. On failure the exact prior collection — ordering included — is
restored and the error is returned so the caller can offer a retry. A 404
from the server means the entry was already gone and counts as success.
*/
func (client *Client) Remove(ctx context.Context, entryID string) error {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return apperr.LoginRequired("remove_from_wishlist")
	}

	validator := &validate.Validator{}
	validator.Required(FieldEntryID, entryID)
	if err := validator.Err(); err != nil {
		return err
	}

	mutation := querycache.Mutation[[]Item]{
		Cache: client.cache,
		Key:   CacheKey,
		Apply: func(current []Item) []Item {
			next := make([]Item, 0, len(current))
			for _, item := range current {
				if item.ID != entryID {
					next = append(next, item)
				}
			}
			return next
		},
		Perform: func(ctx context.Context) error {
			err := client.api.Delete(ctx, "/wishlist/remove/"+entryID, nil)
			// Already gone on the server: idempotent-delete semantics.
			if apperr.CodeOf(err) == apperr.CodeNotFound {
				return nil
			}
			return err
		},
	}

	if err := mutation.Run(ctx); err != nil {
		client.logger.WarnContext(ctx, "wishlist_removal_rolled_back",
			slog.String("entry_id", entryID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

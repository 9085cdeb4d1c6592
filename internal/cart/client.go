// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package cart implements the customer cart client.

The cart is server-owned; this package translates cart verbs into HTTP calls
and keeps the cached mirror coherent through the query cache. Reads are
volatile (refetched on every access) and soft-fail to an empty collection —
browsing without a session, or through a flaky network, must never break
page render.
*/
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/platform/validate"
	"github.com/voltora-energy/storefront/internal/querycache"
)

// CacheKey tracks the customer's cart in the query cache.
const CacheKey querycache.Key = "cart:customer"

// legacy collection keys the backend has used for the cart payload.
var collectionKeys = []string{"items", "cart"}

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

// query binds the cart read to its cache key and staleness policy.
func (client *Client) query() querycache.Query[[]Line] {
	return querycache.Query[[]Line]{
		Cache:      client.cache,
		Key:        CacheKey,
		StaleAfter: constants.StalenessVolatile,
		Fetch:      client.fetch,
	}
}

/*
Lines returns the customer's cart.

Soft-fail policy: no session, a transport failure, or a malformed body all
degrade to an empty collection. The cart badge rendering empty beats a
broken page for a non-critical read.
*/
func (client *Client) Lines(ctx context.Context) []Line {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return []Line{}
	}

	lines, err := client.query().Get(ctx)
	if err != nil {
		client.logger.WarnContext(ctx, "cart_read_degraded", slog.Any("error", err))
		return []Line{}
	}
	if lines == nil {
		return []Line{}
	}
	return lines
}

// Summary returns the derived {count, total} aggregate for the current cart.
func (client *Client) Summary(ctx context.Context) Summary {
	return Summarize(client.Lines(ctx))
}

func (client *Client) fetch(ctx context.Context) ([]Line, error) {
	var raw json.RawMessage
	if err := client.api.Get(ctx, "/cart", nil, &raw); err != nil {
		return nil, err
	}

	var lines []Line
	if err := httpapi.UnmarshalCollection(raw, &lines, collectionKeys...); err != nil {
		return nil, err
	}
	return lines, nil
}

/*
Add puts a product into the cart.

Parameters:
  - productID: Catalog product identifier. Required.
  - quantity: Units to add; must be >= 1.
  - price: Unit price snapshot; must be a finite number.

Returns:
  - LOGIN_REQUIRED before any network activity when no customer session
    exists; a validation error for malformed input; otherwise the outcome of
    the backend call. Success invalidates the cached cart for all observers.
*/
func (client *Client) Add(ctx context.Context, productID string, quantity int, price float64) error {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return apperr.LoginRequired("add_to_cart")
	}

	validator := &validate.Validator{}
	validator.Required(FieldProductID, productID)
	validator.Custom(FieldQuantity, quantity < 1, "Quantity must be at least 1")
	validator.Custom(FieldPrice, math.IsNaN(price) || math.IsInf(price, 0), "Price must be a finite number")
	if err := validator.Err(); err != nil {
		return err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldProductID, productID)
	payload.Set(FieldQuantity, quantity)
	payload.Set(FieldPrice, strconv.FormatFloat(price, 'f', -1, 64))

	mutation := querycache.Mutation[[]Line]{
		Cache: client.cache,
		Perform: func(ctx context.Context) error {
			return client.api.Post(ctx, "/cart/add", payload, nil)
		},
		Invalidates: []querycache.Key{CacheKey},
	}
	if err := mutation.Run(ctx); err != nil {
		return err
	}

	client.logger.InfoContext(ctx, "cart_line_added",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return nil
}

/*
UpdateQuantity changes the quantity of an existing cart line.

A quantity below 1 is rejected before dispatch: lines are removed, never
kept at zero. Callers wanting the line gone use Remove.
*/
func (client *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return apperr.LoginRequired("update_cart_quantity")
	}

	validator := &validate.Validator{}
	validator.Required(FieldItemID, itemID)
	validator.Custom(FieldQuantity, quantity < 1, "Quantity must be at least 1")
	if err := validator.Err(); err != nil {
		return err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldQuantity, quantity)

	mutation := querycache.Mutation[[]Line]{
		Cache: client.cache,
		Perform: func(ctx context.Context) error {
			return client.api.Patch(ctx, "/cart/update/"+itemID, payload, nil)
		},
		Invalidates: []querycache.Key{CacheKey},
	}
	return mutation.Run(ctx)
}

/*
Remove deletes a cart line by its line id.
*/
func (client *Client) Remove(ctx context.Context, itemID string) error {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return apperr.LoginRequired("remove_cart_line")
	}

	validator := &validate.Validator{}
	validator.Required(FieldItemID, itemID)
	if err := validator.Err(); err != nil {
		return err
	}

	mutation := querycache.Mutation[[]Line]{
		Cache: client.cache,
		Perform: func(ctx context.Context) error {
			return client.api.Delete(ctx, "/cart/remove/"+itemID, nil)
		},
		Invalidates: []querycache.Key{CacheKey},
	}
	return mutation.Run(ctx)
}

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package catalog implements the public product, brand, and category reads.

Everything here is anonymous-friendly: no session checks, no login
requirements. Brand and category listings change rarely and sit behind a
multi-minute staleness window; product pages use a shorter one. Search
input is canonicalized so equivalent queries share a cache entry.
*/
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/pkg/pagination"
	"github.com/voltora-energy/storefront/pkg/searchterm"
)

var collectionKeys = []string{"items", "products"}

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

/*
Products fetches one page of the catalog, optionally filtered.

The free-text search is normalized before it becomes either a query
parameter or part of the cache key — "Solar Panél" and "solar panel" are
the same search.
*/
func (client *Client) Products(ctx context.Context, filter Filter, params pagination.Params) ([]Product, error) {
	normalized := searchterm.Normalize(filter.Search)
	params = params.Normalize()

	key := querycache.Key("catalog:products:search:" + normalized +
		":brand:" + filter.BrandID +
		":category:" + filter.CategoryID +
		":page:" + strconv.Itoa(params.Page))

	query := querycache.Query[[]Product]{
		Cache:      client.cache,
		Key:        key,
		StaleAfter: constants.StalenessCatalog,
		Fetch: func(ctx context.Context) ([]Product, error) {
			values := params.Values()
			if normalized != "" {
				values.Set("search", normalized)
			}
			if filter.BrandID != "" {
				values.Set("brand_id", filter.BrandID)
			}
			if filter.CategoryID != "" {
				values.Set("category_id", filter.CategoryID)
			}

			var raw json.RawMessage
			if err := client.api.Get(ctx, "/products", values, &raw); err != nil {
				return nil, err
			}

			var products []Product
			if err := httpapi.UnmarshalCollection(raw, &products, collectionKeys...); err != nil {
				return nil, err
			}
			return products, nil
		},
	}
	return query.Get(ctx)
}

// Product fetches one catalog item by id.
func (client *Client) Product(ctx context.Context, id string) (*Product, error) {
	query := querycache.Query[*Product]{
		Cache:      client.cache,
		Key:        querycache.Key("catalog:product:" + id),
		StaleAfter: constants.StalenessCatalog,
		Fetch: func(ctx context.Context) (*Product, error) {
			product := &Product{}
			if err := client.api.Get(ctx, "/products/"+url.PathEscape(id), nil, product); err != nil {
				return nil, err
			}
			return product, nil
		},
	}
	return query.Get(ctx)
}

// Brands fetches the manufacturer list. Slow-changing; multi-minute window.
func (client *Client) Brands(ctx context.Context) ([]Brand, error) {
	query := querycache.Query[[]Brand]{
		Cache:      client.cache,
		Key:        "catalog:brands",
		StaleAfter: constants.StalenessSlow,
		Fetch: func(ctx context.Context) ([]Brand, error) {
			var raw json.RawMessage
			if err := client.api.Get(ctx, "/brand", nil, &raw); err != nil {
				return nil, err
			}

			var brands []Brand
			if err := httpapi.UnmarshalCollection(raw, &brands, "items", "brands"); err != nil {
				return nil, err
			}
			return brands, nil
		},
	}
	return query.Get(ctx)
}

// Brand fetches one manufacturer by id.
func (client *Client) Brand(ctx context.Context, id string) (*Brand, error) {
	query := querycache.Query[*Brand]{
		Cache:      client.cache,
		Key:        querycache.Key("catalog:brand:" + id),
		StaleAfter: constants.StalenessSlow,
		Fetch: func(ctx context.Context) (*Brand, error) {
			brand := &Brand{}
			if err := client.api.Get(ctx, "/brand/"+url.PathEscape(id), nil, brand); err != nil {
				return nil, err
			}
			return brand, nil
		},
	}
	return query.Get(ctx)
}

// Categories fetches the grouping tree. Slow-changing; multi-minute window.
func (client *Client) Categories(ctx context.Context) ([]Category, error) {
	query := querycache.Query[[]Category]{
		Cache:      client.cache,
		Key:        "catalog:categories",
		StaleAfter: constants.StalenessSlow,
		Fetch: func(ctx context.Context) ([]Category, error) {
			var raw json.RawMessage
			if err := client.api.Get(ctx, "/categories", nil, &raw); err != nil {
				return nil, err
			}

			var categories []Category
			if err := httpapi.UnmarshalCollection(raw, &categories, "items", "categories"); err != nil {
				return nil, err
			}
			return categories, nil
		},
	}
	return query.Get(ctx)
}

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package checkout implements order creation and payment verification.

Checkout is a critical write path: unlike the cart and wishlist reads,
nothing here soft-fails. Transport errors, validation rejections, and
contract violations all propagate to the caller.
*/
package checkout

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/voltora-energy/storefront/internal/cart"
	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/validate"
	"github.com/voltora-energy/storefront/internal/querycache"
)

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
ApplyCoupon resolves a coupon code against the backend and freezes the
resulting discount amount onto the draft.

The discount is captured once, at application time. A cart edited after
this call keeps the frozen amount until the caller re-applies the coupon.
*/
func (client *Client) ApplyCoupon(ctx context.Context, draft *Draft, code string) error {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return apperr.LoginRequired("apply_coupon")
	}

	validator := &validate.Validator{}
	validator.Required(FieldCouponCode, code)
	if err := validator.Err(); err != nil {
		return err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldCouponCode, code)

	var response struct {
		Discount float64 `json:"discount"`
	}
	if err := client.api.Post(ctx, "/coupons/verify", payload, &response); err != nil {
		return err
	}

	draft.CouponCode = code
	draft.AppliedDiscount = response.Discount

	client.logger.InfoContext(ctx, "coupon_applied",
		slog.String("code", code),
		slog.Float64("discount", response.Discount),
	)
	return nil
}

/*
CreateOrder submits the draft as an order.

Returns:
  - An [OrderResult] carrying either a payment-provider redirect URL or a
    direct order id. A response with neither is a contract violation.
  - Success invalidates the cached cart (the server empties it) and the
    dashboard's order pages.
*/
func (client *Client) CreateOrder(ctx context.Context, draft Draft) (*OrderResult, error) {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return nil, apperr.LoginRequired("create_order")
	}

	address := draft.ShippingAddress
	validator := &validate.Validator{}
	validator.Required(FieldFullName, address.FullName)
	validator.Required(FieldLine1, address.Line1)
	validator.Required(FieldCity, address.City)
	validator.Required(FieldState, address.State)
	validator.Required(FieldPhone, address.Phone)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldFullName, address.FullName)
	payload.Set(FieldLine1, address.Line1)
	payload.Set("line2", address.Line2)
	payload.Set(FieldCity, address.City)
	payload.Set(FieldState, address.State)
	payload.Set(FieldPhone, address.Phone)
	if draft.CouponCode != "" {
		payload.Set("coupon_code", draft.CouponCode)
	}

	result := &OrderResult{}
	mutation := querycache.Mutation[OrderResult]{
		Cache: client.cache,
		Perform: func(ctx context.Context) error {
			return client.api.Post(ctx, "/orders", payload, result)
		},
		Invalidates: []querycache.Key{cart.CacheKey},
		InvalidatesMatch: func(key querycache.Key) bool {
			return key.HasPrefix("admin:orders:")
		},
	}
	if err := mutation.Run(ctx); err != nil {
		return nil, err
	}

	if result.RedirectURL == "" && result.OrderID == "" {
		return nil, apperr.Contract("Order creation returned neither a redirect URL nor an order id")
	}

	client.logger.InfoContext(ctx, "order_created",
		slog.String("order_id", result.OrderID),
		slog.Bool("redirected", result.RedirectURL != ""),
	)
	return result, nil
}

/*
VerifyPayment checks a payment-provider reference after the redirect
returns.
*/
func (client *Client) VerifyPayment(ctx context.Context, reference string) (*PaymentStatus, error) {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return nil, apperr.LoginRequired("verify_payment")
	}

	validator := &validate.Validator{}
	validator.Required(FieldReference, reference)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	status := &PaymentStatus{}
	query := url.Values{FieldReference: {reference}}
	if err := client.api.Get(ctx, "/payment/verify", query, status); err != nil {
		return nil, err
	}

	if status.Paid {
		client.logger.InfoContext(ctx, "payment_verified", slog.String("reference", reference))
	}
	return status, nil
}

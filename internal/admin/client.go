// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package admin implements the dashboard client: the two-step OTP login and
typed access to the operator's resource collections.

Login never yields a session directly. Step one trades the password for an
admin identifier plus an OTP dispatch confirmation; step two trades that
identifier and the code for the actual session. The identifier is required
input to step two — a missing one fails before any network activity.
*/
package admin

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/platform/validate"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/internal/session"
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

// # OTP Login Flow

/*
Login performs step one of the OTP flow.

Returns:
  - A [PendingLogin] carrying the admin identifier required by
    [Client.VerifyOTP]. No session is written here.
*/
func (client *Client) Login(ctx context.Context, email, password string) (*PendingLogin, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	validator.Required(FieldPassword, password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldEmail, email)
	payload.Set(FieldPassword, password)

	var pending PendingLogin
	if err := client.api.Post(ctx, "/admin/login", payload, &pending); err != nil {
		return nil, err
	}

	if pending.AdminID == "" {
		return nil, apperr.Contract("Admin login accepted but no admin identifier was returned")
	}

	client.logger.InfoContext(ctx, "admin_otp_dispatched", slog.String("admin_id", pending.AdminID))
	return &pending, nil
}

/*
VerifyOTP performs step two of the OTP flow and stores the admin session.

Parameters:
  - adminID: The identifier from [Client.Login]. An empty value fails with a
    descriptive error before any request is sent — never dispatch a request
    the backend is guaranteed to reject as malformed.
  - otp: The one-time code.
*/
func (client *Client) VerifyOTP(ctx context.Context, adminID, otp string) (*session.Profile, error) {
	if adminID == "" {
		return nil, apperr.ValidationError(
			"Admin identifier from the login step is required to verify the code",
			apperr.FieldError{Field: FieldAdminID, Message: "Missing admin identifier"},
		)
	}

	validator := &validate.Validator{}
	validator.Required(FieldOTP, otp)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldOTP, otp)

	var response struct {
		Token   string `json:"token"`
		Expires string `json:"expires_at"`
		User    struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
			Role      string `json:"role"`
		} `json:"user"`
	}

	// The backend takes the identifier as a query parameter, the code in
	// the body.
	path := "/admin/verify-otp?" + url.Values{FieldAdminID: {adminID}}.Encode()
	if err := client.api.Post(ctx, path, payload, &response); err != nil {
		return nil, err
	}

	if response.Token == "" {
		return nil, apperr.Contract("OTP verification succeeded but no token was returned")
	}

	profile := &session.Profile{
		ID:        response.User.ID,
		Name:      response.User.Name,
		Email:     response.User.Email,
		AvatarURL: response.User.AvatarURL,
		Role:      response.User.Role,
	}

	var expiresAt *time.Time
	if response.Expires != "" {
		if parsed, err := time.Parse(time.RFC3339, response.Expires); err == nil {
			expiresAt = &parsed
		}
	}

	if err := client.api.Sessions().Set(ctx, client.api.Domain(), response.Token, profile, expiresAt); err != nil {
		return nil, err
	}

	client.logger.InfoContext(ctx, "admin_logged_in", slog.String("admin_id", adminID))
	return profile, nil
}

// Logout destroys the admin session and drops every cached dashboard read.
func (client *Client) Logout(ctx context.Context) error {
	if err := client.api.Sessions().Clear(ctx, client.api.Domain()); err != nil {
		return err
	}

	client.cache.DropMatch(func(key querycache.Key) bool {
		return key.HasPrefix("admin:")
	})

	client.logger.InfoContext(ctx, "admin_logged_out")
	return nil
}

// MyProfile reads the operator's own account record.
func (client *Client) MyProfile(ctx context.Context) (*Profile, error) {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return nil, apperr.LoginRequired("admin_profile")
	}

	query := querycache.Query[*Profile]{
		Cache:      client.cache,
		Key:        "admin:profile",
		StaleAfter: constants.StalenessSlow,
		Fetch: func(ctx context.Context) (*Profile, error) {
			profile := &Profile{}
			if err := client.api.Get(ctx, "/admin/profile", nil, profile); err != nil {
				return nil, err
			}
			return profile, nil
		},
	}
	return query.Get(ctx)
}

// UpdateMyProfile patches the operator's account record. The avatar, when
// present, rides as a multipart file part; the encoding choice stays inside
// the request layer.
func (client *Client) UpdateMyProfile(ctx context.Context, payload *httpapi.Payload) (*Profile, error) {
	if !client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		return nil, apperr.LoginRequired("admin_profile_update")
	}

	profile := &Profile{}
	mutation := querycache.Mutation[*Profile]{
		Cache: client.cache,
		Perform: func(ctx context.Context) error {
			return client.api.Patch(ctx, "/admin/profile", payload, profile)
		},
		Invalidates: []querycache.Key{"admin:profile"},
	}
	if err := mutation.Run(ctx); err != nil {
		return nil, err
	}
	return profile, nil
}

// # Resource Collections

// Orders returns the order collection accessor.
func (client *Client) Orders() Collection[Order] {
	return newCollection[Order](client, "/admin/orders", "admin:orders", constants.StalenessVolatile)
}

// Customers returns the customer-account collection accessor.
func (client *Client) Customers() Collection[Customer] {
	return newCollection[Customer](client, "/admin/customers", "admin:customers", constants.StalenessVolatile)
}

// Coupons returns the coupon collection accessor.
func (client *Client) Coupons() Collection[Coupon] {
	return newCollection[Coupon](client, "/admin/coupons", "admin:coupons", constants.StalenessSlow)
}

// Brands returns the brand collection accessor.
func (client *Client) Brands() Collection[Brand] {
	return newCollection[Brand](client, "/admin/brands", "admin:brands", constants.StalenessSlow)
}

// Categories returns the category collection accessor.
func (client *Client) Categories() Collection[Category] {
	return newCollection[Category](client, "/admin/categories", "admin:categories", constants.StalenessSlow)
}

// Transactions returns the settlement-record collection accessor.
func (client *Client) Transactions() Collection[Transaction] {
	return newCollection[Transaction](client, "/admin/transactions", "admin:transactions", constants.StalenessVolatile)
}

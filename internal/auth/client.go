// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package auth implements the customer authentication client.

Registration is a two-step flow: the profile submission triggers an
out-of-band verification code, and only the code verification yields a
session token. A session-issuing response without a token is a backend
contract violation and never results in a partial session write.
*/
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
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

/*
Login authenticates a customer and stores the resulting session.

Parameters:
  - credentials: Email and password; both validated before dispatch.

Returns:
  - The stored profile on success. Token and profile are written together
    atomically — there is no state in which one exists without the other.
*/
func (client *Client) Login(ctx context.Context, credentials Credentials) (*session.Profile, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, credentials.Email).Email(FieldEmail, credentials.Email)
	validator.Required(FieldPassword, credentials.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldEmail, credentials.Email)
	payload.Set(FieldPassword, credentials.Password)

	var response loginResponse
	if err := client.api.Post(ctx, "/login", payload, &response); err != nil {
		return nil, err
	}

	profile, err := client.storeSession(ctx, response, "login")
	if err != nil {
		return nil, err
	}

	client.logger.InfoContext(ctx, "customer_logged_in", slog.String("email", credentials.Email))
	return profile, nil
}

/*
Register submits the step-one signup form.

No session is created here: the server dispatches a verification code
out-of-band, and [Client.VerifyCode] completes the flow.
*/
func (client *Client) Register(ctx context.Context, registration Registration) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, registration.Name).MaxLen(FieldName, registration.Name, 120)
	validator.Required(FieldEmail, registration.Email).Email(FieldEmail, registration.Email)
	validator.Required(FieldPassword, registration.Password).MinLen(FieldPassword, registration.Password, 8)
	if err := validator.Err(); err != nil {
		return err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldName, registration.Name)
	payload.Set(FieldEmail, registration.Email)
	payload.Set(FieldPhone, registration.Phone)
	payload.Set(FieldPassword, registration.Password)

	if err := client.api.Post(ctx, "/register", payload, nil); err != nil {
		return err
	}

	client.logger.InfoContext(ctx, "registration_code_dispatched", slog.String("email", registration.Email))
	return nil
}

/*
VerifyCode completes registration with the out-of-band code.

Returns:
  - The stored profile on success.
  - A contract-violation error when the server confirms the code but omits
    the token. Nothing is written to the session store in that case.
*/
func (client *Client) VerifyCode(ctx context.Context, email, code string) (*session.Profile, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	validator.Required(FieldCode, code)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	payload := httpapi.NewPayload()
	payload.Set(FieldEmail, email)
	payload.Set(FieldCode, code)

	var response loginResponse
	if err := client.api.Post(ctx, "/verify-code", payload, &response); err != nil {
		return nil, err
	}

	profile, err := client.storeSession(ctx, response, "verify_code")
	if err != nil {
		return nil, err
	}

	client.logger.InfoContext(ctx, "registration_verified", slog.String("email", email))
	return profile, nil
}

/*
Logout destroys the customer session and drops the customer's cached reads.

The backend call is best-effort: the local teardown happens regardless, so
a dead network can never leave a customer "stuck" logged in.
*/
func (client *Client) Logout(ctx context.Context) error {
	if client.api.Sessions().IsAuthenticated(ctx, client.api.Domain()) {
		if err := client.api.Post(ctx, "/logout", nil, nil); err != nil {
			client.logger.WarnContext(ctx, "logout_backend_call_failed", slog.Any("error", err))
		}
	}

	if err := client.api.Sessions().Clear(ctx, client.api.Domain()); err != nil {
		return err
	}

	client.cache.DropMatch(func(key querycache.Key) bool {
		return key.HasPrefix("cart:") || key.HasPrefix("wishlist:") || key.HasPrefix("checkout:")
	})

	client.logger.InfoContext(ctx, "customer_logged_out")
	return nil
}

// storeSession validates a session-issuing response and persists it. The
// missing-token case is surfaced loudly: swallowing it would leave the
// customer half logged in.
func (client *Client) storeSession(ctx context.Context, response loginResponse, operation string) (*session.Profile, error) {
	if response.Token == "" {
		client.logger.ErrorContext(ctx, "session_response_missing_token", slog.String("operation", operation))
		return nil, apperr.Contract("Authentication succeeded but no token was returned")
	}

	profile := &session.Profile{
		ID:        response.User.ID,
		Name:      response.User.Name,
		Email:     response.User.Email,
		Phone:     response.User.Phone,
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
	return profile, nil
}

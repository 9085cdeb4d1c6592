// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package httpapi implements the uniform HTTP request layer between the
storefront and the store backend API.

One [Client] serves one identity domain. The customer and admin surfaces are
the same code parameterized by [session.Domain] — there is deliberately no
second implementation to drift from the first.

Architecture:

  - Auth Injection: Bearer token attached automatically when a session exists.
  - Encoding Negotiation: JSON by default; multipart chosen automatically
    when a payload carries binary file parts.
  - Method Override: PATCH is emulated as POST with a marker field.
  - Error Normalization: Every non-2xx response becomes one [apperr.AppError];
    401 additionally tears the local session down.

Domain clients (cart, catalog, checkout, ...) never touch net/http directly.
*/
package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/session"
	"github.com/voltora-energy/storefront/pkg/uuidv7"
)

// methodOverrideField is the payload marker instructing the backend to treat
// a POST as a different verb. The backend's framework pairing has no native
// PATCH route support.
const methodOverrideField = "_method"

// Client dispatches authenticated requests for exactly one identity domain.
//
// # Concurrency
//
// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	domain   session.Domain
	baseURL  string
	http     *http.Client
	sessions *session.Store
	limiter  *rate.Limiter
	log      *slog.Logger
}

// Option customizes a [Client] at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the underlying transport (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter substitutes the outbound rate limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithLogger substitutes the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// NewClient constructs a [Client] bound to one identity domain.
//
// # Parameters
//   - domain: The identity domain whose session authenticates requests.
//   - baseURL: Root of the store API (e.g. "https://api.voltora.energy/api/v1").
//   - sessions: The injected session store. Never read from a global.
func NewClient(domain session.Domain, baseURL string, sessions *session.Store, opts ...Option) *Client {
	client := &Client{
		domain:   domain,
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: sessions,
		http: &http.Client{
			Timeout: constants.DefaultBackendTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(constants.DefaultBackendRPS), constants.DefaultBackendBurst),
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Domain returns the identity domain this client authenticates as.
func (c *Client) Domain() session.Domain { return c.domain }

// Sessions exposes the injected session store to domain clients that need
// pre-dispatch authentication checks.
func (c *Client) Sessions() *session.Store { return c.sessions }

// # Request Dispatch

// Get issues a GET request and decodes the unwrapped payload into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request. The payload encoding (JSON vs multipart) is
// negotiated automatically; callers never choose it.
func (c *Client) Post(ctx context.Context, path string, payload *Payload, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

// Patch emulates PATCH over POST by adding the method-override marker.
// Caller-visible behavior is identical to a native PATCH.
func (c *Client) Patch(ctx context.Context, path string, payload *Payload, out any) error {
	if payload == nil {
		payload = NewPayload()
	}
	payload.Set(methodOverrideField, "PATCH")
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// do is the single dispatch point every verb funnels through.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload *Payload, out any) error {

	// ── 1. Outbound rate limit ────────────────────────────────────────────
	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Transport(err)
	}

	// ── 2. Build request ──────────────────────────────────────────────────
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	body, contentType, err := payload.encode()
	if err != nil {
		return fmt.Errorf("httpapi_encode_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("httpapi_build_request_failed: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set(constants.HeaderXRequestID, uuidv7.New())
	if contentType != "" {
		request.Header.Set(constants.HeaderContentType, contentType)
	}

	// ── 3. Auth injection ─────────────────────────────────────────────────
	// Absent token means the request simply goes out anonymous.
	if token, ok := c.sessions.Token(ctx, c.domain); ok {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	// ── 4. Dispatch ───────────────────────────────────────────────────────
	startTime := time.Now()
	response, err := c.http.Do(request)
	if err != nil {
		return apperr.Transport(err)
	}
	defer func() { _ = response.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(response.Body, constants.MaxResponseBytes))
	if err != nil {
		return apperr.Transport(err)
	}

	c.log.DebugContext(ctx, "backend_request_finished",
		slog.String("domain", string(c.domain)),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	// ── 5. Error normalization ────────────────────────────────────────────
	if response.StatusCode == http.StatusUnauthorized {
		return c.expireSession(ctx)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return normalizeError(response.StatusCode, raw)
	}

	// ── 6. Envelope unwrap ────────────────────────────────────────────────
	if out == nil {
		return nil
	}
	return decodeSuccess(raw, out)
}

// expireSession tears the local session down — exactly once per failed
// request, with no retry of the same credential — and surfaces the
// distinguished SESSION_EXPIRED error kind.
func (c *Client) expireSession(ctx context.Context) error {
	if err := c.sessions.Clear(ctx, c.domain); err != nil {
		c.log.ErrorContext(ctx, "session_teardown_failed",
			slog.String("domain", string(c.domain)),
			slog.Any("error", err),
		)
	}
	return apperr.SessionExpired()
}

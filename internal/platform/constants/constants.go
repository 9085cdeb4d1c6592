// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, cache staleness windows, and
cross-cutting keys that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the gateway HTTP server.
  - Outbound Timing: Timeouts and rate limits for calls to the store backend.
  - Cache Taxonomy: Staleness windows and key prefixes for the query cache.
  - Session Storage: Fixed per-domain key names for persisted auth state.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "voltora-gateway"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// The image relay streams upstream bodies, so this is deliberately generous.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Outbound Timing (store backend)

const (
	// DefaultBackendTimeout bounds a single request to the store API.
	DefaultBackendTimeout = 15 * time.Second

	// DefaultBackendRPS is the steady-state outbound request rate to the
	// store API, shared across all domain clients of one httpapi.Client.
	DefaultBackendRPS = 50.0

	// DefaultBackendBurst is the token-bucket burst for outbound requests.
	DefaultBackendBurst = 100

	// MaxResponseBytes caps how much of an API response body is read into
	// memory. Catalog pages are small; anything beyond this is a fault.
	MaxResponseBytes = 4 << 20
)

// # Rate Limiting (gateway, per client IP)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldErrors  = "errors"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Session Storage (fixed per-domain key names)

const (
	// SessionKeyPrefix namespaces every persisted session record.
	SessionKeyPrefix = "session:"

	// SessionTTL bounds how long an untouched session record survives in
	// volatile backends. Advisory only; expiry is never enforced locally.
	SessionTTL = 30 * 24 * time.Hour
)

// # Cache Taxonomy

const (
	// StalenessVolatile marks reads that must be refetched on every access
	// (cart, wishlist). Zero means "always stale".
	StalenessVolatile = 0 * time.Second

	// StalenessSlow is the window for slow-changing reads (brands,
	// categories) that tolerate multi-minute staleness.
	StalenessSlow = 5 * time.Minute

	// StalenessCatalog is the window for product listings and detail pages.
	StalenessCatalog = 1 * time.Minute

	// InvalidationChannel is the redis pub/sub channel carrying
	// cross-instance cache invalidation broadcasts.
	InvalidationChannel = "storefront:cache:invalidate"
)

// # Image Relay

const (
	// MaxRelayBytes caps the size of a proxied upstream image.
	MaxRelayBytes = 10 << 20

	// RelayUpstreamTimeout bounds the upstream image fetch.
	RelayUpstreamTimeout = 10 * time.Second
)

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

// Package sec provides cryptographic primitives for the client platform.
//
// # Architecture
//
// This package isolates security-sensitive code (token inspection, session
// record sealing) from the domain logic. The platform never signs or
// verifies backend tokens — they are opaque bearer credentials issued and
// validated by the store API. What this package does provide is:
//
//   - Advisory expiry extraction from tokens that happen to be JWTs.
//   - Authenticated encryption for session records at rest.
package sec

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the advisory 'exp' claim from a bearer token.
//
// # Trust Model
//
// The signature is deliberately NOT verified: this layer holds no backend
// signing keys, and the expiry is advisory only — authentication is always
// decided by the backend (reactive 401 model). A token that is not a JWT, or
// carries no 'exp' claim, yields ok == false and is simply treated as
// non-expiring locally.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}

	return expiry.Time, true
}

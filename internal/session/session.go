// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package session implements durable client-side persistence of authentication
state for the two independent identity domains of the storefront.

It handles the full session lifecycle: created on successful login,
registration, or OTP verification; read on every authenticated request;
destroyed on explicit logout or when the backend rejects the credential.

Architecture:

  - Store: Orchestrates sealing, serialization, and the absence policy.
  - Backend: Abstracted interfaces for Redis (primary), Postgres, and memory.
  - Sealing: Records are encrypted at rest via [sec.Sealer].

The token and profile always travel as one sealed record, so they can never
be present individually after a successful operation.
*/
package session

import (
	"context"
	"time"
)

// # Identity Domains

// Domain is one of the two independent identity contexts. Sessions in
// different domains never share tokens or storage keys.
type Domain string

const (
	// DomainCustomer is the storefront end-customer identity.
	DomainCustomer Domain = "customer"

	// DomainAdmin is the dashboard operator identity.
	DomainAdmin Domain = "admin"
)

// Valid reports whether the domain is one of the two known identities.
func (d Domain) Valid() bool {
	return d == DomainCustomer || d == DomainAdmin
}

// # Entities

// Profile is the cached, denormalized user record attached to a session.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Session is the full persisted authentication state for one domain.
type Session struct {
	// Domain identifies which identity context owns this session.
	Domain Domain `json:"domain"`

	// Token is the opaque bearer credential. Presence implies authenticated.
	Token string `json:"token"`

	// ExpiresAt is advisory only. It is never enforced locally — the
	// backend's 401 is the sole authority on token validity.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Profile is the cached user record, written together with the token.
	Profile *Profile `json:"profile,omitempty"`
}

// # Storage Contract

// Backend persists one sealed blob per identity domain.
//
// Implementations do not interpret the blob; sealing, serialization, and
// corruption policy are owned by [Store].
type Backend interface {

	/*
		Put stores the sealed blob for a domain, replacing any previous value.

		Parameters:
		  - context: context.Context
		  - domain: Domain
		  - blob: string

		Returns:
		  - error: Persistence failures
	*/
	Put(context context.Context, domain Domain, blob string) error

	/*
		Fetch returns the sealed blob for a domain.

		Parameters:
		  - context: context.Context
		  - domain: Domain

		Returns:
		  - string: Sealed blob
		  - error: apperr.NotFound when absent, or retrieval failures
	*/
	Fetch(context context.Context, domain Domain) (string, error)

	/*
		Purge removes the stored blob for a domain. Idempotent: purging an
		absent record is not an error.

		Parameters:
		  - context: context.Context
		  - domain: Domain

		Returns:
		  - error: Persistence failures
	*/
	Purge(context context.Context, domain Domain) error
}

// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package session

import (
	"context"
	"sync"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
)

// MemoryBackend implements [Backend] with an in-process map.
//
// It backs tests and single-process tools (smoke CLIs, local previews) where
// neither Redis nor PostgreSQL is available. Safe for concurrent use.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[Domain]string
}

// NewMemoryBackend creates an empty in-memory session [Backend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[Domain]string)}
}

// Put stores the sealed blob for a domain.
func (backend *MemoryBackend) Put(_ context.Context, domain Domain, blob string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	backend.blobs[domain] = blob
	return nil
}

// Fetch returns the sealed blob, or [apperr.NotFound] when absent.
func (backend *MemoryBackend) Fetch(_ context.Context, domain Domain) (string, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()

	blob, ok := backend.blobs[domain]
	if !ok {
		return "", apperr.NotFound("Session")
	}
	return blob, nil
}

// Purge removes the domain's record. Idempotent.
func (backend *MemoryBackend) Purge(_ context.Context, domain Domain) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	delete(backend.blobs, domain)
	return nil
}

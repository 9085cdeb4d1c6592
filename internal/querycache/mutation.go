// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package querycache

import (
	"context"
)

// Mutation is the reusable three-phase optimistic mutation protocol:
// snapshot → apply → commit-or-rollback.
//
// The ordering is mandatory. Responsiveness depends on the optimistic apply
// preceding network completion; correctness depends on rollback restoring
// the exact pre-mutation snapshot — not a partial undo — and then forcing a
// refetch to reconcile with the server's true state.
//
// Mutations without an Apply function skip the optimistic phases and reduce
// to "perform, then invalidate" — the invalidate-then-refetch pattern every
// ordinary write uses.
type Mutation[T any] struct {
	// Cache is the backing entry table.
	Cache *Cache

	// Key is the cached collection the optimistic apply rewrites. Ignored
	// when Apply is nil.
	Key Key

	// Apply transforms the snapshot into the expected post-mutation state.
	// Nil for non-optimistic mutations.
	Apply func(current T) T

	// Perform issues the network request.
	Perform func(ctx context.Context) error

	// Invalidates lists the keys made stale by a successful mutation.
	Invalidates []Key

	// InvalidatesMatch optionally invalidates a whole key family by
	// predicate after a successful mutation.
	InvalidatesMatch func(Key) bool
}

// Run executes the protocol.
//
// # Phases
//
//  1. Snapshot the current cached collection (exact value, if any).
//  2. Apply the expected effect to the cache immediately.
//  3. Issue the network request.
//  4. On failure: restore the exact snapshot and force a refetch; on
//     success: leave the optimistic state (it is already correct) and mark
//     the declared dependent keys stale.
func (m Mutation[T]) Run(ctx context.Context) error {
	optimistic := m.Apply != nil

	var snapshot T
	var hadSnapshot bool

	if optimistic {
		// ── 1. Snapshot ──────────────────────────────────────────────────
		value, _, ok, _ := m.Cache.peek(m.Key)
		if ok {
			if typed, valid := value.(T); valid {
				snapshot = typed
				hadSnapshot = true
			}
		}

		// ── 2. Optimistic apply ──────────────────────────────────────────
		// Applied before the request goes out; the UI sees the effect now.
		if hadSnapshot {
			m.Cache.overwrite(m.Key, m.Apply(snapshot), 0)
		}
	}

	// ── 3. Network ────────────────────────────────────────────────────────
	if err := m.Perform(ctx); err != nil {
		if optimistic && hadSnapshot {
			// ── 4a. Rollback ────────────────────────────────────────────
			// The exact pre-mutation snapshot comes back, and the key is
			// left stale so the next read reconciles with server truth.
			m.Cache.restore(m.Key, snapshot, true)
		}
		return err
	}

	// ── 4b. Commit ────────────────────────────────────────────────────────
	// The optimistic state already matches the server; only the declared
	// dependent keys need a refetch.
	if len(m.Invalidates) > 0 {
		m.Cache.Invalidate(ctx, m.Invalidates...)
	}
	if m.InvalidatesMatch != nil {
		m.Cache.InvalidateMatch(ctx, m.InvalidatesMatch)
	}

	return nil
}

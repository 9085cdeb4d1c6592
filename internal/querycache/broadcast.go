// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/pkg/uuidv7"
)

// invalidationMessage is the wire form of one broadcast.
type invalidationMessage struct {
	// Origin identifies the publishing instance so it can skip its own echo.
	Origin string `json:"origin"`
	// Keys are the cache keys that became stale.
	Keys []Key `json:"keys"`
}

// RedisBroadcaster fans cache invalidations out over Redis pub/sub so every
// gateway instance marks the same keys stale at (nearly) the same moment.
//
// Delivery is best-effort: a missed message only means a peer serves one
// staleness window of old data before its own refetch policy catches up.
type RedisBroadcaster struct {
	client *redis.Client
	origin string
	log    *slog.Logger
}

// NewRedisBroadcaster creates a broadcaster with a unique instance origin.
func NewRedisBroadcaster(client *redis.Client, logger *slog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		client: client,
		origin: uuidv7.New(),
		log:    logger,
	}
}

// Publish implements [Broadcaster].
func (b *RedisBroadcaster) Publish(ctx context.Context, keys []Key) error {
	message, err := json.Marshal(invalidationMessage{
		Origin: b.origin,
		Keys:   keys,
	})
	if err != nil {
		return fmt.Errorf("broadcast_encode_failed: %w", err)
	}

	if err := b.client.Publish(ctx, constants.InvalidationChannel, message).Err(); err != nil {
		return fmt.Errorf("broadcast_publish_failed: %w", err)
	}
	return nil
}

// Listen subscribes to the invalidation channel and applies peer
// invalidations to the local cache until the context is cancelled.
//
// Messages with this instance's own origin are skipped — the local
// invalidation already ran before the publish.
func (b *RedisBroadcaster) Listen(ctx context.Context, cache *Cache) {
	subscription := b.client.Subscribe(ctx, constants.InvalidationChannel)
	defer func() { _ = subscription.Close() }()

	channel := subscription.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case raw, open := <-channel:
			if !open {
				return
			}

			message := invalidationMessage{}
			if err := json.Unmarshal([]byte(raw.Payload), &message); err != nil {
				b.log.WarnContext(ctx, "broadcast_decode_failed", slog.Any("error", err))
				continue
			}

			if message.Origin == b.origin || len(message.Keys) == 0 {
				continue
			}

			cache.InvalidateLocal(message.Keys...)
			b.log.DebugContext(ctx, "broadcast_invalidation_applied",
				slog.Int("keys", len(message.Keys)),
			)
		}
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/tier-badge/internal/models"
)

// BadgeCache is a short-TTL read cache for badge lookups. Issue and revoke
// always invalidate, so consumers observe a replaced badge promptly.
type BadgeCache struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewBadgeCache creates a new badge cache
func NewBadgeCache(redis *RedisCache, ttl time.Duration) *BadgeCache {
	return &BadgeCache{redis: redis, ttl: ttl}
}

func badgeCacheKey(owner solana.PublicKey) string {
	return fmt.Sprintf("badge:%s", owner.String())
}

// Get retrieves a cached badge for an owner; the second return reports a hit
func (c *BadgeCache) Get(ctx context.Context, owner solana.PublicKey) (*models.TierBadge, bool, error) {
	value, err := c.redis.Get(ctx, badgeCacheKey(owner))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read badge cache: %w", err)
	}

	var badge models.TierBadge
	if err := json.Unmarshal([]byte(value), &badge); err != nil {
		// A corrupt entry is dropped rather than surfaced
		_ = c.redis.Del(ctx, badgeCacheKey(owner))
		return nil, false, nil
	}

	return &badge, true, nil
}

// Set stores a badge with the configured TTL
func (c *BadgeCache) Set(ctx context.Context, badge *models.TierBadge) error {
	data, err := json.Marshal(badge)
	if err != nil {
		return fmt.Errorf("failed to marshal badge: %w", err)
	}

	if err := c.redis.Set(ctx, badgeCacheKey(badge.Owner), data, c.ttl); err != nil {
		return fmt.Errorf("failed to write badge cache: %w", err)
	}

	return nil
}

// Invalidate removes a cached badge for an owner
func (c *BadgeCache) Invalidate(ctx context.Context, owner solana.PublicKey) error {
	return c.redis.Del(ctx, badgeCacheKey(owner))
}

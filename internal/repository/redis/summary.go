package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
)

const keyPrefix = "storefront:review_summary:"

// SummaryCache implements repository.SummaryCache using Redis.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a Redis-backed summary cache. Entries expire after ttl.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Get returns the cached summary for a product, or nil if none is cached.
func (c *SummaryCache) Get(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	data, err := c.client.Get(ctx, keyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get review summary: %w", err)
	}

	var s domain.ReviewSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal review summary: %w", err)
	}
	return &s, nil
}

// Set caches summary under its product ID.
func (c *SummaryCache) Set(ctx context.Context, summary domain.ReviewSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal review summary: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+summary.ProductID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set review summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary for a product.
func (c *SummaryCache) Invalidate(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, keyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("redis del review summary: %w", err)
	}
	return nil
}
